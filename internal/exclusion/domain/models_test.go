package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(v string) *string { return &v }

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		exclusion CustomerExclusion
		email     string
		address   string
		phone     string
		want      bool
	}{
		{
			name:      "email match is case insensitive",
			exclusion: CustomerExclusion{IsActive: true, CustomerEmail: strPtr("VIP@Example.com")},
			email:     "vip@example.com",
			want:      true,
		},
		{
			name:      "address match ignores case and surrounding space",
			exclusion: CustomerExclusion{IsActive: true, CustomerAddress: strPtr("12 High Street Leeds LS1 4AB")},
			address:   "  12 high street leeds ls1 4ab ",
			want:      true,
		},
		{
			name:      "phone match ignores formatting",
			exclusion: CustomerExclusion{IsActive: true, CustomerPhone: strPtr("+44 7700 900123")},
			phone:     "07700900123",
			want:      false,
		},
		{
			name:      "phone match on identical digits",
			exclusion: CustomerExclusion{IsActive: true, CustomerPhone: strPtr("(44) 7700-900123")},
			phone:     "44 7700 900123",
			want:      true,
		},
		{
			name:      "any populated field matching is sufficient",
			exclusion: CustomerExclusion{IsActive: true, CustomerEmail: strPtr("vip@example.com"), CustomerPhone: strPtr("447700900123")},
			email:     "other@example.com",
			phone:     "447700900123",
			want:      true,
		},
		{
			name:      "inactive entries never match",
			exclusion: CustomerExclusion{IsActive: false, CustomerEmail: strPtr("vip@example.com")},
			email:     "vip@example.com",
			want:      false,
		},
		{
			name:      "empty candidate identity never matches",
			exclusion: CustomerExclusion{IsActive: true, CustomerEmail: strPtr("vip@example.com")},
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.exclusion.Matches(tc.email, tc.address, tc.phone))
		})
	}
}
