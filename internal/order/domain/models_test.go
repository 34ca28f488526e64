package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed(t *testing.T) {
	statuses := []Status{
		StatusPending, StatusFlagged, StatusHeldForReview,
		StatusAutoCancelled, StatusFulfilled, StatusCancelled,
	}

	allowed := map[Status][]Status{
		StatusPending:       {StatusFlagged, StatusFulfilled, StatusCancelled},
		StatusFlagged:       {StatusHeldForReview, StatusAutoCancelled, StatusFulfilled, StatusCancelled},
		StatusHeldForReview: {StatusFulfilled, StatusCancelled},
	}

	for _, from := range statuses {
		want := map[Status]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range statuses {
			assert.Equal(t, want[to], TransitionAllowed(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusFulfilled.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusAutoCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusFlagged.Terminal())
	assert.False(t, StatusHeldForReview.Terminal())
}

func TestAddressLine(t *testing.T) {
	a := Address{
		Address1: "12 High Street",
		City:     "Leeds",
		State:    "West Yorkshire",
		Postcode: "LS1 4AB",
		Country:  "GB",
	}
	assert.Equal(t, "12 High Street Leeds LS1 4AB", a.Line())
}
