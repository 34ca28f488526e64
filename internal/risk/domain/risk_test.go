package domain

import (
	"testing"

	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestEvaluateScoring(t *testing.T) {
	tests := []struct {
		name      string
		in        EvaluationInput
		wantScore int
		wantLevel Level
		hasLevel  bool
	}{
		{
			name: "clean history scores zero",
			in: EvaluationInput{
				TotalOrders:         10,
				LostOrders:          0,
				LostParcelThreshold: 3,
				LossRateThreshold:   floatPtr(0.20),
				Sensitivity:         settingsdomain.SensitivityMedium,
			},
			wantScore: 0,
		},
		{
			name: "both thresholds breached",
			in: EvaluationInput{
				TotalOrders:         10,
				LostOrders:          3,
				LostParcelThreshold: 3,
				LossRateThreshold:   floatPtr(0.20),
				Sensitivity:         settingsdomain.SensitivityMedium,
			},
			wantScore: 80,
			wantLevel: LevelHigh,
			hasLevel:  true,
		},
		{
			name: "count threshold only",
			in: EvaluationInput{
				TotalOrders:         100,
				LostOrders:          3,
				LostParcelThreshold: 3,
				LossRateThreshold:   floatPtr(0.20),
				Sensitivity:         settingsdomain.SensitivityMedium,
			},
			wantScore: 40,
			wantLevel: LevelMedium,
			hasLevel:  true,
		},
		{
			name: "nil rate threshold disables the rate check",
			in: EvaluationInput{
				TotalOrders:         4,
				LostOrders:          2,
				LostParcelThreshold: 3,
				LossRateThreshold:   nil,
				Sensitivity:         settingsdomain.SensitivityMedium,
			},
			wantScore: 0,
		},
		{
			name: "low sensitivity widens tolerance",
			in: EvaluationInput{
				TotalOrders:         100,
				LostOrders:          4,
				LostParcelThreshold: 3,
				LossRateThreshold:   floatPtr(0.20),
				Sensitivity:         settingsdomain.SensitivityLow,
			},
			// effective count threshold is 4.5, rate is far below 0.30
			wantScore: 0,
		},
		{
			name: "high sensitivity tightens thresholds",
			in: EvaluationInput{
				TotalOrders:         100,
				LostOrders:          2,
				LostParcelThreshold: 3,
				LossRateThreshold:   floatPtr(0.20),
				Sensitivity:         settingsdomain.SensitivityHigh,
			},
			// effective count threshold is 1.5, over by 0 after truncation
			wantScore: 40,
			wantLevel: LevelMedium,
			hasLevel:  true,
		},
		{
			name: "score is capped at 100",
			in: EvaluationInput{
				TotalOrders:         10,
				LostOrders:          10,
				LostParcelThreshold: 3,
				LossRateThreshold:   floatPtr(0.20),
				Sensitivity:         settingsdomain.SensitivityMedium,
			},
			wantScore: 100,
			wantLevel: LevelCritical,
			hasLevel:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.in)
			assert.Equal(t, tc.wantScore, got.Score)
			assert.Equal(t, tc.hasLevel, got.HasLevel)
			if tc.hasLevel {
				assert.Equal(t, tc.wantLevel, got.Level)
			} else {
				assert.Empty(t, got.Level)
			}
			assert.False(t, got.Excluded)
		})
	}
}

func TestEvaluateExclusionWins(t *testing.T) {
	got := Evaluate(EvaluationInput{
		Excluded:            true,
		TotalOrders:         10,
		LostOrders:          10,
		LostParcelThreshold: 3,
		LossRateThreshold:   floatPtr(0.20),
		Sensitivity:         settingsdomain.SensitivityHigh,
	})
	assert.True(t, got.Excluded)
	assert.Zero(t, got.Score)
	assert.False(t, got.HasLevel)
	assert.NotEmpty(t, got.Reason)
}

func TestLevelFromScore(t *testing.T) {
	cases := []struct {
		score int
		want  Level
		ok    bool
	}{
		{0, "", false},
		{1, LevelLow, true},
		{39, LevelLow, true},
		{40, LevelMedium, true},
		{59, LevelMedium, true},
		{60, LevelHigh, true},
		{89, LevelHigh, true},
		{90, LevelCritical, true},
		{100, LevelCritical, true},
	}
	for _, tc := range cases {
		got, ok := LevelFromScore(tc.score)
		assert.Equal(t, tc.ok, ok, "score %d", tc.score)
		assert.Equal(t, tc.want, got, "score %d", tc.score)
	}
}

func TestFlagFloor(t *testing.T) {
	assert.Equal(t, LevelHigh, FlagFloor(settingsdomain.SensitivityLow))
	assert.Equal(t, LevelMedium, FlagFloor(settingsdomain.SensitivityMedium))
	assert.Equal(t, LevelLow, FlagFloor(settingsdomain.SensitivityHigh))
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelCritical.AtLeast(LevelLow))
	assert.True(t, LevelMedium.AtLeast(LevelMedium))
	assert.False(t, LevelLow.AtLeast(LevelHigh))
	assert.False(t, Level("bogus").Valid())
	assert.True(t, LevelHigh.Valid())
}
