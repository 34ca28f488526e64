// Package domain implements the order risk scoring model. Evaluation is a
// pure function over the customer's aggregated history and the store's
// configured thresholds.
package domain

import (
	"fmt"
	"math"

	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
)

// Level is the ordinal risk classification of an order or customer.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

func (l Level) rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	case LevelCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether l is at or above other in the risk ordering.
func (l Level) AtLeast(other Level) bool { return l.rank() >= other.rank() }

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool { return l.rank() > 0 }

// LevelFromScore maps a 0-100 score onto a level. A zero score carries no
// level at all.
func LevelFromScore(score int) (Level, bool) {
	switch {
	case score >= 90:
		return LevelCritical, true
	case score >= 60:
		return LevelHigh, true
	case score >= 40:
		return LevelMedium, true
	case score > 0:
		return LevelLow, true
	default:
		return "", false
	}
}

// FlagFloor returns the minimum level at which an order is flagged for the
// given sensitivity. Low sensitivity only reacts to high risk, high
// sensitivity reacts to any level.
func FlagFloor(s settingsdomain.MatchSensitivity) Level {
	switch s {
	case settingsdomain.SensitivityLow:
		return LevelHigh
	case settingsdomain.SensitivityHigh:
		return LevelLow
	default:
		return LevelMedium
	}
}

// EvaluationInput carries everything scoring needs. TotalOrders and
// LostOrders cover the store's configured lookback window only.
type EvaluationInput struct {
	Excluded            bool
	TotalOrders         int
	LostOrders          int
	LostParcelThreshold int
	LossRateThreshold   *float64
	Sensitivity         settingsdomain.MatchSensitivity
}

// Evaluation is the scoring outcome. Level is empty when the score is zero
// or the customer is excluded.
type Evaluation struct {
	Score    int
	Level    Level
	HasLevel bool
	Excluded bool
	Reason   string
}

// Evaluate computes a 0-100 risk score from the customer's lost-order count
// and loss rate against the store's thresholds, scaled by sensitivity. An
// active exclusion takes precedence over everything else. A nil loss rate
// threshold disables the rate check.
func Evaluate(in EvaluationInput) Evaluation {
	if in.Excluded {
		return Evaluation{Excluded: true, Reason: "customer matches an active exclusion"}
	}

	factor := in.Sensitivity.ThresholdFactor()
	effCount := float64(in.LostParcelThreshold) * factor

	score := 0
	reason := ""

	if in.LostParcelThreshold > 0 && float64(in.LostOrders) >= effCount {
		over := int(float64(in.LostOrders) - effCount)
		score += 40 + min(15, 5*over)
		reason = fmt.Sprintf("%d lost parcels within the lookback window", in.LostOrders)
	}

	if in.LossRateThreshold != nil && in.TotalOrders > 0 {
		rate := float64(in.LostOrders) / float64(in.TotalOrders)
		effRate := *in.LossRateThreshold * factor
		if rate >= effRate {
			over := int(math.Round(50 * (rate - effRate)))
			score += 35 + min(15, over)
			if reason != "" {
				reason += "; "
			}
			reason += fmt.Sprintf("loss rate %.0f%% over threshold", rate*100)
		}
	}

	if score > 100 {
		score = 100
	}

	level, ok := LevelFromScore(score)
	return Evaluation{
		Score:    score,
		Level:    level,
		HasLevel: ok,
		Reason:   reason,
	}
}
