package similarity

import (
	"github.com/RishiKendai/fpsim/internal/models"
)

const day = 24 * 60 * 60 * 1000.0 // milliseconds

// Reliability discounts a component measured on low-entropy input, long
// ago, or across an environment change. The result is within
// [MinReliability, 1].
func (p Params) Reliability(entropy float64, tc *models.TemporalContext) float64 {
	reliability := 1.0

	switch {
	case entropy < p.LowEntropyThreshold:
		reliability *= p.LowEntropyFactor
	case entropy < p.MediumEntropyThreshold:
		reliability *= p.MediumEntropyFactor
	}

	if tc != nil {
		days := elapsedDays(tc)
		if days > p.AgedAfterDays {
			reliability *= p.AgedFactor
		}
		if days > p.StaleAfterDays {
			reliability *= p.StaleFactor
		}
		if tc.EnvironmentChange {
			reliability *= p.EnvironmentChangeFactor
		}
	}

	return clamp(reliability, p.MinReliability, 1)
}

func elapsedDays(tc *models.TemporalContext) float64 {
	ms := float64(tc.TimeDifference)
	if ms < 0 {
		ms = -ms
	}
	return ms / day
}
