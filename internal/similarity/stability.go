package similarity

import (
	"math"

	"github.com/RishiKendai/fpsim/internal/models"
)

const neutralStability = 0.5

// behavioral blend weights, renormalized over the signals present on both sides
const (
	mouseWeight    = 0.4
	keyboardWeight = 0.3
	touchWeight    = 0.3
)

// StabilityFactors summarizes agreement across related dimensions
func (p Params) StabilityFactors(scores map[Dimension]float64, c *models.Comparison) models.StabilityFactors {
	var b1, b2 *models.BehavioralSnapshot
	var tc *models.TemporalContext
	if c != nil {
		b1, b2, tc = c.Behavioral1, c.Behavioral2, c.Temporal
	}
	return models.StabilityFactors{
		DeviceStability:        groupStability(scores, deviceDimensions),
		BehavioralConsistency:  BehavioralConsistency(b1, b2),
		TemporalConsistency:    p.TemporalConsistency(tc),
		EnvironmentalStability: groupStability(scores, environmentDimensions),
	}
}

// groupStability is 1 - stddev of the scored dimensions in the group
func groupStability(scores map[Dimension]float64, group []Dimension) float64 {
	values := make([]float64, 0, len(group))
	for _, d := range group {
		if s, ok := scores[d]; ok {
			values = append(values, s)
		}
	}
	if len(values) == 0 {
		return neutralStability
	}

	m := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))

	return clamp(1-math.Sqrt(variance), 0, 1)
}

// BehavioralConsistency blends mouse, keyboard and touch agreement between
// two behavioral snapshots
func BehavioralConsistency(a, b *models.BehavioralSnapshot) float64 {
	if a == nil || b == nil {
		return neutralStability
	}

	weighted, total := 0.0, 0.0
	if a.MouseMovements != nil && b.MouseMovements != nil {
		ma, mb := a.MouseMovements, b.MouseMovements
		weighted += mouseWeight * mean([]float64{
			relativeSimilarity(ma.Entropy, mb.Entropy),
			relativeSimilarity(ma.Velocity, mb.Velocity),
			relativeSimilarity(ma.Acceleration, mb.Acceleration),
		})
		total += mouseWeight
	}
	if a.KeyboardPatterns != nil && b.KeyboardPatterns != nil {
		ka, kb := a.KeyboardPatterns, b.KeyboardPatterns
		sims := []float64{relativeSimilarity(ka.TypingSpeed, kb.TypingSpeed)}
		if len(ka.DwellTimes) > 0 && len(kb.DwellTimes) > 0 {
			sims = append(sims, relativeSimilarity(mean(ka.DwellTimes), mean(kb.DwellTimes)))
		}
		if len(ka.FlightTimes) > 0 && len(kb.FlightTimes) > 0 {
			sims = append(sims, relativeSimilarity(mean(ka.FlightTimes), mean(kb.FlightTimes)))
		}
		weighted += keyboardWeight * mean(sims)
		total += keyboardWeight
	}
	if a.TouchBehavior != nil && b.TouchBehavior != nil {
		ta, tb := a.TouchBehavior, b.TouchBehavior
		weighted += touchWeight * mean([]float64{
			relativeSimilarity(ta.TouchPoints, tb.TouchPoints),
			relativeSimilarity(ta.Pressure, tb.Pressure),
			relativeSimilarity(ta.Gestures, tb.Gestures),
		})
		total += touchWeight
	}

	if total == 0 {
		return neutralStability
	}
	return weighted / total
}

// TemporalConsistency decays with the age of the previous snapshot
func (p Params) TemporalConsistency(tc *models.TemporalContext) float64 {
	if tc == nil {
		return p.DefaultTemporalConsistency
	}

	consistency := 1.0
	if days := elapsedDays(tc); days > 1 {
		consistency *= math.Exp(-days / p.TemporalDecayDays)
	}
	if tc.SessionGap > p.SessionGapThreshold {
		consistency *= p.SessionGapFactor
	}
	if tc.EnvironmentChange {
		consistency *= p.TemporalEnvironmentChangeFactor
	}
	return math.Max(p.MinTemporalConsistency, consistency)
}
