package similarity

import (
	"fmt"
	"math"
)

// Params holds the weight table and every tunable threshold of the engine.
// The defaults were tuned empirically.
type Params struct {
	Weights Weights

	// Reliability
	ReliableThreshold            float64 // components above this count as reliable
	LowEntropyThreshold          float64
	LowEntropyFactor             float64
	MediumEntropyThreshold       float64
	MediumEntropyFactor          float64
	AgedAfterDays                float64
	AgedFactor                   float64
	StaleAfterDays               float64
	StaleFactor                  float64
	EnvironmentChangeFactor      float64
	MinReliability               float64
	ReliabilityBonusPerComponent float64
	MaxReliabilityBonus          float64

	// Temporal consistency
	TemporalDecayDays               float64
	SessionGapThreshold             int
	SessionGapFactor                float64
	TemporalEnvironmentChangeFactor float64
	MinTemporalConsistency          float64
	DefaultTemporalConsistency      float64

	// Adjustments
	StabilityBase    float64
	HourRecencyBoost float64
	DayRecencyBoost  float64

	// Confidence
	BaseConfidence            float64
	ConfidencePerReliable     float64
	MaxReliableConfidence     float64
	StabilityConfidenceWeight float64
	RiskConfidencePenalty     float64
	MaxRiskConfidencePenalty  float64
	MinConfidence             float64
	MaxConfidence             float64

	// Recommendation
	AcceptSimilarity  float64
	AcceptConfidence  float64
	RejectConfidence  float64
	RejectSimilarity  float64
	MaxRiskIndicators int
	ReviewSimilarity  float64
	ReviewConfidence  float64
}

// DefaultParams returns the standard scoring configuration
func DefaultParams() Params {
	return Params{
		Weights: DefaultWeights(),

		ReliableThreshold:            0.7,
		LowEntropyThreshold:          0.2,
		LowEntropyFactor:             0.3,
		MediumEntropyThreshold:       0.5,
		MediumEntropyFactor:          0.7,
		AgedAfterDays:                30,
		AgedFactor:                   0.9,
		StaleAfterDays:               90,
		StaleFactor:                  0.8,
		EnvironmentChangeFactor:      0.85,
		MinReliability:               0.1,
		ReliabilityBonusPerComponent: 0.02,
		MaxReliabilityBonus:          0.1,

		TemporalDecayDays:               30,
		SessionGapThreshold:             10,
		SessionGapFactor:                0.9,
		TemporalEnvironmentChangeFactor: 0.8,
		MinTemporalConsistency:          0.1,
		DefaultTemporalConsistency:      0.8,

		StabilityBase:    0.7,
		HourRecencyBoost: 1.05,
		DayRecencyBoost:  1.02,

		BaseConfidence:            0.5,
		ConfidencePerReliable:     0.05,
		MaxReliableConfidence:     0.3,
		StabilityConfidenceWeight: 0.2,
		RiskConfidencePenalty:     0.1,
		MaxRiskConfidencePenalty:  0.3,
		MinConfidence:             0.1,
		MaxConfidence:             0.95,

		AcceptSimilarity:  0.85,
		AcceptConfidence:  0.8,
		RejectConfidence:  0.4,
		RejectSimilarity:  0.3,
		MaxRiskIndicators: 3,
		ReviewSimilarity:  0.6,
		ReviewConfidence:  0.6,
	}
}

// Validate checks that the weights and thresholds are usable
func (p Params) Validate() error {
	for i, w := range p.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight for %s must be a non-negative number", Dimension(i))
		}
	}
	if p.Weights.Sum() <= 0 {
		return fmt.Errorf("weights must sum to a positive value")
	}
	if p.TemporalDecayDays <= 0 {
		return fmt.Errorf("temporal decay days must be greater than 0")
	}
	if p.MinConfidence > p.MaxConfidence {
		return fmt.Errorf("min confidence %.2f exceeds max confidence %.2f", p.MinConfidence, p.MaxConfidence)
	}
	unit := map[string]float64{
		"accept similarity":  p.AcceptSimilarity,
		"accept confidence":  p.AcceptConfidence,
		"reject confidence":  p.RejectConfidence,
		"reject similarity":  p.RejectSimilarity,
		"review similarity":  p.ReviewSimilarity,
		"review confidence":  p.ReviewConfidence,
		"reliable threshold": p.ReliableThreshold,
		"min reliability":    p.MinReliability,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %.2f", name, v)
		}
	}
	if p.RejectSimilarity > p.AcceptSimilarity {
		return fmt.Errorf("reject similarity %.2f exceeds accept similarity %.2f", p.RejectSimilarity, p.AcceptSimilarity)
	}
	if p.MaxRiskIndicators < 0 {
		return fmt.Errorf("max risk indicators must not be negative")
	}
	return nil
}
