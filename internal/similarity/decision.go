package similarity

import (
	"math"

	"github.com/RishiKendai/fpsim/internal/models"
)

// Adjust folds the reliability bonus, the stability weighting and the
// recency boost into the base similarity. The result is not clamped.
func (p Params) Adjust(base float64, reliable int, avgStability float64, tc *models.TemporalContext) float64 {
	adjusted := base + math.Min(p.MaxReliabilityBonus, float64(reliable)*p.ReliabilityBonusPerComponent)
	adjusted *= p.StabilityBase + (1-p.StabilityBase)*avgStability

	if tc != nil {
		switch days := elapsedDays(tc); {
		case days < 1.0/24:
			adjusted *= p.HourRecencyBoost
		case days < 1:
			adjusted *= p.DayRecencyBoost
		}
	}
	return adjusted
}

// Confidence estimates how trustworthy a similarity score is
func (p Params) Confidence(similarity float64, reliable int, avgStability float64, risks int) float64 {
	confidence := p.BaseConfidence
	confidence += math.Min(p.MaxReliableConfidence, float64(reliable)*p.ConfidencePerReliable)

	// Extreme scores are easier to judge
	switch {
	case similarity > 0.9 || similarity < 0.1:
		confidence += 0.2
	case similarity > 0.7 || similarity < 0.3:
		confidence += 0.1
	}

	confidence += avgStability * p.StabilityConfidenceWeight
	confidence -= math.Min(p.MaxRiskConfidencePenalty, float64(risks)*p.RiskConfidencePenalty)

	return clamp(confidence, p.MinConfidence, p.MaxConfidence)
}

// Recommend turns a score into accept, review or reject. Ambiguous cases
// fall through to review.
func (p Params) Recommend(similarity, confidence float64, risks int) models.Recommendation {
	if similarity >= p.AcceptSimilarity && confidence >= p.AcceptConfidence && risks == 0 {
		return models.RecommendationAccept
	}
	if confidence < p.RejectConfidence || risks > p.MaxRiskIndicators || similarity < p.RejectSimilarity {
		return models.RecommendationReject
	}
	if similarity >= p.ReviewSimilarity && confidence >= p.ReviewConfidence {
		return models.RecommendationReview
	}
	// Borderline cases go to review rather than a silent accept or reject
	return models.RecommendationReview
}
