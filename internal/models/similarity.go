package models

type Recommendation string

const (
	RecommendationAccept Recommendation = "accept"
	RecommendationReview Recommendation = "review"
	RecommendationReject Recommendation = "reject"
)

// TemporalContext describes the gap between the two compared snapshots
type TemporalContext struct {
	TimeDifference    int64 `bson:"timeDifference" json:"timeDifference"` // milliseconds
	SessionGap        int   `bson:"sessionGap" json:"sessionGap"`
	EnvironmentChange bool  `bson:"environmentChange" json:"environmentChange"`
}

// Comparison is the input of one similarity calculation
type Comparison struct {
	Fingerprint1 *FingerprintSnapshot `json:"fingerprint1" binding:"required"`
	Fingerprint2 *FingerprintSnapshot `json:"fingerprint2" binding:"required"`
	Behavioral1  *BehavioralSnapshot  `json:"behavioral1,omitempty"`
	Behavioral2  *BehavioralSnapshot  `json:"behavioral2,omitempty"`
	Temporal     *TemporalContext     `json:"temporalContext,omitempty"`
}

type ComponentScore struct {
	Score       float64 `bson:"score" json:"score"`
	Weight      float64 `bson:"weight" json:"weight"`
	Entropy     float64 `bson:"entropy" json:"entropy"`
	Reliability float64 `bson:"reliability" json:"reliability"`
}

type StabilityFactors struct {
	DeviceStability        float64 `bson:"deviceStability" json:"deviceStability"`
	BehavioralConsistency  float64 `bson:"behavioralConsistency" json:"behavioralConsistency"`
	TemporalConsistency    float64 `bson:"temporalConsistency" json:"temporalConsistency"`
	EnvironmentalStability float64 `bson:"environmentalStability" json:"environmentalStability"`
}

// Average returns the mean of the four factors
func (f StabilityFactors) Average() float64 {
	return (f.DeviceStability + f.BehavioralConsistency + f.TemporalConsistency + f.EnvironmentalStability) / 4
}

// SimilarityScore is the result of comparing two snapshots
type SimilarityScore struct {
	Overall         float64                   `bson:"overall" json:"overall"`
	Confidence      float64                   `bson:"confidence" json:"confidence"`
	ComponentScores map[string]ComponentScore `bson:"componentScores" json:"componentScores"`
	Factors         StabilityFactors          `bson:"factors" json:"factors"`
	RiskIndicators  []string                  `bson:"riskIndicators" json:"riskIndicators"`
	Recommendation  Recommendation            `bson:"recommendation" json:"recommendation"`
	Diagnostics     []string                  `bson:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}
