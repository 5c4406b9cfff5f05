package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Step string

const (
	StepInitiated Step = "initiated"
	StepStarted   Step = "started"
	StepComparing Step = "comparing"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

// StoredSnapshot is a fingerprint captured for a visitor and stored in MongoDB
type StoredSnapshot struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	VisitorID         string              `bson:"visitorId" json:"visitorId"`
	SessionID         string              `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Fingerprint       FingerprintSnapshot `bson:"fingerprint" json:"fingerprint"`
	Behavioral        *BehavioralSnapshot `bson:"behavioral,omitempty" json:"behavioral,omitempty"`
	UserAgent         string              `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Platform          string              `bson:"platform,omitempty" json:"platform,omitempty"`
	SessionCount      int                 `bson:"sessionCount" json:"sessionCount"`
	EnvironmentChange bool                `bson:"-" json:"environmentChange,omitempty"` // caller hint, not persisted
	CapturedAt        time.Time           `bson:"capturedAt" json:"capturedAt"`
}

// Decision is the persisted outcome of comparing a new snapshot with the
// visitor's previous one
type Decision struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	VisitorID          string             `bson:"visitorId" json:"visitorId"`
	SessionID          string             `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	PreviousCapturedAt time.Time          `bson:"previousCapturedAt" json:"previousCapturedAt"`
	CapturedAt         time.Time          `bson:"capturedAt" json:"capturedAt"`
	Temporal           TemporalContext    `bson:"temporal" json:"temporal"`
	Score              SimilarityScore    `bson:"score" json:"score"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

// RecognitionResult is returned when a snapshot is recorded
type RecognitionResult struct {
	VisitorID      string           `json:"visitorId"`
	FirstSeen      bool             `json:"firstSeen"`
	Recommendation Recommendation   `json:"recommendation,omitempty"`
	Score          *SimilarityScore `json:"score,omitempty"`
}

// CandidateMatch is one ranked entry of an identify job
type CandidateMatch struct {
	VisitorID      string         `json:"visitorId"`
	Overall        float64        `json:"overall"`
	Confidence     float64        `json:"confidence"`
	Recommendation Recommendation `json:"recommendation"`
	RiskIndicators []string       `json:"riskIndicators"`
}

// RecordSnapshotRequest is the body of POST /visitors/:visitorId/snapshots
type RecordSnapshotRequest struct {
	SessionID         string              `json:"sessionId"`
	Fingerprint       FingerprintSnapshot `json:"fingerprint"`
	Behavioral        *BehavioralSnapshot `json:"behavioral,omitempty"`
	UserAgent         string              `json:"userAgent"`
	Platform          string              `json:"platform"`
	SessionCount      int                 `json:"sessionCount" binding:"min=0"`
	EnvironmentChange bool                `json:"environmentChange"`
}

// IdentifyRequest asks which of the candidate visitors a probe belongs to
type IdentifyRequest struct {
	Fingerprint  FingerprintSnapshot `json:"fingerprint"`
	Behavioral   *BehavioralSnapshot `json:"behavioral,omitempty"`
	CandidateIDs []string            `json:"candidateIds" binding:"required,min=1,dive,visitorid"`
}

type IdentifyResponse struct {
	Step  Step   `json:"step"`
	JobID string `json:"jobId"`
}

type IdentifyStatusResponse struct {
	JobID   string           `json:"jobId"`
	Step    Step             `json:"step"`
	Matches []CandidateMatch `json:"matches,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
