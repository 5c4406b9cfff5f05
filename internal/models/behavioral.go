package models

// BehavioralSnapshot holds interaction signals captured alongside a
// fingerprint. Every group is optional.
type BehavioralSnapshot struct {
	MouseMovements   *MouseMovements   `bson:"mouseMovements,omitempty" json:"mouseMovements,omitempty"`
	KeyboardPatterns *KeyboardPatterns `bson:"keyboardPatterns,omitempty" json:"keyboardPatterns,omitempty"`
	TouchBehavior    *TouchBehavior    `bson:"touchBehavior,omitempty" json:"touchBehavior,omitempty"`
}

type MouseMovements struct {
	Entropy      float64 `bson:"entropy" json:"entropy"`
	Velocity     float64 `bson:"velocity" json:"velocity"`
	Acceleration float64 `bson:"acceleration" json:"acceleration"`
}

type KeyboardPatterns struct {
	TypingSpeed float64   `bson:"typingSpeed" json:"typingSpeed"` // words per minute
	DwellTimes  []float64 `bson:"dwellTimes,omitempty" json:"dwellTimes,omitempty"`
	FlightTimes []float64 `bson:"flightTimes,omitempty" json:"flightTimes,omitempty"`
}

type TouchBehavior struct {
	TouchPoints float64 `bson:"touchPoints" json:"touchPoints"`
	Pressure    float64 `bson:"pressure" json:"pressure"`
	Gestures    float64 `bson:"gestures" json:"gestures"`
}
