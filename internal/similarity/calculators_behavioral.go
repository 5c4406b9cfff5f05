package similarity

import (
	"math"

	"github.com/RishiKendai/fpsim/internal/models"
)

// typing speeds within this many words per minute are considered the same typist
const typingSpeedToleranceWPM = 20

type behavioralCalculator struct{}

func (behavioralCalculator) Dimension() Dimension { return Behavioral }

func (behavioralCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	a, b := c.Behavioral1, c.Behavioral2
	if a == nil || b == nil {
		return nil, nil
	}
	if err := checkBehavioral(a); err != nil {
		return nil, err
	}
	if err := checkBehavioral(b); err != nil {
		return nil, err
	}

	var p partial
	if a.KeyboardPatterns != nil && b.KeyboardPatterns != nil {
		p.match(math.Abs(a.KeyboardPatterns.TypingSpeed-b.KeyboardPatterns.TypingSpeed) <= typingSpeedToleranceWPM)
	}
	if a.MouseMovements != nil && b.MouseMovements != nil {
		p.match(withinTolerance(a.MouseMovements.Velocity, b.MouseMovements.Velocity, numericTolerance))
		p.match(withinTolerance(a.MouseMovements.Entropy, b.MouseMovements.Entropy, numericTolerance))
	}
	if a.TouchBehavior != nil && b.TouchBehavior != nil {
		p.match(a.TouchBehavior.TouchPoints == b.TouchBehavior.TouchPoints)
		p.match(withinTolerance(a.TouchBehavior.Pressure, b.TouchBehavior.Pressure, numericTolerance))
	}
	return &ComponentResult{Score: p.mean()}, nil
}

func checkBehavioral(s *models.BehavioralSnapshot) error {
	var values []*float64
	if m := s.MouseMovements; m != nil {
		values = append(values, &m.Entropy, &m.Velocity, &m.Acceleration)
	}
	if k := s.KeyboardPatterns; k != nil {
		values = append(values, &k.TypingSpeed)
		for i := range k.DwellTimes {
			values = append(values, &k.DwellTimes[i])
		}
		for i := range k.FlightTimes {
			values = append(values, &k.FlightTimes[i])
		}
	}
	if t := s.TouchBehavior; t != nil {
		values = append(values, &t.TouchPoints, &t.Pressure, &t.Gestures)
	}
	return checkFinite(Behavioral, values...)
}
