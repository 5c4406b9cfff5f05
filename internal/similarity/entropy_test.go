package similarity

import (
	"testing"

	"github.com/RishiKendai/fpsim/internal/models"
)

func TestValueEntropy(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float64
	}{
		{"empty object", struct{}{}, 1.0 / 8},
		{"unserializable", make(chan int), 0.5},
		{"single repeated character", 1111, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valueEntropy(tt.value); !approx(got, tt.expected) {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestComponentEntropy(t *testing.T) {
	c := &models.Comparison{
		Fingerprint1: fullSnapshot(),
		Fingerprint2: &models.FingerprintSnapshot{},
	}

	for _, d := range AllDimensions() {
		got := ComponentEntropy(c, d)
		if d == Behavioral {
			if got != 0 {
				t.Errorf("Expected zero entropy for absent behavioral data, got %f", got)
			}
			continue
		}
		if got <= 0 || got > 1 {
			t.Errorf("Expected %s entropy in (0, 1], got %f", d, got)
		}
	}

	// Only the first snapshot is measured
	swapped := &models.Comparison{Fingerprint1: &models.FingerprintSnapshot{}, Fingerprint2: fullSnapshot()}
	if got := ComponentEntropy(swapped, Canvas); got != 0 {
		t.Errorf("Expected zero entropy when the first side is missing, got %f", got)
	}
	if got := ComponentEntropy(nil, Canvas); got != 0 {
		t.Errorf("Expected zero entropy for a nil comparison, got %f", got)
	}

	withBehavioral := &models.Comparison{Behavioral1: fullBehavioral()}
	if got := ComponentEntropy(withBehavioral, Behavioral); got <= 0 {
		t.Errorf("Expected positive behavioral entropy, got %f", got)
	}
}

func TestShannon(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"", 0},
		{"aaaa", 0},
		{"ab", 1},
		{"abcd", 2},
		{"aabb", 1},
	}

	for _, tt := range tests {
		if got := shannon(tt.input); !approx(got, tt.expected) {
			t.Errorf("shannon(%q): expected %f, got %f", tt.input, tt.expected, got)
		}
	}
}
