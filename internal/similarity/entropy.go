package similarity

import (
	"math"

	"github.com/goccy/go-json"

	"github.com/RishiKendai/fpsim/internal/models"
)

const (
	maxEntropyBits = 8.0
	neutralEntropy = 0.5
)

// ComponentEntropy estimates how informative a dimension is from the first
// snapshot of a comparison. Missing dimensions have zero entropy.
func ComponentEntropy(c *models.Comparison, d Dimension) float64 {
	value, ok := dimensionValue(c, d)
	if !ok {
		return 0
	}
	return valueEntropy(value)
}

// valueEntropy is the Shannon entropy of the character distribution of the
// JSON encoding of value, normalized to [0, 1]
func valueEntropy(value any) float64 {
	data, err := json.Marshal(value)
	if err != nil {
		return neutralEntropy
	}
	return clamp(shannon(string(data))/maxEntropyBits, 0, 1)
}

func shannon(s string) float64 {
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// dimensionValue returns the first side's value for a dimension
func dimensionValue(c *models.Comparison, d Dimension) (any, bool) {
	if c == nil {
		return nil, false
	}
	if d == Behavioral {
		if c.Behavioral1 == nil {
			return nil, false
		}
		return c.Behavioral1, true
	}

	fp := c.Fingerprint1
	if fp == nil {
		return nil, false
	}
	switch d {
	case Canvas:
		return fp.Canvas, fp.Canvas != nil
	case WebGL:
		return fp.WebGL, fp.WebGL != nil
	case Audio:
		return fp.Audio, fp.Audio != nil
	case Fonts:
		return fp.Fonts, fp.Fonts != nil
	case CSS:
		return fp.CSS, fp.CSS != nil
	case Timing:
		return fp.Timing, fp.Timing != nil
	case WebRTC:
		return fp.WebRTC, fp.WebRTC != nil
	case Sensors:
		return fp.Sensors, fp.Sensors != nil
	case Battery:
		return fp.Battery, fp.Battery != nil
	case MediaDevices:
		return fp.MediaDevices, fp.MediaDevices != nil
	case Network:
		return fp.Network, fp.Network != nil
	case WebAssembly:
		return fp.WebAssembly, fp.WebAssembly != nil
	case Storage:
		return fp.Storage, fp.Storage != nil
	case Plugins:
		return fp.Plugins, fp.Plugins != nil
	}
	return nil, false
}
