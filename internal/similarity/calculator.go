package similarity

import (
	"errors"
	"fmt"
	"math"

	"github.com/RishiKendai/fpsim/internal/models"
)

var (
	// ErrMalformedComponent is returned when a dimension holds unusable values
	ErrMalformedComponent = errors.New("malformed component")
	// ErrNoCalculator is returned when a dimension has no calculator bound
	ErrNoCalculator = errors.New("no calculator for dimension")
	// ErrCalculatorPanic wraps a recovered panic from a calculator
	ErrCalculatorPanic = errors.New("calculator panicked")
)

// Risk indicators emitted by the calculators
const (
	RiskLowCanvasEntropy     = "low_canvas_entropy"
	RiskGenericWebGLVendor   = "generic_webgl_vendor"
	RiskLowAudioEntropy      = "low_audio_entropy"
	RiskInsufficientFonts    = "insufficient_fonts"
	RiskTimingAttackDetected = "timing_attack_detected"
)

// ComponentResult is the raw outcome of one dimension comparison
type ComponentResult struct {
	Score          float64
	RiskIndicators []string
}

// Calculator scores one dimension of two snapshots. It returns (nil, nil)
// when the dimension is missing on either side.
type Calculator interface {
	Dimension() Dimension
	Calculate(c *models.Comparison) (*ComponentResult, error)
}

// calculatorFor returns the calculator bound to a dimension
func calculatorFor(d Dimension) Calculator {
	switch d {
	case Canvas:
		return canvasCalculator{}
	case WebGL:
		return webglCalculator{}
	case Audio:
		return audioCalculator{}
	case Fonts:
		return fontsCalculator{}
	case CSS:
		return cssCalculator{}
	case Timing:
		return timingCalculator{}
	case WebRTC:
		return webrtcCalculator{}
	case Sensors:
		return sensorsCalculator{}
	case Battery:
		return batteryCalculator{}
	case MediaDevices:
		return mediaDevicesCalculator{}
	case Network:
		return networkCalculator{}
	case WebAssembly:
		return webassemblyCalculator{}
	case Storage:
		return storageCalculator{}
	case Plugins:
		return pluginsCalculator{}
	case Behavioral:
		return behavioralCalculator{}
	}
	return nil
}

// snapshots returns both fingerprints, substituting empty snapshots for nil
func snapshots(c *models.Comparison) (*models.FingerprintSnapshot, *models.FingerprintSnapshot) {
	empty := &models.FingerprintSnapshot{}
	a, b := c.Fingerprint1, c.Fingerprint2
	if a == nil {
		a = empty
	}
	if b == nil {
		b = empty
	}
	return a, b
}

func checkFinite(d Dimension, values ...*float64) error {
	for _, v := range values {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s holds a non-finite value", ErrMalformedComponent, d)
		}
	}
	return nil
}

func checkFiniteMap(d Dimension, maps ...map[string]float64) error {
	for _, m := range maps {
		for k, v := range m {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s.%s is not finite", ErrMalformedComponent, d, k)
			}
		}
	}
	return nil
}

func lowEntropy(entropy *float64) bool {
	return entropy != nil && *entropy < 0.1
}
