package similarity

import (
	"github.com/RishiKendai/fpsim/internal/models"
)

const (
	textMetricTolerance = 0.1
	genericWebGLVendor  = "Google Inc."
	minDetectedFonts    = 10
	numericTolerance    = 0.2
)

type canvasCalculator struct{}

func (canvasCalculator) Dimension() Dimension { return Canvas }

func (canvasCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Canvas, fp2.Canvas
	if a == nil || b == nil {
		return nil, nil
	}
	if err := checkFinite(Canvas, a.Entropy, b.Entropy); err != nil {
		return nil, err
	}
	if err := checkFiniteMap(Canvas, a.TextMetrics, b.TextMetrics); err != nil {
		return nil, err
	}

	var p partial
	if a.Basic != "" && b.Basic != "" {
		p.match(a.Basic == b.Basic)
	}
	if a.Advanced != "" && b.Advanced != "" {
		p.match(a.Advanced == b.Advanced)
	}
	if len(a.Fonts) > 0 && len(b.Fonts) > 0 {
		p.add(mapMatch(a.Fonts, b.Fonts))
	}
	if score, ok := metricsMatch(a.TextMetrics, b.TextMetrics, textMetricTolerance); ok {
		p.add(score)
	}

	result := &ComponentResult{Score: p.mean()}
	if lowEntropy(a.Entropy) || lowEntropy(b.Entropy) {
		result.RiskIndicators = append(result.RiskIndicators, RiskLowCanvasEntropy)
	}
	return result, nil
}

type webglCalculator struct{}

func (webglCalculator) Dimension() Dimension { return WebGL }

func (webglCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.WebGL, fp2.WebGL
	if a == nil || b == nil {
		return nil, nil
	}

	var p partial
	if a.Vendor != "" && b.Vendor != "" {
		p.match(a.Vendor == b.Vendor)
	}
	if a.Renderer != "" && b.Renderer != "" {
		p.match(a.Renderer == b.Renderer)
	}
	if len(a.Extensions) > 0 && len(b.Extensions) > 0 {
		p.add(jaccard(a.Extensions, b.Extensions))
	}
	if len(a.RenderHashes) > 0 && len(b.RenderHashes) > 0 {
		p.add(mapMatch(a.RenderHashes, b.RenderHashes))
	}

	result := &ComponentResult{Score: p.mean()}
	if genericVendor(a.Vendor) || genericVendor(b.Vendor) {
		result.RiskIndicators = append(result.RiskIndicators, RiskGenericWebGLVendor)
	}
	return result, nil
}

func genericVendor(vendor string) bool {
	return vendor == "" || vendor == genericWebGLVendor
}

type audioCalculator struct{}

func (audioCalculator) Dimension() Dimension { return Audio }

func (audioCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Audio, fp2.Audio
	if a == nil || b == nil {
		return nil, nil
	}
	if err := checkFinite(Audio, a.SampleRate, b.SampleRate, a.Entropy, b.Entropy); err != nil {
		return nil, err
	}

	var p partial
	if len(a.ContextHashes) > 0 && len(b.ContextHashes) > 0 {
		p.add(mapMatch(a.ContextHashes, b.ContextHashes))
	}
	if equal, ok := ptrEqual(a.SampleRate, b.SampleRate); ok {
		p.match(equal)
	}

	result := &ComponentResult{Score: p.mean()}
	if lowEntropy(a.Entropy) || lowEntropy(b.Entropy) {
		result.RiskIndicators = append(result.RiskIndicators, RiskLowAudioEntropy)
	}
	return result, nil
}

type sensorsCalculator struct{}

func (sensorsCalculator) Dimension() Dimension { return Sensors }

func (sensorsCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Sensors, fp2.Sensors
	if a == nil || b == nil {
		return nil, nil
	}
	return &ComponentResult{Score: mapMatch(a.Available, b.Available)}, nil
}

type batteryCalculator struct{}

func (batteryCalculator) Dimension() Dimension { return Battery }

func (batteryCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Battery, fp2.Battery
	if a == nil || b == nil {
		return nil, nil
	}
	if err := checkFinite(Battery, a.Level, b.Level); err != nil {
		return nil, err
	}

	var p partial
	if equal, ok := ptrEqual(a.Supported, b.Supported); ok {
		p.match(equal)
	}
	if equal, ok := ptrEqual(a.Charging, b.Charging); ok {
		p.match(equal)
	}
	if a.Level != nil && b.Level != nil {
		p.match(withinTolerance(*a.Level, *b.Level, numericTolerance))
	}
	return &ComponentResult{Score: p.mean()}, nil
}

type mediaDevicesCalculator struct{}

func (mediaDevicesCalculator) Dimension() Dimension { return MediaDevices }

func (mediaDevicesCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.MediaDevices, fp2.MediaDevices
	if a == nil || b == nil {
		return nil, nil
	}

	var p partial
	for _, pair := range [][2]*int{
		{a.AudioInputs, b.AudioInputs},
		{a.AudioOutputs, b.AudioOutputs},
		{a.VideoInputs, b.VideoInputs},
	} {
		if equal, ok := ptrEqual(pair[0], pair[1]); ok {
			p.match(equal)
		}
	}
	if len(a.GroupIDs) > 0 && len(b.GroupIDs) > 0 {
		p.add(jaccard(a.GroupIDs, b.GroupIDs))
	}
	return &ComponentResult{Score: p.mean()}, nil
}
