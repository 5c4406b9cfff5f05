package similarity

import (
	"github.com/RishiKendai/fpsim/internal/models"
)

type fontsCalculator struct{}

func (fontsCalculator) Dimension() Dimension { return Fonts }

func (fontsCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Fonts, fp2.Fonts
	if a == nil || b == nil {
		return nil, nil
	}

	result := &ComponentResult{Score: jaccard(a.Detected, b.Detected)}
	if len(a.Detected) < minDetectedFonts || len(b.Detected) < minDetectedFonts {
		result.RiskIndicators = append(result.RiskIndicators, RiskInsufficientFonts)
	}
	return result, nil
}

type cssCalculator struct{}

func (cssCalculator) Dimension() Dimension { return CSS }

func (cssCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.CSS, fp2.CSS
	if a == nil || b == nil {
		return nil, nil
	}

	var p partial
	if len(a.Features) > 0 && len(b.Features) > 0 {
		p.add(mapMatch(a.Features, b.Features))
	}
	if len(a.ComputedStyles) > 0 && len(b.ComputedStyles) > 0 {
		p.add(mapMatch(a.ComputedStyles, b.ComputedStyles))
	}
	return &ComponentResult{Score: p.mean()}, nil
}

type timingCalculator struct{}

func (timingCalculator) Dimension() Dimension { return Timing }

func (timingCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Timing, fp2.Timing
	if a == nil || b == nil {
		return nil, nil
	}
	if err := checkFinite(Timing, a.DeviceMemory, b.DeviceMemory); err != nil {
		return nil, err
	}
	if err := checkFiniteMap(Timing, a.Metrics, b.Metrics); err != nil {
		return nil, err
	}

	var p partial
	if equal, ok := ptrEqual(a.HardwareConcurrency, b.HardwareConcurrency); ok {
		p.match(equal)
	}
	if equal, ok := ptrEqual(a.DeviceMemory, b.DeviceMemory); ok {
		p.match(equal)
	}
	if a.Timezone != "" && b.Timezone != "" {
		p.match(a.Timezone == b.Timezone)
	}
	if score, ok := metricsMatch(a.Metrics, b.Metrics, numericTolerance); ok {
		p.add(score)
	}

	result := &ComponentResult{Score: p.mean()}
	if a.IsTimingAttack || b.IsTimingAttack {
		result.RiskIndicators = append(result.RiskIndicators, RiskTimingAttackDetected)
	}
	return result, nil
}

type webrtcCalculator struct{}

func (webrtcCalculator) Dimension() Dimension { return WebRTC }

func (webrtcCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.WebRTC, fp2.WebRTC
	if a == nil || b == nil {
		return nil, nil
	}

	var p partial
	if equal, ok := ptrEqual(a.Supported, b.Supported); ok {
		p.match(equal)
	}
	if len(a.LocalIPs) > 0 && len(b.LocalIPs) > 0 {
		p.add(jaccard(a.LocalIPs, b.LocalIPs))
	}
	if len(a.Codecs) > 0 && len(b.Codecs) > 0 {
		p.add(jaccard(a.Codecs, b.Codecs))
	}
	return &ComponentResult{Score: p.mean()}, nil
}

type networkCalculator struct{}

func (networkCalculator) Dimension() Dimension { return Network }

func (networkCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Network, fp2.Network
	if a == nil || b == nil {
		return nil, nil
	}
	if err := checkFinite(Network, a.Downlink, b.Downlink, a.RTT, b.RTT); err != nil {
		return nil, err
	}

	var p partial
	if a.ConnectionType != "" && b.ConnectionType != "" {
		p.match(a.ConnectionType == b.ConnectionType)
	}
	if a.EffectiveType != "" && b.EffectiveType != "" {
		p.match(a.EffectiveType == b.EffectiveType)
	}
	if a.Downlink != nil && b.Downlink != nil {
		p.match(withinTolerance(*a.Downlink, *b.Downlink, numericTolerance))
	}
	if a.RTT != nil && b.RTT != nil {
		p.match(withinTolerance(*a.RTT, *b.RTT, numericTolerance))
	}
	return &ComponentResult{Score: p.mean()}, nil
}

type webassemblyCalculator struct{}

func (webassemblyCalculator) Dimension() Dimension { return WebAssembly }

func (webassemblyCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.WebAssembly, fp2.WebAssembly
	if a == nil || b == nil {
		return nil, nil
	}

	var p partial
	if equal, ok := ptrEqual(a.Supported, b.Supported); ok {
		p.match(equal)
	}
	if len(a.Features) > 0 && len(b.Features) > 0 {
		p.add(mapMatch(a.Features, b.Features))
	}
	if a.PerformanceHash != "" && b.PerformanceHash != "" {
		p.match(a.PerformanceHash == b.PerformanceHash)
	}
	return &ComponentResult{Score: p.mean()}, nil
}

type storageCalculator struct{}

func (storageCalculator) Dimension() Dimension { return Storage }

func (storageCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Storage, fp2.Storage
	if a == nil || b == nil {
		return nil, nil
	}
	if err := checkFinite(Storage, a.Quota, b.Quota); err != nil {
		return nil, err
	}

	var p partial
	if len(a.Available) > 0 && len(b.Available) > 0 {
		p.add(mapMatch(a.Available, b.Available))
	}
	if a.Quota != nil && b.Quota != nil {
		p.match(withinTolerance(*a.Quota, *b.Quota, numericTolerance))
	}
	return &ComponentResult{Score: p.mean()}, nil
}

type pluginsCalculator struct{}

func (pluginsCalculator) Dimension() Dimension { return Plugins }

func (pluginsCalculator) Calculate(c *models.Comparison) (*ComponentResult, error) {
	fp1, fp2 := snapshots(c)
	a, b := fp1.Plugins, fp2.Plugins
	if a == nil || b == nil {
		return nil, nil
	}

	var p partial
	if len(a.Plugins) > 0 && len(b.Plugins) > 0 {
		p.add(jaccard(a.Plugins, b.Plugins))
	}
	if len(a.MimeTypes) > 0 && len(b.MimeTypes) > 0 {
		p.add(jaccard(a.MimeTypes, b.MimeTypes))
	}
	return &ComponentResult{Score: p.mean()}, nil
}
