package similarity

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/RishiKendai/fpsim/internal/models"
)

type panickingCalculator struct{}

func (panickingCalculator) Dimension() Dimension { return Canvas }

func (panickingCalculator) Calculate(*models.Comparison) (*ComponentResult, error) {
	panic("unexpected nested field")
}

func TestCalculateIdenticalSnapshots(t *testing.T) {
	engine := NewEngine(DefaultParams())

	score := engine.Calculate(&models.Comparison{
		Fingerprint1: fullSnapshot(),
		Fingerprint2: fullSnapshot(),
		Temporal:     &models.TemporalContext{TimeDifference: 0, SessionGap: 0, EnvironmentChange: false},
	})

	if score.Overall < 0.95 {
		t.Errorf("Expected overall >= 0.95, got %f", score.Overall)
	}
	if score.Recommendation != models.RecommendationAccept {
		t.Errorf("Expected accept, got %s (confidence %f, risks %v)", score.Recommendation, score.Confidence, score.RiskIndicators)
	}
	if len(score.ComponentScores) != 14 {
		t.Errorf("Expected 14 component scores, got %d", len(score.ComponentScores))
	}
	if len(score.RiskIndicators) != 0 {
		t.Errorf("Expected no risk indicators, got %v", score.RiskIndicators)
	}
	for name, cs := range score.ComponentScores {
		if !approx(cs.Score, 1) {
			t.Errorf("Expected %s to score 1, got %f", name, cs.Score)
		}
	}
}

func TestCalculateIdenticalWithBehavioral(t *testing.T) {
	engine := NewEngine(DefaultParams())

	score := engine.Calculate(&models.Comparison{
		Fingerprint1: fullSnapshot(),
		Fingerprint2: fullSnapshot(),
		Behavioral1:  fullBehavioral(),
		Behavioral2:  fullBehavioral(),
		Temporal:     &models.TemporalContext{},
	})

	if score.Overall < 0.95 {
		t.Errorf("Expected overall >= 0.95, got %f", score.Overall)
	}
	if score.Recommendation != models.RecommendationAccept {
		t.Errorf("Expected accept, got %s", score.Recommendation)
	}
	if _, ok := score.ComponentScores["behavioral"]; !ok {
		t.Error("Expected behavioral component to be scored")
	}
	if !approx(score.Factors.BehavioralConsistency, 1) {
		t.Errorf("Expected behavioral consistency 1, got %f", score.Factors.BehavioralConsistency)
	}
}

func TestCalculateGenericWebGLVendor(t *testing.T) {
	engine := NewEngine(DefaultParams())
	temporal := &models.TemporalContext{}

	baseline := engine.Calculate(&models.Comparison{
		Fingerprint1: fullSnapshot(),
		Fingerprint2: fullSnapshot(),
		Temporal:     temporal,
	})

	fp1, fp2 := fullSnapshot(), fullSnapshot()
	fp1.WebGL.Vendor = ""
	fp2.WebGL.Vendor = "Google Inc."
	score := engine.Calculate(&models.Comparison{Fingerprint1: fp1, Fingerprint2: fp2, Temporal: temporal})

	if !slices.Contains(score.RiskIndicators, RiskGenericWebGLVendor) {
		t.Fatalf("Expected %s in %v", RiskGenericWebGLVendor, score.RiskIndicators)
	}
	if score.Overall < 0.9 {
		t.Errorf("Expected overall to stay high, got %f", score.Overall)
	}
	if score.Confidence > baseline.Confidence {
		t.Errorf("Expected confidence %f not to exceed baseline %f", score.Confidence, baseline.Confidence)
	}
	if score.Recommendation == models.RecommendationAccept {
		t.Error("Expected a risk indicator to prevent accept")
	}

	// Before the ceiling is applied the penalty is strictly visible
	params := engine.Params()
	avg := score.Factors.Average()
	if params.Confidence(score.Overall, 0, avg, 1) >= params.Confidence(score.Overall, 0, avg, 0) {
		t.Error("Expected the risk indicator to lower unsaturated confidence")
	}
}

func TestCalculateSingleFontsDimension(t *testing.T) {
	engine := NewEngine(DefaultParams())

	// 15 fonts each, 10 shared, 20 in the union
	score := engine.Calculate(&models.Comparison{
		Fingerprint1: &models.FingerprintSnapshot{Fonts: &models.FontsFingerprint{Detected: fontList(0, 15)}},
		Fingerprint2: &models.FingerprintSnapshot{Fonts: &models.FontsFingerprint{Detected: fontList(5, 20)}},
	})

	if len(score.ComponentScores) != 1 {
		t.Fatalf("Expected exactly one component, got %d", len(score.ComponentScores))
	}
	fonts, ok := score.ComponentScores["fonts"]
	if !ok {
		t.Fatal("Expected fonts component")
	}
	if !approx(fonts.Score, 0.5) {
		t.Errorf("Expected fonts Jaccard 0.5, got %f", fonts.Score)
	}
	if score.Overall < 0.4 || score.Overall > 0.55 {
		t.Errorf("Expected overall near the fonts score, got %f", score.Overall)
	}
	if score.Recommendation != models.RecommendationReview {
		t.Errorf("Expected review, got %s", score.Recommendation)
	}
}

func TestCalculateDisjointSnapshots(t *testing.T) {
	engine := NewEngine(DefaultParams())

	score := engine.Calculate(&models.Comparison{
		Fingerprint1: fullSnapshot(),
		Fingerprint2: disjointSnapshot(),
		Temporal: &models.TemporalContext{
			TimeDifference:    (200 * 24 * time.Hour).Milliseconds(),
			EnvironmentChange: true,
		},
	})

	if score.Overall >= 0.3 {
		t.Errorf("Expected overall < 0.3, got %f", score.Overall)
	}
	if score.Recommendation != models.RecommendationReject {
		t.Errorf("Expected reject, got %s", score.Recommendation)
	}
	if !approx(score.Factors.TemporalConsistency, 0.1) {
		t.Errorf("Expected temporal consistency at the floor, got %f", score.Factors.TemporalConsistency)
	}
}

func TestCalculateBounds(t *testing.T) {
	engine := NewEngine(DefaultParams())

	partial := fullSnapshot()
	partial.Canvas = nil
	partial.Fonts.Detected = fontList(0, 5)
	partial.Timing.IsTimingAttack = true

	tests := []struct {
		name       string
		comparison *models.Comparison
	}{
		{"nil comparison", nil},
		{"empty snapshots", &models.Comparison{Fingerprint1: &models.FingerprintSnapshot{}, Fingerprint2: &models.FingerprintSnapshot{}}},
		{"missing second snapshot", &models.Comparison{Fingerprint1: fullSnapshot()}},
		{"identical", &models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: fullSnapshot(), Temporal: &models.TemporalContext{}}},
		{"disjoint", &models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: disjointSnapshot()}},
		{"partial with risks", &models.Comparison{Fingerprint1: partial, Fingerprint2: fullSnapshot(), Behavioral1: fullBehavioral()}},
		{"negative time difference", &models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: fullSnapshot(), Temporal: &models.TemporalContext{TimeDifference: -5000}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.Calculate(tt.comparison)
			if score == nil {
				t.Fatal("Expected a score")
			}
			if score.Overall < 0 || score.Overall > 1 || math.IsNaN(score.Overall) {
				t.Errorf("Overall out of bounds: %f", score.Overall)
			}
			if score.Confidence < 0.1 || score.Confidence > 0.95 {
				t.Errorf("Confidence out of bounds: %f", score.Confidence)
			}
			if score.ComponentScores == nil || score.RiskIndicators == nil {
				t.Error("Expected non-nil component scores and risk indicators")
			}
		})
	}
}

func TestCalculateEmptyAggregate(t *testing.T) {
	engine := NewEngine(DefaultParams())

	score := engine.Calculate(&models.Comparison{
		Fingerprint1: &models.FingerprintSnapshot{},
		Fingerprint2: &models.FingerprintSnapshot{},
	})

	if score.Overall != 0 {
		t.Errorf("Expected overall 0, got %f", score.Overall)
	}
	if len(score.ComponentScores) != 0 {
		t.Errorf("Expected no component scores, got %d", len(score.ComponentScores))
	}
	if score.Recommendation != models.RecommendationReject {
		t.Errorf("Expected reject, got %s", score.Recommendation)
	}
}

func TestCalculateMissingDimensionIsSkipped(t *testing.T) {
	engine := NewEngine(DefaultParams())

	partialFonts := func() *models.FingerprintSnapshot {
		fp := fullSnapshot()
		fp.Fonts.Detected = fontList(6, 30)
		return fp
	}

	// Present on one side only
	oneSided := partialFonts()
	oneSided.Canvas = nil
	scoreOneSided := engine.Calculate(&models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: oneSided})

	// Absent on both sides
	fp1 := fullSnapshot()
	fp1.Canvas = nil
	fp2 := partialFonts()
	fp2.Canvas = nil
	scoreBoth := engine.Calculate(&models.Comparison{Fingerprint1: fp1, Fingerprint2: fp2})

	if _, ok := scoreOneSided.ComponentScores["canvas"]; ok {
		t.Error("Expected canvas to be skipped when missing on one side")
	}
	if _, ok := scoreBoth.ComponentScores["canvas"]; ok {
		t.Error("Expected canvas to be skipped when missing on both sides")
	}
	if !approx(scoreOneSided.Overall, scoreBoth.Overall) {
		t.Errorf("Expected a one-sided dimension to be skipped, got %f vs %f", scoreOneSided.Overall, scoreBoth.Overall)
	}

	// Scoring a missing dimension as zero would have lowered the result
	withCanvasMismatch := partialFonts()
	withCanvasMismatch.Canvas = disjointSnapshot().Canvas
	scoreMismatch := engine.Calculate(&models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: withCanvasMismatch})
	if scoreMismatch.Overall >= scoreOneSided.Overall {
		t.Errorf("Expected a real mismatch (%f) to score below a skipped dimension (%f)", scoreMismatch.Overall, scoreOneSided.Overall)
	}
}

func TestCalculateRemovingIdenticalDimension(t *testing.T) {
	engine := NewEngine(DefaultParams())
	temporal := &models.TemporalContext{}

	full := engine.Calculate(&models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: fullSnapshot(), Temporal: temporal})

	fp1, fp2 := fullSnapshot(), fullSnapshot()
	fp1.Audio, fp2.Audio = nil, nil
	reduced := engine.Calculate(&models.Comparison{Fingerprint1: fp1, Fingerprint2: fp2, Temporal: temporal})

	if !approx(full.Overall, reduced.Overall) {
		t.Errorf("Expected overall unchanged, got %f vs %f", full.Overall, reduced.Overall)
	}
}

func TestCalculateCalculatorPanic(t *testing.T) {
	engine := NewEngine(DefaultParams())
	engine.calculators[Canvas] = panickingCalculator{}

	score := engine.Calculate(&models.Comparison{
		Fingerprint1: fullSnapshot(),
		Fingerprint2: fullSnapshot(),
		Temporal:     &models.TemporalContext{},
	})

	if _, ok := score.ComponentScores["canvas"]; ok {
		t.Error("Expected canvas to be absent after a calculator panic")
	}
	if len(score.ComponentScores) != 13 {
		t.Errorf("Expected 13 component scores, got %d", len(score.ComponentScores))
	}
	if len(score.Diagnostics) != 1 {
		t.Fatalf("Expected one diagnostic, got %v", score.Diagnostics)
	}
	if score.Overall < 0.95 {
		t.Errorf("Expected the remaining dimensions to carry the score, got %f", score.Overall)
	}
}

func TestCalculateMalformedComponent(t *testing.T) {
	engine := NewEngine(DefaultParams())

	fp2 := fullSnapshot()
	fp2.Canvas.TextMetrics["sample"] = math.NaN()

	score := engine.Calculate(&models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: fp2})

	if _, ok := score.ComponentScores["canvas"]; ok {
		t.Error("Expected malformed canvas to be skipped")
	}
	if len(score.Diagnostics) != 1 {
		t.Errorf("Expected one diagnostic, got %v", score.Diagnostics)
	}

	_, err := canvasCalculator{}.Calculate(&models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: fp2})
	if !errors.Is(err, ErrMalformedComponent) {
		t.Errorf("Expected ErrMalformedComponent, got %v", err)
	}
}

func TestCalculateMissingCalculator(t *testing.T) {
	engine := NewEngine(DefaultParams())
	engine.calculators[Plugins] = nil

	score := engine.Calculate(&models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: fullSnapshot()})

	if _, ok := score.ComponentScores["plugins"]; ok {
		t.Error("Expected plugins to be skipped")
	}
	if len(score.Diagnostics) != 1 {
		t.Errorf("Expected one diagnostic, got %v", score.Diagnostics)
	}
}

func TestCalculateTemporalDecay(t *testing.T) {
	engine := NewEngine(DefaultParams())

	compare := func(elapsed time.Duration) *models.SimilarityScore {
		return engine.Calculate(&models.Comparison{
			Fingerprint1: fullSnapshot(),
			Fingerprint2: fullSnapshot(),
			Temporal:     &models.TemporalContext{TimeDifference: elapsed.Milliseconds()},
		})
	}

	recent := compare(time.Hour)
	old := compare(100 * 24 * time.Hour)

	if old.Overall > recent.Overall {
		t.Errorf("Expected overall not to increase with age: %f > %f", old.Overall, recent.Overall)
	}
	if old.Factors.TemporalConsistency > recent.Factors.TemporalConsistency {
		t.Errorf("Expected temporal consistency not to increase with age: %f > %f",
			old.Factors.TemporalConsistency, recent.Factors.TemporalConsistency)
	}
}

func TestCalculateExtremeTimeDifference(t *testing.T) {
	engine := NewEngine(DefaultParams())

	compare := func(ms int64) *models.SimilarityScore {
		return engine.Calculate(&models.Comparison{
			Fingerprint1: fullSnapshot(),
			Fingerprint2: fullSnapshot(),
			Temporal:     &models.TemporalContext{TimeDifference: ms},
		})
	}

	old := compare((100 * 24 * time.Hour).Milliseconds())
	for _, ms := range []int64{18446744073710, math.MaxInt64, math.MinInt64} {
		got := compare(ms)
		if got.Overall > old.Overall {
			t.Errorf("timeDifference %d: overall %f exceeds the 100 day score %f", ms, got.Overall, old.Overall)
		}
		if got.Factors.TemporalConsistency > old.Factors.TemporalConsistency {
			t.Errorf("timeDifference %d: temporal consistency %f exceeds the 100 day value %f",
				ms, got.Factors.TemporalConsistency, old.Factors.TemporalConsistency)
		}
	}
}

func TestCalculateRiskIndicatorsDeduplicated(t *testing.T) {
	engine := NewEngine(DefaultParams())

	fp1, fp2 := fullSnapshot(), fullSnapshot()
	fp1.Timing.IsTimingAttack = true
	fp2.Timing.IsTimingAttack = true
	fp1.Canvas.Entropy = ptr(0.05)
	fp2.Canvas.Entropy = ptr(0.01)

	score := engine.Calculate(&models.Comparison{Fingerprint1: fp1, Fingerprint2: fp2})

	want := []string{RiskLowCanvasEntropy, RiskTimingAttackDetected}
	if !slices.Equal(score.RiskIndicators, want) {
		t.Errorf("Expected %v, got %v", want, score.RiskIndicators)
	}
}

func TestCalculateDoesNotMutateInput(t *testing.T) {
	engine := NewEngine(DefaultParams())

	fp1, fp2 := fullSnapshot(), fullSnapshot()
	fp2.Fonts.Detected = fontList(3, 27)
	before := valueEntropy(fp1) + valueEntropy(fp2)

	engine.Calculate(&models.Comparison{Fingerprint1: fp1, Fingerprint2: fp2})

	if after := valueEntropy(fp1) + valueEntropy(fp2); !approx(before, after) {
		t.Error("Expected snapshots to be left untouched")
	}
	if len(fp2.Fonts.Detected) != 24 || fp2.Fonts.Detected[0] != "Font Family 03" {
		t.Error("Expected detected fonts to be left untouched")
	}
}

func TestCalculateCustomWeights(t *testing.T) {
	params := DefaultParams()
	params.Weights = Weights{}
	params.Weights[Fonts] = 1
	engine := NewEngine(params)

	fp2 := fullSnapshot()
	fp2.Canvas = disjointSnapshot().Canvas

	score := engine.Calculate(&models.Comparison{Fingerprint1: fullSnapshot(), Fingerprint2: fp2})

	if cs := score.ComponentScores["canvas"]; cs.Weight != 0 {
		t.Errorf("Expected canvas weight 0, got %f", cs.Weight)
	}
	if score.Overall < 0.9 {
		t.Errorf("Expected a zero-weight mismatch not to matter, got %f", score.Overall)
	}
}
