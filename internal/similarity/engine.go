package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/metrics"
	"github.com/RishiKendai/fpsim/internal/models"
)

// Engine compares fingerprint snapshots. It keeps no state between calls and
// is safe for concurrent use.
type Engine struct {
	params      Params
	calculators [NumDimensions]Calculator
}

// NewEngine creates an engine bound to the given parameters
func NewEngine(params Params) *Engine {
	e := &Engine{params: params}
	for _, d := range AllDimensions() {
		e.calculators[d] = calculatorFor(d)
	}
	return e
}

func (e *Engine) Params() Params {
	return e.params
}

// componentOutcome is the fold state for one dimension
type componentOutcome struct {
	dimension Dimension
	result    *ComponentResult
}

// Calculate scores two snapshots. It always returns a well-formed score:
// failing calculators are skipped and reported in Diagnostics.
func (e *Engine) Calculate(c *models.Comparison) *models.SimilarityScore {
	if c == nil {
		c = &models.Comparison{}
	}

	outcomes, diagnostics := e.runCalculators(c)

	components := make(map[string]models.ComponentScore, len(outcomes))
	scores := make(map[Dimension]float64, len(outcomes))
	riskSet := make(map[string]struct{})

	weightedSum, totalWeight := 0.0, 0.0
	reliable := 0
	for _, o := range outcomes {
		score := clamp(o.result.Score, 0, 1)
		entropy := ComponentEntropy(c, o.dimension)
		reliability := e.params.Reliability(entropy, c.Temporal)
		weight := e.params.Weights[o.dimension]
		effective := weight * reliability

		weightedSum += score * effective
		totalWeight += effective
		if reliability > e.params.ReliableThreshold {
			reliable++
		}

		scores[o.dimension] = score
		components[o.dimension.String()] = models.ComponentScore{
			Score:       score,
			Weight:      weight,
			Entropy:     entropy,
			Reliability: reliability,
		}
		for _, r := range o.result.RiskIndicators {
			riskSet[r] = struct{}{}
		}
	}

	base := 0.0
	if totalWeight > 0 {
		base = weightedSum / totalWeight
	}

	factors := e.params.StabilityFactors(scores, c)
	avgStability := factors.Average()

	overall := clamp(e.params.Adjust(base, reliable, avgStability, c.Temporal), 0, 1)

	risks := make([]string, 0, len(riskSet))
	for r := range riskSet {
		risks = append(risks, r)
	}
	sort.Strings(risks)

	confidence := e.params.Confidence(overall, reliable, avgStability, len(risks))

	return &models.SimilarityScore{
		Overall:         overall,
		Confidence:      confidence,
		ComponentScores: components,
		Factors:         factors,
		RiskIndicators:  risks,
		Recommendation:  e.params.Recommend(overall, confidence, len(risks)),
		Diagnostics:     diagnostics,
	}
}

// runCalculators runs every calculator, dropping missing dimensions and
// folding failures into diagnostics
func (e *Engine) runCalculators(c *models.Comparison) ([]componentOutcome, []string) {
	outcomes := make([]componentOutcome, 0, NumDimensions)
	var diagnostics []string

	for _, d := range AllDimensions() {
		result, err := safeCalculate(e.calculators[d], d, c)
		if err != nil {
			diagnostics = append(diagnostics, calculatorFailed(d, err))
			continue
		}
		if result == nil {
			continue
		}
		if math.IsNaN(result.Score) {
			err = fmt.Errorf("%w: %s produced a NaN score", ErrMalformedComponent, d)
			diagnostics = append(diagnostics, calculatorFailed(d, err))
			continue
		}
		outcomes = append(outcomes, componentOutcome{dimension: d, result: result})
	}

	return outcomes, diagnostics
}

func calculatorFailed(d Dimension, err error) string {
	log.Warn().Err(err).Str("dimension", d.String()).Msg("Component calculator failed, skipping dimension")
	metrics.RecordCalculatorFailure(d.String())
	return fmt.Sprintf("%s: %v", d, err)
}

func safeCalculate(calc Calculator, d Dimension, c *models.Comparison) (result *ComponentResult, err error) {
	if calc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCalculator, d)
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrCalculatorPanic, r)
		}
	}()
	return calc.Calculate(c)
}
