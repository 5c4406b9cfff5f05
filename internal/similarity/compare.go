package similarity

import (
	"math"
)

// partial averages whichever sub-components were comparable on both sides
type partial struct {
	sum float64
	n   int
}

func (p *partial) add(v float64) {
	p.sum += v
	p.n++
}

func (p *partial) match(ok bool) {
	if ok {
		p.add(1)
	} else {
		p.add(0)
	}
}

// mean returns 0 when nothing was comparable
func (p *partial) mean() float64 {
	if p.n == 0 {
		return 0
	}
	return p.sum / float64(p.n)
}

// jaccard calculates |A ∩ B| / |A ∪ B| over two string sets
func jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}

	shared := 0
	for v := range setA {
		if setB[v] {
			shared++
		}
	}

	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// mapMatch is the fraction of keys (over the union) whose values are equal on
// both sides
func mapMatch[K comparable, V comparable](a, b map[K]V) float64 {
	keys := make(map[K]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	if len(keys) == 0 {
		return 0
	}

	matched := 0
	for k := range keys {
		va, okA := a[k]
		vb, okB := b[k]
		if okA && okB && va == vb {
			matched++
		}
	}
	return float64(matched) / float64(len(keys))
}

// withinTolerance reports whether a and b differ by at most tol relative to
// the larger magnitude
func withinTolerance(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b)/math.Max(math.Abs(a), math.Abs(b)) <= tol
}

// metricsMatch is the fraction of shared numeric metrics within tolerance.
// ok is false when the maps share no keys.
func metricsMatch(a, b map[string]float64, tol float64) (float64, bool) {
	shared, matched := 0, 0
	for k, va := range a {
		vb, exists := b[k]
		if !exists {
			continue
		}
		shared++
		if withinTolerance(va, vb, tol) {
			matched++
		}
	}
	if shared == 0 {
		return 0, false
	}
	return float64(matched) / float64(shared), true
}

// relativeSimilarity maps the relative difference of two values onto [0, 1]
func relativeSimilarity(a, b float64) float64 {
	if a == b {
		return 1
	}
	denom := math.Max(math.Abs(a), math.Abs(b))
	return clamp(1-math.Abs(a-b)/denom, 0, 1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ptrEqual[T comparable](a, b *T) (equal, ok bool) {
	if a == nil || b == nil {
		return false, false
	}
	return *a == *b, true
}
