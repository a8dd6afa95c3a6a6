package draw

import "math"

func viable(w float64) bool {
	return w > 0 && !math.IsInf(w, 1)
}

// Pick selects an index with probability proportional to its weight.
// Non-positive, NaN and infinite weights are never selected.
//
// Postcondition: Returns ErrEmptyPool iff no weight is viable. Float drift past
// the last cumulative boundary returns the last viable index.
func Pick(src Source, weights []float64) (int, error) {
	total := 0.0
	last := -1
	for i, w := range weights {
		if viable(w) {
			total += w
			last = i
		}
	}
	if last < 0 || total <= 0 {
		return -1, ErrEmptyPool
	}

	r := src.Float64() * total
	acc := 0.0
	for i, w := range weights {
		if !viable(w) {
			continue
		}
		acc += w
		if r < acc {
			return i, nil
		}
	}
	return last, nil
}

// PickUniform selects an index in [0, n) with equal probability.
//
// Postcondition: Returns ErrEmptyPool iff n <= 0.
func PickUniform(src Source, n int) (int, error) {
	if n <= 0 {
		return -1, ErrEmptyPool
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	return Pick(src, weights)
}
