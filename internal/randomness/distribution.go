package randomness

import (
	"github.com/tphakala/mediaseed/internal/errors"
)

// Outcome pairs a value with its relative weight.
type Outcome[T any] struct {
	Value  T
	Weight float64
}

// Distribution is a discrete distribution normalized once at construction.
// Sampling takes exactly one uniform draw.
type Distribution[T any] struct {
	values     []T
	probs      []float64
	cumulative []float64
}

// NewDistribution normalizes the weights of outcomes. Weights need not sum
// to 1, but they must be non-negative and at least one must be positive.
func NewDistribution[T any](outcomes ...Outcome[T]) (*Distribution[T], error) {
	if len(outcomes) == 0 {
		return nil, errors.Newf("distribution has no outcomes").
			Component("randomness").
			Category(errors.CategoryValidation).
			Build()
	}

	var total float64
	for i, o := range outcomes {
		if o.Weight < 0 {
			return nil, errors.Newf("outcome %d has negative weight %v", i, o.Weight).
				Component("randomness").
				Category(errors.CategoryValidation).
				Build()
		}
		total += o.Weight
	}
	if total <= 0 {
		return nil, errors.Newf("distribution weights sum to zero").
			Component("randomness").
			Category(errors.CategoryValidation).
			Build()
	}

	d := &Distribution[T]{
		values:     make([]T, len(outcomes)),
		probs:      make([]float64, len(outcomes)),
		cumulative: make([]float64, len(outcomes)),
	}
	var acc float64
	for i, o := range outcomes {
		d.values[i] = o.Value
		d.probs[i] = o.Weight / total
		acc += d.probs[i]
		d.cumulative[i] = acc
	}
	return d, nil
}

// MustDistribution is NewDistribution for static tables known to be valid.
func MustDistribution[T any](outcomes ...Outcome[T]) *Distribution[T] {
	d, err := NewDistribution(outcomes...)
	if err != nil {
		panic(err)
	}
	return d
}

// Sample draws one value.
func (d *Distribution[T]) Sample(s *Source) T {
	r := s.Float64()
	for i, c := range d.cumulative {
		if r < c {
			return d.values[i]
		}
	}
	// Floating point accumulation can leave the last threshold just below 1.
	for i := len(d.probs) - 1; i > 0; i-- {
		if d.probs[i] > 0 {
			return d.values[i]
		}
	}
	return d.values[0]
}

// Probabilities returns the normalized probabilities in outcome order.
func (d *Distribution[T]) Probabilities() []float64 {
	out := make([]float64, len(d.probs))
	copy(out, d.probs)
	return out
}
