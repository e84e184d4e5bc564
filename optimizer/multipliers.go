package optimizer

import "math"

//////
// Const, vars, types.
//////

// multipliers is the optimizer's internal state: a probability distribution
// over m+1 components, where component 0 weights the objective and
// component i+1 weights constraint i in the proxy combination. The state is
// owned exclusively by one Training, initialized uniform, and updated every
// step by a multiplicative-weights rule driven by the true constraint
// violations: a violated constraint grows its weight, a satisfied one
// shrinks it.
type multipliers struct {
	weights []float64
	lr      float64
}

//////
// Factory.
//////

// newMultipliers creates a uniform distribution over the objective and m
// constraints.
func newMultipliers(m int, lr float64) *multipliers {
	weights := make([]float64, m+1)
	for i := range weights {
		weights[i] = 1 / float64(m+1)
	}

	return &multipliers{weights: weights, lr: lr}
}

//////
// Methods.
//////

// update applies one mirror-ascent step on the simplex. The objective
// component sees a zero signal; constraint component i+1 sees the true
// violation of constraint i.
func (s *multipliers) update(violations []float64) {
	var total float64

	for i := range s.weights {
		if i > 0 {
			s.weights[i] *= math.Exp(s.lr * violations[i-1])
		}

		total += s.weights[i]
	}

	for i := range s.weights {
		s.weights[i] /= total
	}
}

// objectiveWeight is the weight on the proxy objective.
func (s *multipliers) objectiveWeight() float64 {
	return s.weights[0]
}

// constraintWeight is the weight on constraint i's proxy violation.
func (s *multipliers) constraintWeight(i int) float64 {
	return s.weights[i+1]
}

// snapshot returns a copy of the full distribution.
func (s *multipliers) snapshot() []float64 {
	out := make([]float64, len(s.weights))
	copy(out, s.weights)

	return out
}
