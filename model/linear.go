// Package model provides the differentiable model-evaluation boundary used
// by the examples and tests: a linear scorer over a gonum feature matrix.
package model

import "gonum.org/v1/gonum/mat"

// Linear scores each row of a feature matrix as x·w + b. Parameters are
// packed into a single slice: the first NumFeatures entries are weights,
// the last entry is the bias. The packed form is what gradient-descent
// optimizers update in place.
type Linear struct {
	features *mat.Dense
}

// NewLinear creates a linear model over the given feature matrix. The
// matrix is not copied; callers must not mutate it during training.
func NewLinear(features *mat.Dense) *Linear {
	return &Linear{features: features}
}

// NumParams returns the length of the packed parameter slice: one weight
// per feature column plus a bias.
func (m *Linear) NumParams() int {
	_, cols := m.features.Dims()

	return cols + 1
}

// InitialParams returns a zero parameter slice of the right length.
func (m *Linear) InitialParams() []float64 {
	return make([]float64, m.NumParams())
}

// Predict returns one real-valued score per example row. A positive score
// is a positive prediction.
func (m *Linear) Predict(params []float64) []float64 {
	rows, cols := m.features.Dims()
	preds := make([]float64, rows)

	bias := params[cols]

	for i := 0; i < rows; i++ {
		score := bias

		for j := 0; j < cols; j++ {
			score += m.features.At(i, j) * params[j]
		}

		preds[i] = score
	}

	return preds
}

// PredictOn scores rows of a different feature matrix with the same
// parameters, e.g. a held-out evaluation set.
func (m *Linear) PredictOn(features *mat.Dense, params []float64) []float64 {
	return (&Linear{features: features}).Predict(params)
}
