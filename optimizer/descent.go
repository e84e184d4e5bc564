package optimizer

import "math"

//////
// Const, vars, types.
//////

// GradientDescent is the pluggable one-step parameter update primitive.
// Implementations receive the current parameters and the gradient and
// return the updated parameters.
type GradientDescent interface {
	Update(params, grads []float64) []float64
	SetLR(lr float64)
}

// Adam implements the Adam optimizer with bias correction.
//
// Update rule:
//
//	m[i] = β1·m[i] + (1-β1)·g[i]
//	v[i] = β2·v[i] + (1-β2)·g[i]²
//	m̂[i] = m[i] / (1 - β1^t)
//	v̂[i] = v[i] / (1 - β2^t)
//	w[i] = w[i] - lr · m̂[i] / (√v̂[i] + ε)
type Adam struct {
	lr           float64
	beta1, beta2 float64
	eps          float64
	m, v         []float64
	step         int
}

// SGD implements plain stochastic gradient descent:
// w[i] = w[i] - lr·g[i].
type SGD struct {
	lr float64
}

//////
// Factory.
//////

// NewAdam creates an Adam optimizer with the given learning rate.
// Uses standard defaults: β1=0.9, β2=0.999, ε=1e-8.
func NewAdam(lr float64) *Adam {
	return &Adam{
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
	}
}

// NewSGD creates an SGD optimizer with the given learning rate.
func NewSGD(lr float64) *SGD {
	return &SGD{lr: lr}
}

//////
// Methods.
//////

// Update applies one Adam step and returns the updated parameters.
func (a *Adam) Update(params, grads []float64) []float64 {
	if a.m == nil {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
	}

	a.step++

	out := make([]float64, len(params))
	copy(out, params)

	for i, g := range grads {
		if g == 0 {
			continue
		}

		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := a.m[i] / (1 - math.Pow(a.beta1, float64(a.step)))
		vHat := a.v[i] / (1 - math.Pow(a.beta2, float64(a.step)))

		out[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}

	return out
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Update applies one SGD step and returns the updated parameters.
func (s *SGD) Update(params, grads []float64) []float64 {
	out := make([]float64, len(params))

	for i := range params {
		out[i] = params[i] - s.lr*grads[i]
	}

	return out
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
