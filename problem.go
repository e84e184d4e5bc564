package rco

//////
// Const, vars, types.
//////

// Problem is the fixed capability interface every minimization problem must
// implement, whether built from rate expressions or hand-authored. The two
// constraint vectors must have identical length and ordering so a
// downstream optimizer can match a multiplier to its constraint; the
// optimizer validates this once before training (ErrShapeMismatch).
type Problem interface {
	// Objective is the scalar differentiable value to minimize, always
	// proxy-evaluated.
	Objective(preds []float64) (float64, error)

	// Constraints is the vector of exact constraint violations, one per
	// declared constraint. An entry <= 0 means the constraint is
	// satisfied.
	Constraints(preds []float64) ([]float64, error)

	// ProxyConstraints is the vector of differentiable constraint
	// violation surrogates, index-aligned with Constraints.
	ProxyConstraints(preds []float64) ([]float64, error)
}

// RateProblem packages an objective Expression and an ordered sequence of
// Constraints into a Problem. The true and proxy constraint vectors are
// index-aligned by construction.
type RateProblem struct {
	objective   *Expression
	constraints []*Constraint
}

//////
// Factory.
//////

// NewRateProblem creates a Problem that minimizes objective subject to each
// constraint's expression being at most zero.
func NewRateProblem(objective *Expression, constraints ...*Constraint) *RateProblem {
	return &RateProblem{objective: objective, constraints: constraints}
}

//////
// Methods.
//////

// Objective evaluates the proxy objective at the given predictions.
func (p *RateProblem) Objective(preds []float64) (float64, error) {
	return p.objective.Penalty(preds)
}

// TrueObjective evaluates the exact zero-one objective at the given
// predictions. Useful for snapshot error metrics and reporting.
func (p *RateProblem) TrueObjective(preds []float64) (float64, error) {
	return p.objective.TrueValue(preds)
}

// Constraints evaluates the exact violation of every constraint.
func (p *RateProblem) Constraints(preds []float64) ([]float64, error) {
	out := make([]float64, len(p.constraints))

	for i, ct := range p.constraints {
		v, err := ct.TrueValue(preds)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// ProxyConstraints evaluates the differentiable violation surrogate of
// every constraint, index-aligned with Constraints.
func (p *RateProblem) ProxyConstraints(preds []float64) ([]float64, error) {
	out := make([]float64, len(p.constraints))

	for i, ct := range p.constraints {
		v, err := ct.Penalty(preds)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// NumConstraints returns the number of declared constraints.
func (p *RateProblem) NumConstraints() int {
	return len(p.constraints)
}
