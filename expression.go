package rco

//////
// Const, vars, types.
//////

// term is a single scaled rate inside an Expression.
type term struct {
	coeff float64
	r     *rate
}

// Expression is an affine combination of rates plus a constant offset. It
// supports two parallel evaluations over the same structure:
//
//   - Penalty: each rate contributes a differentiable hinge surrogate,
//     chosen per term so the total upper-bounds the true value. This is
//     what gradient steps see.
//   - TrueValue: each rate contributes its exact zero-one value. This is
//     what constraint reporting and multiplier updates see.
//
// Expressions are immutable; all arithmetic returns new values. Evaluating
// the same Expression twice on unchanged predictions yields identical
// results.
type Expression struct {
	terms  []term
	offset float64
}

// Constraint asserts that an Expression is at most zero. Constraints are
// built from Expressions via LowerBound and UpperBound, which perform the
// sign normalization.
type Constraint struct {
	expr *Expression
}

//////
// Factory.
//////

// Constant creates an Expression with no rate terms, just a fixed value.
func Constant(v float64) *Expression {
	return &Expression{offset: v}
}

// leaf wraps a single rate with coefficient one.
func leaf(r *rate) *Expression {
	return &Expression{terms: []term{{coeff: 1, r: r}}}
}

//////
// Methods.
//////

// Add returns the sum of two Expressions.
func (e *Expression) Add(o *Expression) *Expression {
	terms := make([]term, 0, len(e.terms)+len(o.terms))
	terms = append(terms, e.terms...)
	terms = append(terms, o.terms...)

	return &Expression{terms: terms, offset: e.offset + o.offset}
}

// Sub returns the difference of two Expressions.
func (e *Expression) Sub(o *Expression) *Expression {
	return e.Add(o.Scale(-1))
}

// Scale returns the Expression multiplied by a scalar.
func (e *Expression) Scale(c float64) *Expression {
	terms := make([]term, len(e.terms))
	for i, t := range e.terms {
		terms[i] = term{coeff: c * t.coeff, r: t.r}
	}

	return &Expression{terms: terms, offset: c * e.offset}
}

// Shift returns the Expression plus a constant.
func (e *Expression) Shift(c float64) *Expression {
	terms := make([]term, len(e.terms))
	copy(terms, e.terms)

	return &Expression{terms: terms, offset: e.offset + c}
}

// Neg returns the negated Expression.
func (e *Expression) Neg() *Expression {
	return e.Scale(-1)
}

// Penalty evaluates the differentiable surrogate value of the Expression at
// the given predictions. Terms with nonnegative coefficients use their
// rate's upper-bound surrogate and negative terms use the lower bound, so
// the result upper-bounds TrueValue.
func (e *Expression) Penalty(preds []float64) (float64, error) {
	total := e.offset

	for _, t := range e.terms {
		v, err := t.r.penaltyValue(preds, t.coeff >= 0)
		if err != nil {
			return 0, err
		}

		total += t.coeff * v
	}

	return total, nil
}

// TrueValue evaluates the exact zero-one value of the Expression at the
// given predictions.
func (e *Expression) TrueValue(preds []float64) (float64, error) {
	total := e.offset

	for _, t := range e.terms {
		v, err := t.r.trueValue(preds)
		if err != nil {
			return 0, err
		}

		total += t.coeff * v
	}

	return total, nil
}

// LowerBound constrains the Expression to be at least bound. The resulting
// Constraint's expression is bound - e, asserted <= 0.
func (e *Expression) LowerBound(bound float64) *Constraint {
	return &Constraint{expr: Constant(bound).Sub(e)}
}

// UpperBound constrains the Expression to be at most bound. The resulting
// Constraint's expression is e - bound, asserted <= 0.
func (e *Expression) UpperBound(bound float64) *Constraint {
	return &Constraint{expr: e.Shift(-bound)}
}

// Expression returns the sign-normalized expression asserted <= 0.
func (ct *Constraint) Expression() *Expression {
	return ct.expr
}

// TrueValue is the constraint's exact violation: positive means violated,
// nonpositive means satisfied.
func (ct *Constraint) TrueValue(preds []float64) (float64, error) {
	return ct.expr.TrueValue(preds)
}

// Penalty is the constraint's differentiable violation surrogate.
func (ct *Constraint) Penalty(preds []float64) (float64, error) {
	return ct.expr.Penalty(preds)
}
