package rco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionLinearity(t *testing.T) {
	ctx := NewContext(testLabels)

	e1 := ErrorRate(ctx)
	e2 := PositiveRate(ctx)

	c := 2.5

	combined := e1.Scale(c).Add(e2)

	// Penalty linearity for nonnegative coefficients.
	p1, err := e1.Penalty(testPreds)
	require.NoError(t, err)
	p2, err := e2.Penalty(testPreds)
	require.NoError(t, err)
	pc, err := combined.Penalty(testPreds)
	require.NoError(t, err)

	assert.InDelta(t, c*p1+p2, pc, 1e-12)

	// True-value linearity holds for any coefficients.
	v1 := trueValueOf(t, e1, testPreds)
	v2 := trueValueOf(t, e2, testPreds)

	assert.InDelta(t, c*v1+v2, trueValueOf(t, combined, testPreds), 1e-12)
	assert.InDelta(t, -3*v1+v2, trueValueOf(t, e1.Scale(-3).Add(e2), testPreds), 1e-12)
	assert.InDelta(t, v1-v2, trueValueOf(t, e1.Sub(e2), testPreds), 1e-12)
	assert.InDelta(t, -v1, trueValueOf(t, e1.Neg(), testPreds), 1e-12)
	assert.InDelta(t, v1+0.25, trueValueOf(t, e1.Shift(0.25), testPreds), 1e-12)
}

func TestConstantExpression(t *testing.T) {
	e := Constant(0.4)

	v, err := e.TrueValue(nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, v, 1e-12)

	p, err := e.Penalty(nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, p, 1e-12)
}

// Constraints built as "rate >= bound" must have true value equal to
// bound - rate, for every rate helper.
func TestLowerBoundSignConvention(t *testing.T) {
	ctx := NewContext(testLabels)

	rates := []*Expression{
		PositiveRate(ctx),
		NegativeRate(ctx),
		ErrorRate(ctx),
		AccuracyRate(ctx),
		TruePositiveRate(ctx),
		FalsePositiveRate(ctx),
		TrueNegativeRate(ctx),
		FalseNegativeRate(ctx),
	}

	for _, e := range rates {
		bound := 0.9
		ct := e.LowerBound(bound)

		got, err := ct.TrueValue(testPreds)
		require.NoError(t, err)

		assert.InDelta(t, bound-trueValueOf(t, e, testPreds), got, 1e-12)
	}
}

func TestUpperBoundSignConvention(t *testing.T) {
	ctx := NewContext(testLabels)

	e := FalsePositiveRate(ctx)
	ct := e.UpperBound(0.1)

	got, err := ct.TrueValue(testPreds)
	require.NoError(t, err)

	assert.InDelta(t, trueValueOf(t, e, testPreds)-0.1, got, 1e-12)
}

// The penalty of a "rate >= bound" constraint must upper-bound its true
// violation: driving the surrogate to zero certifies the true constraint.
func TestConstraintPenaltyUpperBoundsTrueValue(t *testing.T) {
	ctx := NewContext(testLabels)

	ct := Recall(ctx).LowerBound(0.9)

	p, err := ct.Penalty(testPreds)
	require.NoError(t, err)

	v, err := ct.TrueValue(testPreds)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, p, v)
}

func TestEvaluationIdempotence(t *testing.T) {
	ctx := NewContext(testLabels)

	e := ErrorRate(ctx).Scale(2).Add(Recall(ctx).Neg()).Shift(0.5)

	p1, err := e.Penalty(testPreds)
	require.NoError(t, err)
	p2, err := e.Penalty(testPreds)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)

	v1 := trueValueOf(t, e, testPreds)
	v2 := trueValueOf(t, e, testPreds)

	assert.Equal(t, v1, v2)
}

func TestArithmeticDoesNotMutate(t *testing.T) {
	ctx := NewContext(testLabels)

	e := ErrorRate(ctx)
	before := trueValueOf(t, e, testPreds)

	_ = e.Scale(10)
	_ = e.Add(PositiveRate(ctx))
	_ = e.Shift(5)
	_ = e.Neg()

	assert.Equal(t, before, trueValueOf(t, e, testPreds))
}
