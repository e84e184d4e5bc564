package rco

//////
// Const, vars, types.
//////

// rate is a single leaf of an Expression: the proportion of examples in a
// Context slice satisfying the kind's predicate.
type rate struct {
	ctx  *Context
	kind rateKind
}

//////
// Methods.
//////

// trueValue averages the zero-one loss over the slice.
//
// Returns ErrEmptySlice if no example is in the slice and ErrLengthMismatch
// if preds does not have one entry per dataset example.
func (r *rate) trueValue(preds []float64) (float64, error) {
	return r.average(preds, r.kind.trueLoss)
}

// penaltyValue averages a hinge surrogate over the slice; upper selects the
// upper-bound surrogate, otherwise the lower bound is used.
func (r *rate) penaltyValue(preds []float64, upper bool) (float64, error) {
	if upper {
		return r.average(preds, r.kind.upperLoss)
	}

	return r.average(preds, r.kind.lowerLoss)
}

func (r *rate) average(preds []float64, loss func(z, y float64) float64) (float64, error) {
	if len(preds) != r.ctx.Len() {
		return 0, ErrLengthMismatch
	}

	var sum float64

	count := 0

	for i, in := range r.ctx.mask {
		if !in {
			continue
		}

		sum += loss(preds[i], r.ctx.labels[i])
		count++
	}

	if count == 0 {
		return 0, ErrEmptySlice
	}

	return sum / float64(count), nil
}

//////
// Exported functionalities.
//////

// PositiveRate is the proportion of examples in the slice predicted
// positive (prediction > 0).
func PositiveRate(c *Context) *Expression {
	return leaf(&rate{ctx: c, kind: positivePrediction})
}

// NegativeRate is the proportion of examples in the slice predicted
// negative (prediction <= 0).
func NegativeRate(c *Context) *Expression {
	return leaf(&rate{ctx: c, kind: negativePrediction})
}

// ErrorRate is the proportion of examples in the slice whose prediction
// sign disagrees with the label.
func ErrorRate(c *Context) *Expression {
	return leaf(&rate{ctx: c, kind: misclassification})
}

// AccuracyRate is the proportion of examples in the slice whose prediction
// sign agrees with the label.
func AccuracyRate(c *Context) *Expression {
	return leaf(&rate{ctx: c, kind: correctClassification})
}

// TruePositiveRate is the proportion of positively labeled examples in the
// slice predicted positive. Also known as recall.
func TruePositiveRate(c *Context) *Expression {
	return PositiveRate(c.WherePositive())
}

// Recall is an alias for TruePositiveRate.
func Recall(c *Context) *Expression {
	return TruePositiveRate(c)
}

// FalsePositiveRate is the proportion of negatively labeled examples in the
// slice predicted positive.
func FalsePositiveRate(c *Context) *Expression {
	return PositiveRate(c.WhereNegative())
}

// TrueNegativeRate is the proportion of negatively labeled examples in the
// slice predicted negative.
func TrueNegativeRate(c *Context) *Expression {
	return NegativeRate(c.WhereNegative())
}

// FalseNegativeRate is the proportion of positively labeled examples in the
// slice predicted negative.
func FalseNegativeRate(c *Context) *Expression {
	return NegativeRate(c.WherePositive())
}
