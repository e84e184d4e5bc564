package rco

import "math"

//////
// Const, vars, types.
//////

// rateKind identifies the prediction predicate a rate counts. Each kind
// carries three losses per example: the exact zero-one indicator (the true
// loss) and a pair of hinge surrogates bracketing it from above and below
// (the penalty losses). The true loss drives constraint reporting and
// multiplier updates; the surrogates drive gradient steps.
type rateKind int

const (
	// positivePrediction counts examples with prediction > 0.
	positivePrediction rateKind = iota

	// negativePrediction counts examples with prediction <= 0.
	negativePrediction

	// misclassification counts examples whose prediction sign disagrees
	// with the label.
	misclassification

	// correctClassification counts examples whose prediction sign agrees
	// with the label.
	correctClassification
)

//////
// Helpers.
//////

// hinge is max(0, x), the basic building block of all surrogate losses.
func hinge(x float64) float64 {
	return math.Max(0, x)
}

// signedLabel maps a {0, 1} label to {-1, +1}.
func signedLabel(y float64) float64 {
	if y > 0.5 {
		return 1
	}

	return -1
}

//////
// Methods.
//////

// trueLoss is the exact zero-one indicator for this kind at prediction z
// with label y.
func (k rateKind) trueLoss(z, y float64) float64 {
	switch k {
	case positivePrediction:
		if z > 0 {
			return 1
		}
		return 0
	case negativePrediction:
		if z <= 0 {
			return 1
		}
		return 0
	case misclassification:
		if signedLabel(y)*z <= 0 {
			return 1
		}
		return 0
	default: // correctClassification
		if signedLabel(y)*z > 0 {
			return 1
		}
		return 0
	}
}

// upperLoss is a convex hinge surrogate that upper-bounds trueLoss. Used
// for penalty evaluation of terms with nonnegative coefficients.
func (k rateKind) upperLoss(z, y float64) float64 {
	switch k {
	case positivePrediction:
		return hinge(1 + z)
	case negativePrediction:
		return hinge(1 - z)
	case misclassification:
		return hinge(1 - signedLabel(y)*z)
	default: // correctClassification
		return hinge(1 + signedLabel(y)*z)
	}
}

// lowerLoss is a concave hinge surrogate that lower-bounds trueLoss. Used
// for penalty evaluation of terms with negative coefficients, so that the
// penalty value of the whole expression still upper-bounds its true value.
func (k rateKind) lowerLoss(z, y float64) float64 {
	switch k {
	case positivePrediction:
		return 1 - hinge(1-z)
	case negativePrediction:
		return 1 - hinge(1+z)
	case misclassification:
		return 1 - hinge(1+signedLabel(y)*z)
	default: // correctClassification
		return 1 - hinge(1-signedLabel(y)*z)
	}
}
