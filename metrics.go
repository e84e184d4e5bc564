package rco

import "math"

//////
// Exported functionalities.
//////

// BinaryErrorRate is the proportion of examples whose prediction sign
// disagrees with the {0, 1} label. Returns NaN on an empty dataset.
func BinaryErrorRate(preds, labels []float64) float64 {
	if len(preds) == 0 || len(preds) != len(labels) {
		return math.NaN()
	}

	errs := 0

	for i, z := range preds {
		if signedLabel(labels[i])*z <= 0 {
			errs++
		}
	}

	return float64(errs) / float64(len(preds))
}

// RecallValue is the proportion of positively labeled examples predicted
// positive. Returns NaN if there are no positive examples.
func RecallValue(preds, labels []float64) float64 {
	positives, hits := 0, 0

	for i, z := range preds {
		if i >= len(labels) {
			break
		}

		if labels[i] > 0.5 {
			positives++

			if z > 0 {
				hits++
			}
		}
	}

	if positives == 0 {
		return math.NaN()
	}

	return float64(hits) / float64(positives)
}

// FalsePositiveRateValue is the proportion of negatively labeled examples
// predicted positive. Returns NaN if there are no negative examples.
func FalsePositiveRateValue(preds, labels []float64) float64 {
	negatives, hits := 0, 0

	for i, z := range preds {
		if i >= len(labels) {
			break
		}

		if labels[i] <= 0.5 {
			negatives++

			if z > 0 {
				hits++
			}
		}
	}

	if negatives == 0 {
		return math.NaN()
	}

	return float64(hits) / float64(negatives)
}
