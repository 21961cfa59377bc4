package scoring

// BalancedAccuracy averages, over every class found in either sequence, the
// mean of that class's sensitivity and specificity. A class with no true
// instances has sensitivity 0; a class that is the true label of every sample
// has specificity 1. 0.5 is chance level and 1.0 is perfect.
func BalancedAccuracy[L comparable](yTrue, yPred []L) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, ErrLengthMismatch
	}
	if len(yTrue) == 0 {
		return 0, nil
	}

	classes := make([]L, 0)
	seen := make(map[L]struct{})
	for _, labels := range [][]L{yTrue, yPred} {
		for _, l := range labels {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				classes = append(classes, l)
			}
		}
	}

	var total float64
	for _, class := range classes {
		var positives, negatives, truePositives, trueNegatives int
		for i := range yTrue {
			if yTrue[i] == class {
				positives++
				if yPred[i] == class {
					truePositives++
				}
			} else {
				negatives++
				if yPred[i] != class {
					trueNegatives++
				}
			}
		}

		var sensitivity, specificity float64
		if positives != 0 {
			sensitivity = float64(truePositives) / float64(positives)
		}
		if negatives != 0 {
			specificity = float64(trueNegatives) / float64(negatives)
		} else {
			specificity = 1
		}
		total += (sensitivity + specificity) / 2
	}

	return total / float64(len(classes)), nil
}
