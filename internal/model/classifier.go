package model

import "math"

// logisticClassifier scores rows with a fitted logistic model. It is the
// concrete classifier behind the artifacts document; anything satisfying
// Classifier can replace it.
type logisticClassifier struct {
	coefficients []float64
	intercept    float64
}

func (c *logisticClassifier) PredictProba(matrix [][]float64) []float64 {
	probs := make([]float64, len(matrix))
	for i, row := range matrix {
		z := c.intercept
		for j, x := range row {
			z += c.coefficients[j] * x
		}
		probs[i] = 1.0 / (1.0 + math.Exp(-z))
	}
	return probs
}

// linearExplainer computes exact SHAP values for a linear model in
// log-odds space: the contribution of feature j for a row is
// coef_j * (x_j - mean_j), where mean_j is the training-set mean.
type linearExplainer struct {
	coefficients []float64
	means        []float64
}

func (e *linearExplainer) Attributions(matrix [][]float64) [][]float64 {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		contrib := make([]float64, len(row))
		for j, x := range row {
			contrib[j] = e.coefficients[j] * (x - e.means[j])
		}
		out[i] = contrib
	}
	return out
}
