// Package attribution reduces per-record, per-feature attribution vectors
// from the explainer into one ranked mapping of feature to mean absolute
// contribution, lowest-impact feature first. The order is part of the
// dashboard contract.
package attribution

import (
	"math"
	"sort"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/model"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/report"
)

// Compute aggregates attributions for a feature matrix whose columns
// follow the given feature order. An empty batch yields a mapping with
// every feature present and each value null.
func Compute(matrix [][]float64, features []string, explainer model.Explainer) report.Attribution {
	sums := make([]float64, len(features))
	vectors := explainer.Attributions(matrix)
	for _, vec := range vectors {
		for j, v := range vec {
			sums[j] += math.Abs(v)
		}
	}

	out := make(report.Attribution, len(features))
	for j, name := range features {
		mean := math.NaN()
		if len(vectors) > 0 {
			mean = sums[j] / float64(len(vectors))
		}
		out[j] = report.FeatureValue{Feature: name, Value: report.Number(mean)}
	}

	// Ascending by value; undefined values keep their feature order at
	// the end.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value, out[j].Value
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		return a.Value < b.Value
	})
	return out
}
