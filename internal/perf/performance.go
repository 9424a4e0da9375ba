// Package perf computes the classification-performance bundle for a
// validated batch: F1 score, confusion matrix, ROC curve, and AUC. The
// curve numerics come from gonum; this package fixes the label order and
// the degenerate-input policy.
package perf

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/batch"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/report"
)

// classLabels is the fixed row/column order of the confusion matrix: the
// negative class first.
var classLabels = []string{batch.LabelChargedOffName, batch.LabelFullyPaidName}

// Compute builds the performance section for a scored, validated batch.
// Callers enforce the validation gate; records without ground truth must
// not reach this function.
func Compute(b *batch.Batch) *report.Performance {
	n := len(b.Records)
	truth := make([]int, n)
	predicted := make([]int, n)
	probs := make([]float64, n)
	for i := range b.Records {
		rec := &b.Records[i]
		truth[i] = *rec.LoanStatus
		predicted[i] = rec.Prediction
		probs[i] = rec.Probability
	}

	tpr, fpr := rocCurve(truth, probs)

	return &report.Performance{
		F1:              f1Score(truth, predicted),
		ConfusionMatrix: confusionMatrix(truth, predicted),
		AUC:             auc(fpr, tpr),
		ROC:             rocPoints(fpr, tpr),
	}
}

// f1Score is the F1 of the positive ("Fully Paid") class. An empty
// denominator yields 0, matching the usual zero-division convention.
func f1Score(truth, predicted []int) float64 {
	var tp, fp, fn int
	for i := range truth {
		switch {
		case truth[i] == 1 && predicted[i] == 1:
			tp++
		case truth[i] == 0 && predicted[i] == 1:
			fp++
		case truth[i] == 1 && predicted[i] == 0:
			fn++
		}
	}
	denom := 2*tp + fp + fn
	if denom == 0 {
		return 0
	}
	return 2 * float64(tp) / float64(denom)
}

// confusionMatrix counts the 2x2 table, row index = true class, column =
// predicted class, both in classLabels order.
func confusionMatrix(truth, predicted []int) []report.ConfusionRow {
	var counts [2][2]int
	for i := range truth {
		counts[truth[i]][predicted[i]]++
	}

	rows := make([]report.ConfusionRow, len(classLabels))
	for i := range classLabels {
		rows[i] = report.ConfusionRow{
			Labels: classLabels,
			Counts: []int{counts[i][0], counts[i][1]},
		}
	}
	return rows
}

// rocCurve evaluates the ROC curve at every cutoff gonum considers,
// returned in ascending-fpr orientation.
func rocCurve(truth []int, probs []float64) (tpr, fpr []float64) {
	// stat.ROC wants scores ascending with the class slice in lockstep.
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	y := make([]float64, len(probs))
	classes := make([]bool, len(probs))
	for i, j := range idx {
		y[i] = probs[j]
		classes[i] = truth[j] == 1
	}

	// stat.ROC already orients the curve with fpr ascending, (0,0) first.
	tpr, fpr, _ = stat.ROC(nil, y, classes, nil)
	return tpr, fpr
}

// auc integrates the curve. With a single ground-truth class one of the
// rates is undefined and the area is reported as null, not an error.
func auc(fpr, tpr []float64) report.Cell {
	if len(fpr) < 2 || hasNaN(fpr) || hasNaN(tpr) {
		return report.Null()
	}
	return report.Number(integrate.Trapezoidal(fpr, tpr))
}

func rocPoints(fpr, tpr []float64) []report.ROCPoint {
	points := make([]report.ROCPoint, len(fpr))
	for i := range fpr {
		points[i] = report.ROCPoint{
			FPR: report.Number(fpr[i]),
			TPR: report.Number(tpr[i]),
		}
	}
	return points
}

func hasNaN(s []float64) bool {
	for _, v := range s {
		if v != v {
			return true
		}
	}
	return false
}
