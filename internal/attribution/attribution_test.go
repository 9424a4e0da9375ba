package attribution

import (
	"math"
	"testing"
)

// stubExplainer returns fixed attribution vectors.
type stubExplainer struct {
	vectors [][]float64
}

func (s *stubExplainer) Attributions(matrix [][]float64) [][]float64 {
	return s.vectors[:len(matrix)]
}

func TestCompute(t *testing.T) {
	features := []string{"int_rate", "loan_amnt", "rent_indicator"}
	ex := &stubExplainer{vectors: [][]float64{
		{0.4, -0.1, 0.2},
		{-0.6, 0.1, -0.2},
	}}
	matrix := [][]float64{{1, 2, 3}, {4, 5, 6}}

	out := Compute(matrix, features, ex)

	if len(out) != len(features) {
		t.Fatalf("feature count = %d, want %d", len(out), len(features))
	}

	// Means of absolute values: int_rate 0.5, loan_amnt 0.1,
	// rent_indicator 0.2 → ascending order.
	wantOrder := []string{"loan_amnt", "rent_indicator", "int_rate"}
	wantValue := []float64{0.1, 0.2, 0.5}
	for i, fv := range out {
		if fv.Feature != wantOrder[i] {
			t.Errorf("position %d: feature %s, want %s", i, fv.Feature, wantOrder[i])
		}
		if !fv.Value.Valid || math.Abs(fv.Value.Value-wantValue[i]) > 1e-12 {
			t.Errorf("position %d: value %+v, want %v", i, fv.Value, wantValue[i])
		}
	}

	// No extras, no omissions.
	seen := make(map[string]bool)
	for _, fv := range out {
		seen[fv.Feature] = true
	}
	for _, f := range features {
		if !seen[f] {
			t.Errorf("feature %s missing from summary", f)
		}
	}
}

func TestCompute_AscendingInvariant(t *testing.T) {
	features := []string{"a", "b", "c", "d"}
	ex := &stubExplainer{vectors: [][]float64{{3, -1, 0.5, 2}}}

	out := Compute([][]float64{{0, 0, 0, 0}}, features, ex)
	for i := 1; i < len(out); i++ {
		if out[i].Value.Value < out[i-1].Value.Value {
			t.Fatalf("values not ascending at %d: %v < %v", i, out[i].Value.Value, out[i-1].Value.Value)
		}
	}
}

func TestCompute_EmptyBatch(t *testing.T) {
	features := []string{"a", "b"}
	ex := &stubExplainer{}

	out := Compute(nil, features, ex)
	if len(out) != 2 {
		t.Fatalf("feature count = %d, want 2", len(out))
	}
	for _, fv := range out {
		if fv.Value.Valid {
			t.Errorf("%s: empty batch should yield null, got %v", fv.Feature, fv.Value.Value)
		}
	}
}
