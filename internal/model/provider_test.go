package model

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func float(v float64) *float64 { return &v }

func validArtifacts() Artifacts {
	return Artifacts{
		Threshold:    float(0.5),
		Features:     []string{"int_rate", "rent_indicator"},
		RentRatio:    float(0.25),
		GammaArgs:    []float64{2.0, 0.0, 1.0},
		IntRateMean:  float(11.5),
		Coefficients: map[string]float64{"int_rate": -0.2, "rent_indicator": -0.5},
		Intercept:    float(2.0),
		FeatureMeans: map[string]float64{"int_rate": 11.5, "rent_indicator": 0.25},
	}
}

func TestLoad(t *testing.T) {
	af := validArtifacts()
	data, err := json.Marshal(af)
	if err != nil {
		t.Fatalf("marshal artifacts: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model_artifacts.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Threshold() != 0.5 {
		t.Errorf("Threshold = %v, want 0.5", p.Threshold())
	}
	if got := p.Features(); len(got) != 2 || got[0] != "int_rate" {
		t.Errorf("Features = %v, want [int_rate rent_indicator]", got)
	}
	if p.RentRatio() != 0.25 || p.IntRateMean() != 11.5 {
		t.Errorf("reference params wrong: rentRatio=%v intRateMean=%v", p.RentRatio(), p.IntRateMean())
	}
	if g := p.GammaArgs(); g.Shape != 2.0 || g.Loc != 0.0 || g.Scale != 1.0 {
		t.Errorf("GammaArgs = %+v", g)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing artifacts file")
	}
}

func TestFromArtifacts_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Artifacts)
		field  string
	}{
		{"threshold", func(a *Artifacts) { a.Threshold = nil }, "threshold"},
		{"threshold range", func(a *Artifacts) { a.Threshold = float(1.5) }, "threshold"},
		{"features", func(a *Artifacts) { a.Features = nil }, "features"},
		{"rent ratio", func(a *Artifacts) { a.RentRatio = nil }, "rent_ratio"},
		{"gamma args", func(a *Artifacts) { a.GammaArgs = []float64{1.0} }, "gamma_args"},
		{"gamma shape", func(a *Artifacts) { a.GammaArgs = []float64{-1, 0, 1} }, "gamma_args"},
		{"int rate mean", func(a *Artifacts) { a.IntRateMean = nil }, "int_rate_mean"},
		{"intercept", func(a *Artifacts) { a.Intercept = nil }, "intercept"},
		{"coefficient", func(a *Artifacts) { delete(a.Coefficients, "int_rate") }, "coefficients"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			af := validArtifacts()
			tc.mutate(&af)

			_, err := FromArtifacts(af)
			if err == nil {
				t.Fatal("expected InitError, got nil")
			}
			ie, ok := err.(*InitError)
			if !ok {
				t.Fatalf("expected *InitError, got %T: %v", err, err)
			}
			if ie.Field != tc.field {
				t.Errorf("InitError field = %q, want %q", ie.Field, tc.field)
			}
		})
	}
}

func TestPredictProba(t *testing.T) {
	p, err := FromArtifacts(validArtifacts())
	if err != nil {
		t.Fatalf("FromArtifacts: %v", err)
	}

	// z = 2.0 - 0.2*10 - 0.5*0 = 0 → probability exactly 0.5
	probs := p.PredictProba([][]float64{{10.0, 0.0}})
	if math.Abs(probs[0]-0.5) > 1e-12 {
		t.Errorf("probability = %v, want 0.5", probs[0])
	}

	// Higher interest rate lowers the probability with a negative coefficient.
	probs = p.PredictProba([][]float64{{10.0, 0.0}, {20.0, 0.0}})
	if probs[1] >= probs[0] {
		t.Errorf("expected probability to fall with int_rate: %v then %v", probs[0], probs[1])
	}
}

func TestLinearExplainer(t *testing.T) {
	p, err := FromArtifacts(validArtifacts())
	if err != nil {
		t.Fatalf("FromArtifacts: %v", err)
	}

	// Contributions are coef * (x - mean), exact for the logistic model.
	attr := p.Explainer().Attributions([][]float64{{13.5, 1.0}})
	if len(attr) != 1 || len(attr[0]) != 2 {
		t.Fatalf("unexpected attribution shape: %v", attr)
	}
	if math.Abs(attr[0][0]-(-0.2*2.0)) > 1e-12 {
		t.Errorf("int_rate contribution = %v, want -0.4", attr[0][0])
	}
	if math.Abs(attr[0][1]-(-0.5*0.75)) > 1e-12 {
		t.Errorf("rent_indicator contribution = %v, want -0.375", attr[0][1])
	}

	// A record at the training means contributes nothing.
	attr = p.Explainer().Attributions([][]float64{{11.5, 0.25}})
	if attr[0][0] != 0 || attr[0][1] != 0 {
		t.Errorf("expected zero contributions at the means, got %v", attr[0])
	}
}
