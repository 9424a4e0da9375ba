// Package model holds the model artifacts loaded once at process start:
// the fitted classifier, its decision threshold, the ordered feature list,
// the explainer, and the drift reference parameters captured at training
// time. A Provider is immutable after Load and safe for unlimited
// concurrent readers.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Classifier produces class-1 probabilities for a feature matrix whose
// columns follow the provider's feature order.
type Classifier interface {
	PredictProba(matrix [][]float64) []float64
}

// Explainer produces per-record, per-feature attribution vectors for a
// feature matrix whose columns follow the provider's feature order.
type Explainer interface {
	Attributions(matrix [][]float64) [][]float64
}

// GammaArgs are the fitted parameters of the reference distribution for
// negative log-probabilities, in (shape, loc, scale) order.
type GammaArgs struct {
	Shape float64
	Loc   float64
	Scale float64
}

// Provider exposes the loaded model artifacts. All accessors return data
// fixed at load time.
type Provider struct {
	classifier  Classifier
	explainer   Explainer
	threshold   float64
	features    []string
	rentRatio   float64
	gammaArgs   GammaArgs
	intRateMean float64
}

// InitError reports a model-artifacts document that cannot back a
// Provider. It is fatal: no scoring or metrics computation proceeds.
type InitError struct {
	Field  string
	Reason string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("model artifacts: field %q: %s", e.Field, e.Reason)
}

// Artifacts is the on-disk JSON layout of the artifacts document.
type Artifacts struct {
	Threshold    *float64           `json:"threshold"`
	Features     []string           `json:"features"`
	RentRatio    *float64           `json:"rent_ratio"`
	GammaArgs    []float64          `json:"gamma_args"`
	IntRateMean  *float64           `json:"int_rate_mean"`
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    *float64           `json:"intercept"`
	FeatureMeans map[string]float64 `json:"feature_means"`
}

// Load reads the artifacts document at path and builds an immutable
// Provider. Any missing or inconsistent field yields an *InitError.
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifacts %s: %w", path, err)
	}

	var af Artifacts
	if err := json.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parse model artifacts %s: %w", path, err)
	}

	p, err := FromArtifacts(af)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", path).
		Int("features", len(p.features)).
		Float64("threshold", p.threshold).
		Msg("model artifacts loaded")

	return p, nil
}

// FromArtifacts validates a decoded artifacts document and builds the
// Provider. Exposed separately so tests can construct providers without
// touching the filesystem.
func FromArtifacts(af Artifacts) (*Provider, error) {
	switch {
	case af.Threshold == nil:
		return nil, &InitError{Field: "threshold", Reason: "missing"}
	case *af.Threshold < 0 || *af.Threshold > 1:
		return nil, &InitError{Field: "threshold", Reason: "must be in [0,1]"}
	case len(af.Features) == 0:
		return nil, &InitError{Field: "features", Reason: "missing or empty"}
	case af.RentRatio == nil:
		return nil, &InitError{Field: "rent_ratio", Reason: "missing"}
	case *af.RentRatio < 0 || *af.RentRatio > 1:
		return nil, &InitError{Field: "rent_ratio", Reason: "must be in [0,1]"}
	case len(af.GammaArgs) != 3:
		return nil, &InitError{Field: "gamma_args", Reason: "want exactly 3 values (shape, loc, scale)"}
	case af.GammaArgs[0] <= 0 || af.GammaArgs[2] <= 0:
		return nil, &InitError{Field: "gamma_args", Reason: "shape and scale must be positive"}
	case af.IntRateMean == nil:
		return nil, &InitError{Field: "int_rate_mean", Reason: "missing"}
	case af.Intercept == nil:
		return nil, &InitError{Field: "intercept", Reason: "missing"}
	}

	coefs := make([]float64, len(af.Features))
	means := make([]float64, len(af.Features))
	for i, name := range af.Features {
		c, ok := af.Coefficients[name]
		if !ok {
			return nil, &InitError{Field: "coefficients", Reason: fmt.Sprintf("no coefficient for feature %q", name)}
		}
		coefs[i] = c
		// A missing mean defaults to zero, which degrades the explainer
		// baseline but not the probabilities.
		means[i] = af.FeatureMeans[name]
	}

	features := make([]string, len(af.Features))
	copy(features, af.Features)

	cls := &logisticClassifier{coefficients: coefs, intercept: *af.Intercept}

	return &Provider{
		classifier:  cls,
		explainer:   &linearExplainer{coefficients: coefs, means: means},
		threshold:   *af.Threshold,
		features:    features,
		rentRatio:   *af.RentRatio,
		gammaArgs:   GammaArgs{Shape: af.GammaArgs[0], Loc: af.GammaArgs[1], Scale: af.GammaArgs[2]},
		intRateMean: *af.IntRateMean,
	}, nil
}

// PredictProba returns the class-1 probability for every row of the
// feature matrix.
func (p *Provider) PredictProba(matrix [][]float64) []float64 {
	return p.classifier.PredictProba(matrix)
}

func (p *Provider) Threshold() float64 { return p.threshold }

// Features returns the ordered feature list. The caller must not mutate
// the returned slice.
func (p *Provider) Features() []string { return p.features }

func (p *Provider) Explainer() Explainer { return p.explainer }

func (p *Provider) RentRatio() float64 { return p.rentRatio }

func (p *Provider) GammaArgs() GammaArgs { return p.gammaArgs }

func (p *Provider) IntRateMean() float64 { return p.intRateMean }
