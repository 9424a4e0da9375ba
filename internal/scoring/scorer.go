// Package scoring applies the model provider to a batch: it builds the
// feature matrix in the provider's exact column order, computes class-1
// probabilities, and thresholds them into predictions.
package scoring

import (
	"fmt"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/batch"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/model"
)

// MissingFeatureError reports a batch that lacks a column the model's
// feature order requires. It is fatal for the batch: no partial result is
// produced.
type MissingFeatureError struct {
	Feature  string
	RecordID string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("batch record %q missing required feature %q", e.RecordID, e.Feature)
}

// Scored is the projection of one record after scoring.
type Scored struct {
	ID          string  `json:"id"`
	Probability float64 `json:"probability"`
	Prediction  int     `json:"prediction"`
}

// Scorer scores batches against one read-only model provider.
type Scorer struct {
	provider *model.Provider
}

func New(provider *model.Provider) *Scorer {
	return &Scorer{provider: provider}
}

// FeatureMatrix selects the provider's features from every record, in the
// provider's exact order. Extra features in the batch are ignored; a
// missing one is a *MissingFeatureError.
func (s *Scorer) FeatureMatrix(b *batch.Batch) ([][]float64, error) {
	features := s.provider.Features()
	matrix := make([][]float64, len(b.Records))
	for i := range b.Records {
		rec := &b.Records[i]
		row := make([]float64, len(features))
		for j, name := range features {
			v, ok := rec.Features[name]
			if !ok {
				return nil, &MissingFeatureError{Feature: name, RecordID: rec.ID}
			}
			row[j] = v
		}
		matrix[i] = row
	}
	return matrix, nil
}

// Apply scores the batch in place: every record gets its probability and
// thresholded prediction. Returns the same batch for chaining. A boundary
// probability exactly at the threshold predicts 0.
func (s *Scorer) Apply(b *batch.Batch) (*batch.Batch, error) {
	matrix, err := s.FeatureMatrix(b)
	if err != nil {
		return nil, err
	}

	probs := s.provider.PredictProba(matrix)
	threshold := s.provider.Threshold()
	for i := range b.Records {
		b.Records[i].Probability = probs[i]
		if probs[i] > threshold {
			b.Records[i].Prediction = 1
		} else {
			b.Records[i].Prediction = 0
		}
	}
	return b, nil
}

// Score scores the batch and projects the per-record output, preserving
// input order and count exactly.
func (s *Scorer) Score(b *batch.Batch) ([]Scored, error) {
	if _, err := s.Apply(b); err != nil {
		return nil, err
	}

	out := make([]Scored, len(b.Records))
	for i := range b.Records {
		rec := &b.Records[i]
		out[i] = Scored{ID: rec.ID, Probability: rec.Probability, Prediction: rec.Prediction}
	}
	return out, nil
}
