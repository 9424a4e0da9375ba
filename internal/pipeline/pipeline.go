// Package pipeline composes the engines into the two public entry points:
// Score and Metrics. Both are stateless across invocations; the only
// shared resource is the read-only model provider, so a pipeline is safe
// to reuse for any number of batches once built.
package pipeline

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/attribution"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/batch"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/drift"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/fairness"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/model"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/perf"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/report"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/scoring"
)

// GroupAttribute is the protected attribute the fairness engine cross-
// tabulates by.
const GroupAttribute = "forty_plus_indicator"

// Recorder receives operational metrics from the pipeline. Implementations
// must tolerate concurrent calls; a nil Recorder disables recording.
type Recorder interface {
	BatchScored(records int)
	MetricsComputed()
	BatchFailed()
	ScoreDuration(seconds float64)
	MetricsDuration(seconds float64)
}

// Options tunes the fairness engine and wires optional observability.
type Options struct {
	ReferenceGroups map[string]string
	Alpha           float64
	Metrics         Recorder
}

// Pipeline is the metrics orchestrator.
type Pipeline struct {
	provider *model.Provider
	scorer   *scoring.Scorer
	fairness *fairness.Engine
	metrics  Recorder
}

// New builds a pipeline around a loaded provider. Defaults: reference
// group "Under Forty" for the forty-plus attribute, alpha 0.05.
func New(provider *model.Provider, opts Options) *Pipeline {
	refGroups := opts.ReferenceGroups
	if len(refGroups) == 0 {
		refGroups = map[string]string{GroupAttribute: "Under Forty"}
	}
	return &Pipeline{
		provider: provider,
		scorer:   scoring.New(provider),
		fairness: fairness.New(refGroups, opts.Alpha),
		metrics:  opts.Metrics,
	}
}

// Score derives features, scores the batch, and projects the per-record
// output, one-to-one and order-preserving.
func (p *Pipeline) Score(b *batch.Batch) ([]scoring.Scored, error) {
	start := time.Now()

	derived := batch.DeriveFeatures(b)
	scored, err := p.scorer.Score(derived)
	if err != nil {
		if p.metrics != nil {
			p.metrics.BatchFailed()
		}
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.BatchScored(len(scored))
		p.metrics.ScoreDuration(time.Since(start).Seconds())
	}
	return scored, nil
}

// Metrics derives features, scores the batch internally, and assembles a
// fresh MetricsReport. Performance and bias sections appear only when
// every record carries ground truth; drift and attribution always appear.
func (p *Pipeline) Metrics(b *batch.Batch) (*report.MetricsReport, error) {
	start := time.Now()

	derived := batch.DeriveFeatures(b)
	if _, err := p.scorer.Apply(derived); err != nil {
		if p.metrics != nil {
			p.metrics.BatchFailed()
		}
		return nil, err
	}

	out := &report.MetricsReport{}

	validated := derived.Validated()
	if validated {
		out.Performance = perf.Compute(derived)
		out.Bias = p.fairness.Compute(observations(derived))
	} else {
		log.Debug().Int("records", derived.Size()).
			Msg("batch lacks ground truth, skipping performance and fairness")
	}

	out.Drift = drift.Compute(derived, p.provider)

	matrix, err := p.scorer.FeatureMatrix(derived)
	if err != nil {
		// Unreachable after a successful Apply over the same batch.
		if p.metrics != nil {
			p.metrics.BatchFailed()
		}
		return nil, err
	}
	out.Attribution = attribution.Compute(matrix, p.provider.Features(), p.provider.Explainer())

	if p.metrics != nil {
		p.metrics.MetricsComputed()
		p.metrics.MetricsDuration(time.Since(start).Seconds())
	}

	log.Info().
		Int("records", derived.Size()).
		Bool("validated", validated).
		Msg("metrics report assembled")

	return out, nil
}

// observations projects the scored batch into the typed fairness input.
func observations(b *batch.Batch) []fairness.Observation {
	obs := make([]fairness.Observation, 0, len(b.Records))
	for i := range b.Records {
		rec := &b.Records[i]
		obs = append(obs, fairness.Observation{
			Score:      rec.Prediction,
			LabelValue: *rec.LoanStatus,
			Attributes: map[string]string{GroupAttribute: rec.GroupValue},
		})
	}
	return obs
}
