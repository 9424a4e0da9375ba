// Package dashboard pushes assembled metrics reports to the monitoring
// dashboard's ingest endpoint over HTTP.
package dashboard

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/report"
)

// Publisher posts metrics reports to a dashboard endpoint.
type Publisher struct {
	url  string
	rest *resty.Client
}

// New builds a publisher for the given ingest URL.
func New(url string, timeout time.Duration) *Publisher {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second)
	}
	return &Publisher{url: url, rest: r}
}

// Push sends one report, tagged with the batch id. Non-2xx responses are
// errors; the report itself is never mutated or retried here.
func (p *Publisher) Push(batchID string, rep *report.MetricsReport) error {
	payload := struct {
		BatchID string                `json:"batch_id"`
		Report  *report.MetricsReport `json:"report"`
	}{BatchID: batchID, Report: rep}

	resp, err := p.rest.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("push report: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("dashboard rejected report: %s", resp.Status())
	}

	log.Info().Str("batch_id", batchID).Str("status", resp.Status()).
		Msg("report pushed to dashboard")
	return nil
}
