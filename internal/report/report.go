// Package report defines the monitoring-report aggregate returned by the
// metrics entry point. The dashboard contract distinguishes an absent
// section (key omitted) from an undefined numeric cell inside a present
// section (explicit JSON null), so every nullable cell is typed rather
// than mapped, and every ordered structure serializes in its own order.
package report

import (
	"bytes"
	"encoding/json"
	"math"
)

// Cell is one nullable numeric value. A NaN or explicitly-null cell
// marshals as JSON null, never as zero and never by dropping the key.
type Cell struct {
	Valid bool
	Value float64
}

// Number returns a defined cell.
func Number(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{Valid: true, Value: v}
}

// Null returns an undefined cell.
func Null() Cell { return Cell{} }

func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid || math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Cell{}
		return nil
	}
	if err := json.Unmarshal(data, &c.Value); err != nil {
		return err
	}
	c.Valid = true
	return nil
}

// ROCPoint is one point on the receiver operating characteristic curve.
// Cells carry the degenerate single-class case, where one of the rates is
// undefined, through to the dashboard as null.
type ROCPoint struct {
	FPR Cell `json:"fpr"`
	TPR Cell `json:"tpr"`
}

// ConfusionRow is one row of the confusion matrix: counts keyed by
// predicted-class label, serialized in the fixed class order (negative
// class "Charged Off" first).
type ConfusionRow struct {
	Labels []string
	Counts []int
}

func (r ConfusionRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range r.Labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.Counts[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Performance carries the classification metrics computed on a validated
// batch.
type Performance struct {
	F1              float64        `json:"f1_score"`
	ConfusionMatrix []ConfusionRow `json:"confusion_matrix"`
	AUC             Cell           `json:"auc"`
	ROC             []ROCPoint     `json:"roc"`
}

// NamedCell is one metric cell inside a cross-tab row.
type NamedCell struct {
	Name string
	Cell Cell
}

// CrossTabRow is one (attribute_name, attribute_value) group with its
// metric cells in computation order.
type CrossTabRow struct {
	AttributeName  string
	AttributeValue string
	Metrics        []NamedCell
}

func (r CrossTabRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"attribute_name":`)
	name, err := json.Marshal(r.AttributeName)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	buf.WriteString(`,"attribute_value":`)
	value, err := json.Marshal(r.AttributeValue)
	if err != nil {
		return nil, err
	}
	buf.Write(value)
	for _, m := range r.Metrics {
		buf.WriteByte(',')
		key, err := json.Marshal(m.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		cell, err := m.Cell.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(cell)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Bias carries the two fairness tables.
type Bias struct {
	AbsoluteMetrics  []CrossTabRow `json:"absolute_metrics"`
	DisparityMetrics []CrossTabRow `json:"disparity_metrics"`
}

// Drift carries the three drift-test p-values. A degenerate test yields a
// null cell inside an otherwise complete section.
type Drift struct {
	RentersBinomPValue  Cell `json:"renters_binom_pvalue"`
	OutputLogProbPValue Cell `json:"output_logprob_pvalue"`
	IntRateTTestPValue  Cell `json:"int_rate_ttest_pvalue"`
}

// FeatureValue is one feature's aggregated attribution.
type FeatureValue struct {
	Feature string
	Value   Cell
}

// Attribution is the ranked feature→value mapping, ascending by value.
// The order is part of the contract, so it serializes as an ordered JSON
// object rather than a Go map.
type Attribution []FeatureValue

func (a Attribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fv := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fv.Feature)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		cell, err := fv.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(cell)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MetricsReport is the full monitoring bundle for one batch. Performance
// and Bias are present only for validated batches; Drift and Attribution
// are always present. A fresh report is built per invocation.
type MetricsReport struct {
	Performance *Performance `json:"performance,omitempty"`
	Bias        *Bias        `json:"bias,omitempty"`
	Drift       *Drift       `json:"drift"`
	Attribution Attribution  `json:"attribution"`
}
