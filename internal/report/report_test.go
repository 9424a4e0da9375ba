package report

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestCell_NullSemantics(t *testing.T) {
	cases := []struct {
		name string
		cell Cell
		want string
	}{
		{"number", Number(0.25), "0.25"},
		{"zero is not null", Number(0), "0"},
		{"explicit null", Null(), "null"},
		{"nan becomes null", Number(math.NaN()), "null"},
		{"inf becomes null", Cell{Valid: true, Value: math.Inf(1)}, "null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.cell)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Errorf("marshal = %s, want %s", data, tc.want)
			}
		})
	}
}

func TestCell_RoundTrip(t *testing.T) {
	var c Cell
	if err := json.Unmarshal([]byte("null"), &c); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if c.Valid {
		t.Error("null must round-trip to an invalid cell")
	}

	if err := json.Unmarshal([]byte("0.75"), &c); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if !c.Valid || c.Value != 0.75 {
		t.Errorf("number round-trip = %+v", c)
	}
}

func TestConfusionRow_Order(t *testing.T) {
	row := ConfusionRow{
		Labels: []string{"Charged Off", "Fully Paid"},
		Counts: []int{7, 3},
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Charged Off":7,"Fully Paid":3}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestCrossTabRow_NullCellsKept(t *testing.T) {
	row := CrossTabRow{
		AttributeName:  "forty_plus_indicator",
		AttributeValue: "Forty Plus",
		Metrics: []NamedCell{
			{Name: "tpr", Cell: Number(0.5)},
			{Name: "precision", Cell: Null()},
		},
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"precision":null`) {
		t.Errorf("null cell must serialize as explicit null, got %s", got)
	}
	if !strings.HasPrefix(got, `{"attribute_name":"forty_plus_indicator","attribute_value":"Forty Plus"`) {
		t.Errorf("attribute keys must lead the row, got %s", got)
	}
}

func TestAttribution_OrderedObject(t *testing.T) {
	a := Attribution{
		{Feature: "zeta", Value: Number(0.1)},
		{Feature: "alpha", Value: Number(0.9)},
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Insertion order wins over lexical order.
	want := `{"zeta":0.1,"alpha":0.9}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestMetricsReport_SectionPresence(t *testing.T) {
	rep := MetricsReport{
		Drift: &Drift{
			RentersBinomPValue:  Number(0.3),
			OutputLogProbPValue: Null(),
			IntRateTTestPValue:  Number(0.8),
		},
		Attribution: Attribution{{Feature: "int_rate", Value: Number(0.4)}},
	}
	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)

	if strings.Contains(got, `"performance"`) || strings.Contains(got, `"bias"`) {
		t.Errorf("absent sections must omit their keys, got %s", got)
	}
	if !strings.Contains(got, `"drift"`) || !strings.Contains(got, `"attribution"`) {
		t.Errorf("drift and attribution must always be present, got %s", got)
	}
	if !strings.Contains(got, `"output_logprob_pvalue":null`) {
		t.Errorf("null p-value inside a present section must stay explicit, got %s", got)
	}
}
