// Package fairness cross-tabulates predictions by protected-attribute
// group and computes absolute group metrics plus disparity ratios against
// a configured reference group per attribute. Direction of the contract:
// absolute metrics are rounded to 2 decimals, disparities are unrounded,
// a statistically insignificant disparity is masked to null, and an
// undefined cell is always an explicit null.
package fairness

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/report"
)

// Observation is the typed scorer-to-fairness interface: predicted label,
// ground-truth label, and the record's protected-attribute values keyed by
// attribute name. A record with an empty value for an attribute is left
// out of that attribute's cross-tab.
type Observation struct {
	Score      int
	LabelValue int
	Attributes map[string]string
}

// absoluteMetrics is the closed set of per-group metrics, in output order.
var absoluteMetrics = []string{
	"tpr", "tnr", "for", "fdr", "fpr", "fnr", "npv", "precision",
	"ppr", "pprev", "prev",
}

// disparityMetrics lists the metrics that get a ratio against the
// reference group, in output order. Prevalence describes the ground truth,
// not the classifier, so it carries no disparity.
var disparityMetrics = []string{
	"ppr", "pprev", "precision", "fdr", "for", "fpr", "fnr",
	"tpr", "tnr", "npv",
}

// Engine computes fairness tables with a fixed reference-group map and
// significance level.
type Engine struct {
	refGroups map[string]string
	alpha     float64
}

// New builds an engine. alpha <= 0 falls back to the conventional 0.05.
func New(refGroups map[string]string, alpha float64) *Engine {
	if alpha <= 0 {
		alpha = 0.05
	}
	return &Engine{refGroups: refGroups, alpha: alpha}
}

// proportion is a metric expressed as successes over trials, the form the
// significance test needs.
type proportion struct {
	num, den int
}

func (p proportion) value() report.Cell {
	if p.den == 0 {
		return report.Null()
	}
	return report.Number(float64(p.num) / float64(p.den))
}

// groupStats holds the confusion counts for one (attribute, value) group.
type groupStats struct {
	attribute string
	value     string
	tp, tn    int
	fp, fn    int
}

func (g *groupStats) size() int              { return g.tp + g.tn + g.fp + g.fn }
func (g *groupStats) predictedPositive() int { return g.tp + g.fp }
func (g *groupStats) predictedNegative() int { return g.tn + g.fn }
func (g *groupStats) labeledPositive() int   { return g.tp + g.fn }
func (g *groupStats) labeledNegative() int   { return g.tn + g.fp }

// metric returns the named metric as a proportion. totalPositive is the
// count of predicted positives across every group of the attribute, the
// denominator of ppr.
func (g *groupStats) metric(name string, totalPositive int) proportion {
	switch name {
	case "tpr":
		return proportion{g.tp, g.labeledPositive()}
	case "tnr":
		return proportion{g.tn, g.labeledNegative()}
	case "for":
		return proportion{g.fn, g.predictedNegative()}
	case "fdr":
		return proportion{g.fp, g.predictedPositive()}
	case "fpr":
		return proportion{g.fp, g.labeledNegative()}
	case "fnr":
		return proportion{g.fn, g.labeledPositive()}
	case "npv":
		return proportion{g.tn, g.predictedNegative()}
	case "precision":
		return proportion{g.tp, g.predictedPositive()}
	case "ppr":
		return proportion{g.predictedPositive(), totalPositive}
	case "pprev":
		return proportion{g.predictedPositive(), g.size()}
	case "prev":
		return proportion{g.labeledPositive(), g.size()}
	default:
		return proportion{}
	}
}

// Compute builds both fairness tables from the observations. Rows are
// ordered by attribute name, then attribute value.
func (e *Engine) Compute(obs []Observation) *report.Bias {
	groups := crosstab(obs)

	// Predicted-positive totals per attribute, for ppr.
	totals := make(map[string]int)
	for _, g := range groups {
		totals[g.attribute] += g.predictedPositive()
	}

	bias := &report.Bias{
		AbsoluteMetrics:  make([]report.CrossTabRow, 0, len(groups)),
		DisparityMetrics: make([]report.CrossTabRow, 0, len(groups)),
	}
	for _, g := range groups {
		ref := findGroup(groups, g.attribute, e.refGroups[g.attribute])
		bias.AbsoluteMetrics = append(bias.AbsoluteMetrics, e.absoluteRow(g, totals[g.attribute]))
		bias.DisparityMetrics = append(bias.DisparityMetrics, e.disparityRow(g, ref, totals[g.attribute]))
	}
	return bias
}

// crosstab aggregates confusion counts per (attribute, value) pair, in
// deterministic order.
func crosstab(obs []Observation) []*groupStats {
	index := make(map[[2]string]*groupStats)
	for _, o := range obs {
		for attr, value := range o.Attributes {
			if value == "" {
				continue
			}
			key := [2]string{attr, value}
			g, ok := index[key]
			if !ok {
				g = &groupStats{attribute: attr, value: value}
				index[key] = g
			}
			switch {
			case o.LabelValue == 1 && o.Score == 1:
				g.tp++
			case o.LabelValue == 0 && o.Score == 0:
				g.tn++
			case o.LabelValue == 0 && o.Score == 1:
				g.fp++
			default:
				g.fn++
			}
		}
	}

	groups := make([]*groupStats, 0, len(index))
	for _, g := range index {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].attribute != groups[j].attribute {
			return groups[i].attribute < groups[j].attribute
		}
		return groups[i].value < groups[j].value
	})
	return groups
}

func findGroup(groups []*groupStats, attribute, value string) *groupStats {
	if value == "" {
		return nil
	}
	for _, g := range groups {
		if g.attribute == attribute && g.value == value {
			return g
		}
	}
	return nil
}

func (e *Engine) absoluteRow(g *groupStats, totalPositive int) report.CrossTabRow {
	row := report.CrossTabRow{
		AttributeName:  g.attribute,
		AttributeValue: g.value,
		Metrics:        make([]report.NamedCell, 0, len(absoluteMetrics)),
	}
	for _, name := range absoluteMetrics {
		row.Metrics = append(row.Metrics, report.NamedCell{
			Name: name,
			Cell: round2(g.metric(name, totalPositive).value()),
		})
	}
	return row
}

// disparityRow computes the per-metric ratio of the group's value to the
// reference group's value. The reference group reports 1.0 for every
// defined metric; other groups report unrounded ratios, masked to null
// when the underlying two-proportion difference is not significant at the
// engine's alpha.
func (e *Engine) disparityRow(g, ref *groupStats, totalPositive int) report.CrossTabRow {
	row := report.CrossTabRow{
		AttributeName:  g.attribute,
		AttributeValue: g.value,
		Metrics:        make([]report.NamedCell, 0, len(disparityMetrics)),
	}
	for _, name := range disparityMetrics {
		row.Metrics = append(row.Metrics, report.NamedCell{
			Name: name + "_disparity",
			Cell: e.disparityCell(name, g, ref, totalPositive),
		})
	}
	return row
}

func (e *Engine) disparityCell(metric string, g, ref *groupStats, totalPositive int) report.Cell {
	if ref == nil {
		return report.Null()
	}

	own := g.metric(metric, totalPositive)
	base := ref.metric(metric, totalPositive)
	ownCell, baseCell := own.value(), base.value()
	if !ownCell.Valid || !baseCell.Valid {
		return report.Null()
	}

	if g == ref {
		return report.Number(1.0)
	}
	if baseCell.Value == 0 {
		return report.Null()
	}
	if twoProportionPValue(own, base) >= e.alpha {
		return report.Null()
	}
	return report.Number(ownCell.Value / baseCell.Value)
}

// twoProportionPValue is the two-sided pooled z-test for a difference in
// proportions. Degenerate pools (all successes or all failures) carry no
// evidence of a difference and return 1.
func twoProportionPValue(a, b proportion) float64 {
	if a.den == 0 || b.den == 0 {
		return 1
	}
	p1 := float64(a.num) / float64(a.den)
	p2 := float64(b.num) / float64(b.den)
	pooled := float64(a.num+b.num) / float64(a.den+b.den)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(a.den) + 1/float64(b.den)))
	if se == 0 {
		return 1
	}

	z := math.Abs(p1-p2) / se
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return 2 * normal.Survival(z)
}

func round2(c report.Cell) report.Cell {
	if !c.Valid {
		return c
	}
	return report.Number(math.Round(c.Value*100) / 100)
}
