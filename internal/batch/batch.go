// Package batch defines the scored-cohort data model: one Record per loan
// application, ordered into a Batch sharing a single feature schema.
package batch

// Label values for the binary ground truth. Class 0 is "Charged Off",
// class 1 is "Fully Paid"; the negative class sorts first everywhere.
const (
	LabelChargedOff = 0
	LabelFullyPaid  = 1

	LabelChargedOffName = "Charged Off"
	LabelFullyPaidName  = "Fully Paid"
)

// Record is one scored entity. LoanStatus is nil when the batch carries no
// ground truth for the record; Probability and Prediction are populated by
// the scorer, RentIndicator by the feature deriver.
type Record struct {
	ID            string
	Features      map[string]float64
	HomeOwnership string
	GroupValue    string // protected-attribute label, e.g. "Under Forty"
	LoanStatus    *int

	RentIndicator int
	Probability   float64
	Prediction    int
}

// Batch is an ordered collection of records sharing one schema.
type Batch struct {
	Records []Record
}

// Size returns the number of records.
func (b *Batch) Size() int { return len(b.Records) }

// Validated reports whether every record carries ground truth. The gate
// controls whether performance and fairness metrics are computed at all.
func (b *Batch) Validated() bool {
	if len(b.Records) == 0 {
		return false
	}
	for i := range b.Records {
		if b.Records[i].LoanStatus == nil {
			return false
		}
	}
	return true
}
