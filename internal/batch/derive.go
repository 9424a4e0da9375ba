package batch

// RentIndicatorFeature is the derived-column name the drift engine and the
// model feature list refer to.
const RentIndicatorFeature = "rent_indicator"

// rentCategory is the housing-status value that flags a renter.
const rentCategory = "RENT"

// DeriveFeatures returns a copy of the batch with the renter indicator
// derived from the categorical housing-status field and injected into each
// record's feature map. The input batch is left untouched.
func DeriveFeatures(b *Batch) *Batch {
	out := &Batch{Records: make([]Record, len(b.Records))}
	for i, rec := range b.Records {
		features := make(map[string]float64, len(rec.Features)+1)
		for k, v := range rec.Features {
			features[k] = v
		}

		indicator := 0
		if rec.HomeOwnership == rentCategory {
			indicator = 1
		}
		features[RentIndicatorFeature] = float64(indicator)

		rec.Features = features
		rec.RentIndicator = indicator
		out.Records[i] = rec
	}
	return out
}
