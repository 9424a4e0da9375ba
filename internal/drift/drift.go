// Package drift runs three independent statistical tests comparing a
// batch against reference-distribution parameters captured at training
// time: an exact two-sided binomial test on the renter proportion, a
// one-sample t-test on the interest rate, and a Kolmogorov-Smirnov
// goodness-of-fit test of the model's negative log-probabilities against
// a fitted gamma distribution. No correction for multiple comparisons is
// applied; the three p-values are reported as-is. Degenerate inputs yield
// null p-values, never a failure.
package drift

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/batch"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/model"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/report"
)

// IntRateFeature is the batch column the interest-rate test reads.
const IntRateFeature = "int_rate"

// Compute runs the three drift tests over a scored batch. Ground truth is
// not required; drift is computed for every batch.
func Compute(b *batch.Batch, provider *model.Provider) *report.Drift {
	n := b.Size()

	renters := 0
	intRates := make([]float64, 0, n)
	negLogProbs := make([]float64, 0, n)
	for i := range b.Records {
		rec := &b.Records[i]
		renters += rec.RentIndicator
		if v, ok := rec.Features[IntRateFeature]; ok {
			intRates = append(intRates, v)
		}
		negLogProbs = append(negLogProbs, -math.Log(rec.Probability))
	}

	return &report.Drift{
		RentersBinomPValue:  report.Number(binomTest(renters, n, provider.RentRatio())),
		OutputLogProbPValue: report.Number(ksGammaTest(negLogProbs, provider.GammaArgs())),
		IntRateTTestPValue:  report.Number(tTest(intRates, provider.IntRateMean())),
	}
}

// binomTest is the exact two-sided binomial test: the sum of the
// probabilities of all outcomes no more likely than the observed one.
func binomTest(k, n int, p float64) float64 {
	if n == 0 || p < 0 || p > 1 {
		return math.NaN()
	}
	if p == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	if p == 1 {
		if k == n {
			return 1
		}
		return 0
	}

	dist := distuv.Binomial{N: float64(n), P: p}
	observed := dist.Prob(float64(k))

	// Tolerance absorbs floating-point noise when comparing pmf values.
	const relErr = 1 + 1e-7
	cutoff := observed * relErr

	pval := 0.0
	for i := 0; i <= n; i++ {
		if prob := dist.Prob(float64(i)); prob <= cutoff {
			pval += prob
		}
	}
	return math.Min(pval, 1)
}

// tTest is the two-sided one-sample Student's t-test of the sample mean
// against popMean. Fewer than two observations, or zero variance at the
// reference mean, yield NaN.
func tTest(sample []float64, popMean float64) float64 {
	n := len(sample)
	if n < 2 {
		return math.NaN()
	}

	mean := stat.Mean(sample, nil)
	sd := stat.StdDev(sample, nil)
	if sd == 0 {
		if mean == popMean {
			return math.NaN()
		}
		return 0
	}

	t := (mean - popMean) / (sd / math.Sqrt(float64(n)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	return 2 * dist.CDF(-math.Abs(t))
}

// ksGammaTest is the one-sample Kolmogorov-Smirnov goodness-of-fit test
// against a gamma distribution in (shape, loc, scale) parameterization.
// The p-value uses the asymptotic Kolmogorov distribution with Stephens'
// small-sample correction.
func ksGammaTest(sample []float64, args model.GammaArgs) float64 {
	n := len(sample)
	if n == 0 {
		return math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	gamma := distuv.Gamma{Alpha: args.Shape, Beta: 1}

	d := 0.0
	for i, x := range sorted {
		z := (x - args.Loc) / args.Scale
		var cdf float64
		switch {
		case z <= 0:
			cdf = 0
		case math.IsInf(z, 1):
			cdf = 1
		default:
			cdf = gamma.CDF(z)
		}
		if above := float64(i+1)/float64(n) - cdf; above > d {
			d = above
		}
		if below := cdf - float64(i)/float64(n); below > d {
			d = below
		}
	}

	sqrtN := math.Sqrt(float64(n))
	return kolmogorovSurvival((sqrtN + 0.12 + 0.11/sqrtN) * d)
}

// kolmogorovSurvival evaluates the Kolmogorov distribution's survival
// function via its alternating series.
func kolmogorovSurvival(t float64) float64 {
	if t <= 0 {
		return 1
	}

	sum := 0.0
	for j := 1; j <= 100; j++ {
		term := math.Exp(-2 * float64(j) * float64(j) * t * t)
		if j%2 == 1 {
			sum += term
		} else {
			sum -= term
		}
		if term < 1e-16 {
			break
		}
	}

	p := 2 * sum
	return math.Min(math.Max(p, 0), 1)
}
