package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation methods and t-test alternatives accepted by the API.
var (
	CorrelationMethods = []string{"kendall", "pearson", "spearman"}
	TTestAlternatives  = []string{"greater", "less", "two.sided"}
)

// CorrelationResult holds a correlation estimate and its significance test.
type CorrelationResult struct {
	Method    string
	Estimate  float64
	Statistic float64
	PValue    float64
	N         int
}

// Correlation computes the correlation between x and y using the named method
// (pearson, spearman or kendall) and a two-sided significance test.
func Correlation(x, y []float64, method string) (*CorrelationResult, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("x and y must have the same length, got %d and %d", n, len(y))
	}
	if n < 3 {
		return nil, fmt.Errorf("at least 3 observations are required, got %d", n)
	}

	switch method {
	case "pearson":
		return pearsonTest(x, y, method)
	case "spearman":
		// Spearman's rho is Pearson's r over the rank-transformed samples.
		return pearsonTest(ranks(x), ranks(y), method)
	case "kendall":
		tau := stat.Kendall(x, y, nil)
		// Normal approximation to the null distribution of tau.
		nf := float64(n)
		z := 3 * tau * math.Sqrt(nf*(nf-1)) / math.Sqrt(2*(2*nf+5))
		p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
		return &CorrelationResult{
			Method:    method,
			Estimate:  tau,
			Statistic: z,
			PValue:    p,
			N:         n,
		}, nil
	default:
		return nil, fmt.Errorf("unknown method %q, valid methods: %v", method, CorrelationMethods)
	}
}

func pearsonTest(x, y []float64, method string) (*CorrelationResult, error) {
	n := len(x)
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return nil, errors.New("correlation is undefined: a sample has zero variance")
	}

	df := float64(n - 2)
	var tStat, p float64
	if 1-r*r == 0 {
		// Perfectly correlated samples.
		tStat = math.Copysign(math.MaxFloat64, r)
		p = 0
	} else {
		tStat = r * math.Sqrt(df/(1-r*r))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		p = 2 * (1 - dist.CDF(math.Abs(tStat)))
	}

	return &CorrelationResult{
		Method:    method,
		Estimate:  r,
		Statistic: tStat,
		PValue:    p,
		N:         n,
	}, nil
}

// ranks returns average ranks, with ties sharing their mean rank.
func ranks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j+2) / 2 // ranks are 1-based
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// TTestResult holds the outcome of a one-sample, paired or Welch two-sample
// t-test.
type TTestResult struct {
	Method      string
	Statistic   float64
	DF          float64
	PValue      float64
	Estimate    float64
	Alternative string
	N           int
}

// TTest runs a t-test of x (optionally against y) with null value mu. With y
// nil it is a one-sample test; with paired set, a paired test on the
// differences; otherwise Welch's two-sample test with unequal variances.
func TTest(x, y []float64, mu float64, paired bool, alternative string) (*TTestResult, error) {
	if !validAlternative(alternative) {
		return nil, fmt.Errorf("unknown alternative %q, valid alternatives: %v", alternative, TTestAlternatives)
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("at least 2 observations are required, got %d", len(x))
	}

	if y == nil {
		return oneSampleTTest(x, mu, alternative, "One Sample t-test", len(x))
	}

	if paired {
		if len(x) != len(y) {
			return nil, fmt.Errorf("paired test requires equal lengths, got %d and %d", len(x), len(y))
		}
		diffs := make([]float64, len(x))
		for i := range x {
			diffs[i] = x[i] - y[i]
		}
		return oneSampleTTest(diffs, mu, alternative, "Paired t-test", len(x))
	}

	if len(y) < 2 {
		return nil, fmt.Errorf("at least 2 observations are required in y, got %d", len(y))
	}

	m1, m2 := stat.Mean(x, nil), stat.Mean(y, nil)
	v1, v2 := stat.Variance(x, nil), stat.Variance(y, nil)
	n1, n2 := float64(len(x)), float64(len(y))

	se2 := v1/n1 + v2/n2
	if se2 == 0 {
		return nil, errors.New("data are essentially constant")
	}
	tStat := (m1 - m2 - mu) / math.Sqrt(se2)
	// Welch-Satterthwaite degrees of freedom.
	df := se2 * se2 / ((v1*v1)/(n1*n1*(n1-1)) + (v2*v2)/(n2*n2*(n2-1)))

	return &TTestResult{
		Method:      "Welch Two Sample t-test",
		Statistic:   tStat,
		DF:          df,
		PValue:      tTailProbability(tStat, df, alternative),
		Estimate:    m1 - m2,
		Alternative: alternative,
		N:           len(x) + len(y),
	}, nil
}

func oneSampleTTest(xs []float64, mu float64, alternative, method string, n int) (*TTestResult, error) {
	mean := stat.Mean(xs, nil)
	sd := stat.StdDev(xs, nil)
	if sd == 0 {
		return nil, errors.New("data are essentially constant")
	}
	df := float64(len(xs) - 1)
	tStat := (mean - mu) / (sd / math.Sqrt(float64(len(xs))))

	return &TTestResult{
		Method:      method,
		Statistic:   tStat,
		DF:          df,
		PValue:      tTailProbability(tStat, df, alternative),
		Estimate:    mean,
		Alternative: alternative,
		N:           n,
	}, nil
}

func tTailProbability(tStat, df float64, alternative string) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	switch alternative {
	case "less":
		return dist.CDF(tStat)
	case "greater":
		return 1 - dist.CDF(tStat)
	default:
		return 2 * (1 - dist.CDF(math.Abs(tStat)))
	}
}

func validAlternative(alternative string) bool {
	for _, a := range TTestAlternatives {
		if a == alternative {
			return true
		}
	}
	return false
}
