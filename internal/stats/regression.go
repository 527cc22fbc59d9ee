package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrSingularFit is returned when a regression design matrix has no unique
// least-squares solution.
var ErrSingularFit = errors.New("singular fit")

// SimpleFit holds the results of a simple linear regression y ~ x.
type SimpleFit struct {
	Intercept      float64
	Slope          float64
	RSquared       float64
	PValue         float64
	ResidualStdErr float64
	N              int
}

// SimpleLM fits y = intercept + slope*x by ordinary least squares. The p-value
// is the two-sided t-test on the slope. At least 3 points are required so the
// inference terms are defined.
func SimpleLM(x, y []float64) (*SimpleFit, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("x and y must have the same length, got %d and %d", n, len(y))
	}
	if n < 3 {
		return nil, fmt.Errorf("at least 3 points are required, got %d", n)
	}

	meanX := stat.Mean(x, nil)
	sxx := 0.0
	for _, xi := range x {
		sxx += (xi - meanX) * (xi - meanX)
	}
	if sxx == 0 {
		return nil, fmt.Errorf("%w: x has zero variance", ErrSingularFit)
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, alpha, beta)

	rss := 0.0
	for i := range x {
		resid := y[i] - (alpha + beta*x[i])
		rss += resid * resid
	}
	df := float64(n - 2)
	sigma := math.Sqrt(rss / df)

	var pValue float64
	se := sigma / math.Sqrt(sxx)
	switch {
	case se == 0 && beta == 0:
		pValue = 1
	case se == 0:
		pValue = 0
	default:
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		pValue = 2 * (1 - t.CDF(math.Abs(beta/se)))
	}

	return &SimpleFit{
		Intercept:      alpha,
		Slope:          beta,
		RSquared:       r2,
		PValue:         pValue,
		ResidualStdErr: sigma,
		N:              n,
	}, nil
}

// ResidualSummary describes the residual distribution of a formula fit.
type ResidualSummary struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// FormulaFit holds the results of a multiple linear regression described by a
// formula such as "y ~ x1 + x2".
type FormulaFit struct {
	Formula      string
	Coefficients map[string]float64
	PValues      map[string]float64
	RSquared     float64
	AdjRSquared  float64
	Sigma        float64
	FStatistic   float64
	Residuals    ResidualSummary
	N            int
}

// FormulaLM fits a multiple regression with intercept. The formula names one
// response and one or more predictors joined by "+"; every variable must be a
// column of data with a common length.
func FormulaLM(formula string, data map[string][]float64) (*FormulaFit, error) {
	response, predictors, err := parseFormula(formula)
	if err != nil {
		return nil, err
	}

	y, ok := data[response]
	if !ok {
		return nil, fmt.Errorf("response variable %q not found in data", response)
	}
	n := len(y)
	if n == 0 {
		return nil, fmt.Errorf("response variable %q is empty", response)
	}

	p := len(predictors)
	if n < p+2 {
		return nil, fmt.Errorf("%d observations are too few to fit %d predictors", n, p)
	}

	// Design matrix with a leading intercept column.
	X := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
	}
	for j, name := range predictors {
		col, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("predictor %q not found in data", name)
		}
		if len(col) != n {
			return nil, fmt.Errorf("predictor %q has length %d, want %d", name, len(col), n)
		}
		for i := 0; i < n; i++ {
			X.Set(i, j+1, col[i])
		}
	}
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularFit, err)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), yVec)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	// Fitted values and residuals.
	var fitted mat.VecDense
	fitted.MulVec(X, &beta)
	residuals := make([]float64, n)
	rss := 0.0
	meanY := stat.Mean(y, nil)
	tss := 0.0
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - fitted.AtVec(i)
		rss += residuals[i] * residuals[i]
		tss += (y[i] - meanY) * (y[i] - meanY)
	}
	if tss == 0 {
		return nil, fmt.Errorf("%w: response has zero variance", ErrSingularFit)
	}

	dfResid := float64(n - p - 1)
	mse := rss / dfResid
	if mse == 0 {
		return nil, errors.New("essentially perfect fit: residual variance is zero")
	}
	sigma := math.Sqrt(mse)

	names := append([]string{"(Intercept)"}, predictors...)
	coefs := make(map[string]float64, len(names))
	pvals := make(map[string]float64, len(names))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dfResid}
	for j, name := range names {
		coefs[name] = beta.AtVec(j)
		se := sigma * math.Sqrt(xtxInv.At(j, j))
		if se == 0 {
			pvals[name] = 0
			continue
		}
		pvals[name] = 2 * (1 - t.CDF(math.Abs(beta.AtVec(j)/se)))
	}

	r2 := 1 - rss/tss
	adjR2 := 1 - (1-r2)*float64(n-1)/dfResid
	fStat := ((tss - rss) / float64(p)) / mse

	return &FormulaFit{
		Formula:      formula,
		Coefficients: coefs,
		PValues:      pvals,
		RSquared:     r2,
		AdjRSquared:  adjR2,
		Sigma:        sigma,
		FStatistic:   fStat,
		Residuals: ResidualSummary{
			Min:    Quantile(residuals, 0),
			Median: Quantile(residuals, 0.5),
			Max:    Quantile(residuals, 1),
		},
		N: n,
	}, nil
}

// parseFormula splits "y ~ x1 + x2" into a response and predictor names.
func parseFormula(formula string) (string, []string, error) {
	parts := strings.Split(formula, "~")
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("malformed formula %q, want \"response ~ predictor [+ predictor ...]\"", formula)
	}
	response := strings.TrimSpace(parts[0])
	if response == "" {
		return "", nil, fmt.Errorf("malformed formula %q: empty response", formula)
	}

	var predictors []string
	seen := make(map[string]bool)
	for _, term := range strings.Split(parts[1], "+") {
		term = strings.TrimSpace(term)
		if term == "" {
			return "", nil, fmt.Errorf("malformed formula %q: empty predictor term", formula)
		}
		if term == response {
			return "", nil, fmt.Errorf("malformed formula %q: response cannot also be a predictor", formula)
		}
		if seen[term] {
			continue
		}
		seen[term] = true
		predictors = append(predictors, term)
	}
	if len(predictors) == 0 {
		return "", nil, fmt.Errorf("malformed formula %q: no predictors", formula)
	}
	return response, predictors, nil
}
