package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleLM(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2.1, 3.9, 6.2, 7.8, 10.1}

	fit, err := SimpleLM(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 1.99, fit.Slope, 1e-9)
	assert.InDelta(t, 0.05, fit.Intercept, 1e-9)
	assert.Equal(t, 5, fit.N)
	assert.Greater(t, fit.RSquared, 0.99)
	assert.LessOrEqual(t, fit.RSquared, 1.0)
	assert.Less(t, fit.PValue, 0.001)
	assert.Greater(t, fit.ResidualStdErr, 0.0)
}

func TestSimpleLM_PerfectFit(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{3, 5, 7, 9} // y = 1 + 2x exactly

	fit, err := SimpleLM(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.InDelta(t, 0.0, fit.PValue, 1e-9)
	assert.InDelta(t, 0.0, fit.ResidualStdErr, 1e-9)
}

func TestSimpleLM_Errors(t *testing.T) {
	_, err := SimpleLM([]float64{1, 2, 3}, []float64{1, 2})
	assert.ErrorContains(t, err, "same length")

	_, err = SimpleLM([]float64{1, 2}, []float64{1, 2})
	assert.ErrorContains(t, err, "at least 3 points")

	_, err = SimpleLM([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrSingularFit)
}

func TestFormulaLM(t *testing.T) {
	// y = 1 + 2*x1 + 3*x2 with small perturbations.
	data := map[string][]float64{
		"x1": {1, 2, 3, 4, 5, 6},
		"x2": {2, 1, 4, 3, 6, 5},
		"y":  {9.1, 7.9, 19.2, 17.8, 29.1, 28.0},
	}

	fit, err := FormulaLM("y ~ x1 + x2", data)
	require.NoError(t, err)

	assert.Equal(t, 6, fit.N)
	assert.InDelta(t, 1.0, fit.Coefficients["(Intercept)"], 0.5)
	assert.InDelta(t, 2.0, fit.Coefficients["x1"], 0.5)
	assert.InDelta(t, 3.0, fit.Coefficients["x2"], 0.5)
	assert.Greater(t, fit.RSquared, 0.99)
	assert.LessOrEqual(t, fit.RSquared, 1.0)
	assert.Greater(t, fit.FStatistic, 1.0)
	assert.LessOrEqual(t, fit.Residuals.Min, fit.Residuals.Median)
	assert.LessOrEqual(t, fit.Residuals.Median, fit.Residuals.Max)

	require.Contains(t, fit.PValues, "x1")
	require.Contains(t, fit.PValues, "x2")
	assert.Less(t, fit.PValues["x1"], 0.05)
}

func TestFormulaLM_PerfectFit(t *testing.T) {
	data := map[string][]float64{
		"x": {1, 2, 3, 4, 5},
		"y": {3, 5, 7, 9, 11},
	}

	_, err := FormulaLM("y ~ x", data)
	assert.ErrorContains(t, err, "essentially perfect fit")
}

func TestFormulaLM_Errors(t *testing.T) {
	data := map[string][]float64{
		"x": {1, 2, 3, 4},
		"y": {1, 3, 2, 5},
	}

	tests := []struct {
		name    string
		formula string
		data    map[string][]float64
		wantErr string
	}{
		{"no tilde", "y + x", data, "malformed formula"},
		{"empty response", " ~ x", data, "empty response"},
		{"no predictors", "y ~ ", data, "empty predictor term"},
		{"response as predictor", "y ~ y", data, "cannot also be a predictor"},
		{"missing response", "z ~ x", data, "not found in data"},
		{"missing predictor", "y ~ z", data, "not found in data"},
		{
			"collinear predictors",
			"y ~ x + x2",
			map[string][]float64{
				"x":  {1, 2, 3, 4, 5},
				"x2": {2, 4, 6, 8, 10},
				"y":  {1.1, 2.3, 2.9, 4.2, 5.1},
			},
			"singular fit",
		},
		{
			"constant response",
			"y ~ x",
			map[string][]float64{"x": {1, 2, 3, 4}, "y": {5, 5, 5, 5}},
			"zero variance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FormulaLM(tt.formula, tt.data)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFormulaLM_TooFewObservations(t *testing.T) {
	data := map[string][]float64{
		"x1": {1, 2},
		"x2": {2, 1},
		"y":  {1, 2},
	}
	_, err := FormulaLM("y ~ x1 + x2", data)
	assert.ErrorContains(t, err, "too few")
}
