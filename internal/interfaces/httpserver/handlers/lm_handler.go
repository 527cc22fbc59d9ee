package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"statbridge/internal/interfaces/httpserver/requests"
	"statbridge/internal/interfaces/httpserver/responses"
	"statbridge/internal/stats"
)

// LM fits a linear model. The body selects the variant: x and y for simple
// regression, formula and data for multiple regression.
func (h *StatsHandler) LM(c *gin.Context) {
	var req requests.LMRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.Formula != "" || len(req.Data) > 0:
		h.formulaLM(c, req)
	case len(req.X) > 0 || len(req.Y) > 0:
		h.simpleLM(c, req)
	default:
		responses.Fail(c, http.StatusBadRequest, "provide either x and y, or formula and data")
	}
}

func (h *StatsHandler) simpleLM(c *gin.Context, req requests.LMRequest) {
	if len(req.X) != len(req.Y) {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("x and y must have the same length, got %d and %d", len(req.X), len(req.Y)))
		return
	}
	if len(req.X) < 3 {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("at least 3 points are required, got %d", len(req.X)))
		return
	}

	fit, err := stats.SimpleLM(req.X, req.Y)
	if err != nil {
		h.log.Error().Err(err).Msg("simple regression failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.SimpleLMResponse{
		Envelope:       responses.OK(),
		Intercept:      fit.Intercept,
		Slope:          fit.Slope,
		RSquared:       fit.RSquared,
		PValue:         fit.PValue,
		ResidualStdErr: fit.ResidualStdErr,
		N:              fit.N,
	})
}

func (h *StatsHandler) formulaLM(c *gin.Context, req requests.LMRequest) {
	// Formula parsing and fitting failures both count as computation errors.
	fit, err := stats.FormulaLM(req.Formula, req.Data)
	if err != nil {
		h.log.Error().Err(err).Str("formula", req.Formula).Msg("formula regression failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.FormulaLMResponse{
		Envelope:     responses.OK(),
		Formula:      fit.Formula,
		Coefficients: fit.Coefficients,
		PValues:      fit.PValues,
		RSquared:     fit.RSquared,
		AdjRSquared:  fit.AdjRSquared,
		Sigma:        fit.Sigma,
		FStatistic:   fit.FStatistic,
		Residuals: responses.ResidualSummary{
			Min:    fit.Residuals.Min,
			Median: fit.Residuals.Median,
			Max:    fit.Residuals.Max,
		},
		N: fit.N,
	})
}

// Correlation correlates two samples with a significance test.
func (h *StatsHandler) Correlation(c *gin.Context) {
	var req requests.CorrelationRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.X) == 0 || len(req.Y) == 0 {
		responses.Fail(c, http.StatusBadRequest, "x and y must be non-empty numeric arrays")
		return
	}
	if len(req.X) != len(req.Y) {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("x and y must have the same length, got %d and %d", len(req.X), len(req.Y)))
		return
	}
	method := req.Method
	if method == "" {
		method = "pearson"
	}
	if !contains(stats.CorrelationMethods, method) {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("unknown method %q, valid methods: %v", method, stats.CorrelationMethods))
		return
	}

	result, err := stats.Correlation(req.X, req.Y, method)
	if err != nil {
		h.log.Error().Err(err).Str("method", method).Msg("correlation failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.CorrelationResponse{
		Envelope:  responses.OK(),
		Method:    result.Method,
		Estimate:  result.Estimate,
		Statistic: result.Statistic,
		PValue:    result.PValue,
		N:         result.N,
	})
}

// TTest runs a one-sample, paired or Welch two-sample t-test.
func (h *StatsHandler) TTest(c *gin.Context) {
	var req requests.TTestRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.X) == 0 {
		responses.Fail(c, http.StatusBadRequest, "x must be a non-empty numeric array")
		return
	}
	alternative := req.Alternative
	if alternative == "" {
		alternative = "two.sided"
	}
	if !contains(stats.TTestAlternatives, alternative) {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("unknown alternative %q, valid alternatives: %v", alternative, stats.TTestAlternatives))
		return
	}
	if req.Paired && len(req.X) != len(req.Y) {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("paired test requires equal lengths, got %d and %d", len(req.X), len(req.Y)))
		return
	}

	result, err := stats.TTest(req.X, req.Y, req.Mu, req.Paired, alternative)
	if err != nil {
		h.log.Error().Err(err).Msg("t-test failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.TTestResponse{
		Envelope:    responses.OK(),
		Method:      result.Method,
		Statistic:   result.Statistic,
		DF:          result.DF,
		PValue:      result.PValue,
		Estimate:    result.Estimate,
		Alternative: result.Alternative,
		N:           result.N,
	})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
