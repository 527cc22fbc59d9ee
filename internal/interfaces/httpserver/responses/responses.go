// Package responses defines the uniform JSON envelope returned by every
// stats API endpoint: success and timestamp always, error iff success is
// false, plus operation-specific fields.
package responses

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is embedded in every success payload and returned alone on
// failure.
type Envelope struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// OK builds a success envelope stamped with the current time.
func OK() Envelope {
	return Envelope{Success: true, Timestamp: now()}
}

// Fail aborts the request with a failure envelope.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success:   false,
		Error:     message,
		Timestamp: now(),
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// HealthResponse reports service liveness and version metadata.
type HealthResponse struct {
	Envelope
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HelloResponse carries the greeting.
type HelloResponse struct {
	Envelope
	Message string `json:"message"`
}

// AddResponse echoes the operands with their sum.
type AddResponse struct {
	Envelope
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Result float64 `json:"result"`
}

// StatsResponse carries one descriptive statistic. Result is a scalar for
// mean/median/..., a mapping for summary/quantile and an array for fivenum.
type StatsResponse struct {
	Envelope
	Operation string `json:"operation"`
	Result    any    `json:"result"`
	N         int    `json:"n"`
}

// SimpleLMResponse carries a simple linear regression fit.
type SimpleLMResponse struct {
	Envelope
	Intercept      float64 `json:"intercept"`
	Slope          float64 `json:"slope"`
	RSquared       float64 `json:"r_squared"`
	PValue         float64 `json:"p_value"`
	ResidualStdErr float64 `json:"residual_std_error"`
	N              int     `json:"n"`
}

// FormulaLMResponse carries a formula-based multiple regression fit.
type FormulaLMResponse struct {
	Envelope
	Formula      string             `json:"formula"`
	Coefficients map[string]float64 `json:"coefficients"`
	PValues      map[string]float64 `json:"p_values"`
	RSquared     float64            `json:"r_squared"`
	AdjRSquared  float64            `json:"adj_r_squared"`
	Sigma        float64            `json:"sigma"`
	FStatistic   float64            `json:"f_statistic"`
	Residuals    ResidualSummary    `json:"residuals"`
	N            int                `json:"n"`
}

// ResidualSummary describes the residual distribution of a formula fit.
type ResidualSummary struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// ExecuteResponse carries an evaluated expression result and captured output.
type ExecuteResponse struct {
	Envelope
	Result any    `json:"result"`
	Output string `json:"output"`
	Type   string `json:"type"`
}

// CallResponse carries the result of a named function invocation.
type CallResponse struct {
	Envelope
	Function string `json:"function"`
	Result   any    `json:"result"`
	Type     string `json:"type"`
}

// DataFrameResponse carries one dataframe operation result.
type DataFrameResponse struct {
	Envelope
	Operation string `json:"operation"`
	Result    any    `json:"result"`
	Rows      int    `json:"rows"`
	Columns   int    `json:"columns"`
}

// CorrelationResponse carries a correlation estimate and its test.
type CorrelationResponse struct {
	Envelope
	Method    string  `json:"method"`
	Estimate  float64 `json:"estimate"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	N         int     `json:"n"`
}

// TTestResponse carries a t-test result.
type TTestResponse struct {
	Envelope
	Method      string  `json:"method"`
	Statistic   float64 `json:"statistic"`
	DF          float64 `json:"df"`
	PValue      float64 `json:"p_value"`
	Estimate    float64 `json:"estimate"`
	Alternative string  `json:"alternative"`
	N           int     `json:"n"`
}
