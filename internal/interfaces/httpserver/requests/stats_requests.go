// Package requests defines one typed request struct per endpoint. Optional
// fields use pointers so absent and zero values stay distinguishable; bodies
// that do not match the declared shape are rejected at the binding step.
package requests

// HelloRequest greets a caller.
type HelloRequest struct {
	Name string `json:"name"`
}

// AddRequest adds two numbers. Both operands default to 0.
type AddRequest struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

// StatsRequest applies one descriptive statistic to a numeric sample.
type StatsRequest struct {
	Data      []float64 `json:"data"`
	Operation string    `json:"operation"`
}

// LMRequest fits a linear model. Either X and Y (simple regression) or
// Formula and Data (multiple regression) must be given.
type LMRequest struct {
	X       []float64            `json:"x"`
	Y       []float64            `json:"y"`
	Formula string               `json:"formula"`
	Data    map[string][]float64 `json:"data"`
}

// ExecuteRequest evaluates an expression in the sandboxed runtime.
type ExecuteRequest struct {
	Code string `json:"code"`
}

// CallRequest invokes a registered function by name. Args may be a JSON
// array (positional) or object (named).
type CallRequest struct {
	Func string `json:"func"`
	Args any    `json:"args"`
}

// DataFrameRequest applies one table operation to a column mapping.
type DataFrameRequest struct {
	Data      map[string][]any `json:"data"`
	Operation string           `json:"operation"`
}

// CorrelationRequest correlates two samples.
type CorrelationRequest struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Method string    `json:"method"`
}

// TTestRequest runs a t-test. Y nil selects the one-sample test.
type TTestRequest struct {
	X           []float64 `json:"x"`
	Y           []float64 `json:"y"`
	Mu          float64   `json:"mu"`
	Paired      bool      `json:"paired"`
	Alternative string    `json:"alternative"`
}
