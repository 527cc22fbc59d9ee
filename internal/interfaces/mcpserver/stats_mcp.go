// Package mcpserver exposes the stats API endpoints as MCP tools. Each tool
// is one bounded-timeout HTTP round trip against the stats server; transport
// and envelope failures become IsError tool results, never process crashes.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"statbridge/internal/infrastructure/metrics"
	"statbridge/internal/infrastructure/statsapi"
	"statbridge/internal/infrastructure/tooldesc"
)

// Tool keys, used for registration, metrics labels and description
// overrides.
const (
	ToolKeyStatus      = "stats_status"
	ToolKeyHello       = "stats_hello"
	ToolKeyAdd         = "stats_add"
	ToolKeyDescribe    = "stats_describe"
	ToolKeyLMSimple    = "stats_lm_simple"
	ToolKeyLMFormula   = "stats_lm_formula"
	ToolKeyExecute     = "stats_execute"
	ToolKeyCall        = "stats_call"
	ToolKeyDataFrame   = "stats_dataframe"
	ToolKeyCorrelation = "stats_correlation"
	ToolKeyTTest       = "stats_ttest"
)

var defaultToolDescriptions = map[string]string{
	ToolKeyStatus:      "Check whether the stats API server is reachable and report its version metadata.",
	ToolKeyHello:       "Send a greeting to the stats API server. Optional name defaults to \"World\".",
	ToolKeyAdd:         "Add two numbers. Both operands default to 0.",
	ToolKeyDescribe:    "Compute one descriptive statistic over numeric data. Operations: mean (default), median, sd, var, min, max, sum, summary, quantile, fivenum.",
	ToolKeyLMSimple:    "Fit a simple linear regression y ~ x and return intercept, slope, r-squared, p-value and residual standard error.",
	ToolKeyLMFormula:   "Fit a multiple linear regression from a formula such as \"y ~ x1 + x2\" over a column mapping.",
	ToolKeyExecute:     "Evaluate a sandboxed numeric expression on the stats server and return the result with captured print output.",
	ToolKeyCall:        "Call an allow-listed statistical function by name with positional or named arguments.",
	ToolKeyDataFrame:   "Run a table operation over a column mapping. Operations: summary (default), dim, names, head, tail, str.",
	ToolKeyCorrelation: "Correlate two samples using pearson (default), spearman or kendall, with a two-sided significance test.",
	ToolKeyTTest:       "Run a one-sample, paired or Welch two-sample t-test.",
}

// StatusArgs has no parameters.
type StatusArgs struct{}

// HelloArgs greets by name.
type HelloArgs struct {
	Name *string `json:"name,omitempty"`
}

// AddArgs adds two numbers.
type AddArgs struct {
	A *float64 `json:"a,omitempty"`
	B *float64 `json:"b,omitempty"`
}

// DescribeArgs selects a descriptive statistic over data.
type DescribeArgs struct {
	Data      []float64 `json:"data"`
	Operation *string   `json:"operation,omitempty"`
}

// LMSimpleArgs fits y ~ x.
type LMSimpleArgs struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// LMFormulaArgs fits a formula over a column mapping.
type LMFormulaArgs struct {
	Formula string               `json:"formula"`
	Data    map[string][]float64 `json:"data"`
}

// ExecuteArgs carries an expression to evaluate.
type ExecuteArgs struct {
	Code string `json:"code"`
}

// CallArgs names a function and its arguments (array for positional, object
// for named).
type CallArgs struct {
	Func string `json:"func"`
	Args any    `json:"args,omitempty"`
}

// DataFrameArgs selects a table operation over a column mapping.
type DataFrameArgs struct {
	Data      map[string][]any `json:"data"`
	Operation *string          `json:"operation,omitempty"`
}

// CorrelationArgs correlates two samples.
type CorrelationArgs struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Method *string   `json:"method,omitempty"`
}

// TTestArgs parameterizes a t-test.
type TTestArgs struct {
	X           []float64 `json:"x"`
	Y           []float64 `json:"y,omitempty"`
	Mu          *float64  `json:"mu,omitempty"`
	Paired      *bool     `json:"paired,omitempty"`
	Alternative *string   `json:"alternative,omitempty"`
}

// StatsMCP registers the stats tools with an MCP server.
type StatsMCP struct {
	client    *statsapi.Client
	overrides *tooldesc.Config
}

// NewStatsMCP builds the tool handler set.
func NewStatsMCP(client *statsapi.Client, overrides *tooldesc.Config) *StatsMCP {
	return &StatsMCP{client: client, overrides: overrides}
}

func (s *StatsMCP) tool(key string) *mcp.Tool {
	return &mcp.Tool{
		Name:        key,
		Description: s.overrides.Description(key, defaultToolDescriptions[key]),
	}
}

func (s *StatsMCP) enabled(key string) bool {
	if s.overrides.Enabled(key) {
		return true
	}
	log.Warn().Str("tool", key).Msg("tool disabled via description overrides")
	return false
}

// RegisterTools registers every enabled tool with the MCP server.
func (s *StatsMCP) RegisterTools(server *mcp.Server) {
	if s.enabled(ToolKeyStatus) {
		mcp.AddTool(server, s.tool(ToolKeyStatus), func(ctx context.Context, req *mcp.CallToolRequest, input StatusArgs) (*mcp.CallToolResult, map[string]any, error) {
			start := time.Now()
			body, err := s.client.Health(ctx)
			if err != nil {
				// Offline is a valid answer for the status tool, not an error.
				metrics.RecordToolCall(ToolKeyStatus, "offline", time.Since(start).Seconds())
				return nil, map[string]any{
					"status":  "offline",
					"error":   err.Error(),
					"message": fmt.Sprintf("stats API server is not running at %s", s.client.BaseURL()),
				}, nil
			}
			metrics.RecordToolCall(ToolKeyStatus, "success", time.Since(start).Seconds())
			return nil, body, nil
		})
	}

	if s.enabled(ToolKeyHello) {
		mcp.AddTool(server, s.tool(ToolKeyHello), func(ctx context.Context, req *mcp.CallToolRequest, input HelloArgs) (*mcp.CallToolResult, map[string]any, error) {
			payload := map[string]any{}
			if input.Name != nil {
				payload["name"] = *input.Name
			}
			return s.relay(ctx, ToolKeyHello, "/api/hello", payload)
		})
	}

	if s.enabled(ToolKeyAdd) {
		mcp.AddTool(server, s.tool(ToolKeyAdd), func(ctx context.Context, req *mcp.CallToolRequest, input AddArgs) (*mcp.CallToolResult, map[string]any, error) {
			a, b := 0.0, 0.0
			if input.A != nil {
				a = *input.A
			}
			if input.B != nil {
				b = *input.B
			}
			return s.relay(ctx, ToolKeyAdd, "/api/add", map[string]any{"a": a, "b": b})
		})
	}

	if s.enabled(ToolKeyDescribe) {
		mcp.AddTool(server, s.tool(ToolKeyDescribe), func(ctx context.Context, req *mcp.CallToolRequest, input DescribeArgs) (*mcp.CallToolResult, map[string]any, error) {
			payload := map[string]any{
				"data":      input.Data,
				"operation": valueOr(input.Operation, "mean"),
			}
			return s.relay(ctx, ToolKeyDescribe, "/api/stats", payload)
		})
	}

	if s.enabled(ToolKeyLMSimple) {
		mcp.AddTool(server, s.tool(ToolKeyLMSimple), func(ctx context.Context, req *mcp.CallToolRequest, input LMSimpleArgs) (*mcp.CallToolResult, map[string]any, error) {
			return s.relay(ctx, ToolKeyLMSimple, "/api/lm", map[string]any{"x": input.X, "y": input.Y})
		})
	}

	if s.enabled(ToolKeyLMFormula) {
		mcp.AddTool(server, s.tool(ToolKeyLMFormula), func(ctx context.Context, req *mcp.CallToolRequest, input LMFormulaArgs) (*mcp.CallToolResult, map[string]any, error) {
			payload := map[string]any{"formula": input.Formula, "data": input.Data}
			return s.relay(ctx, ToolKeyLMFormula, "/api/lm", payload)
		})
	}

	if s.enabled(ToolKeyExecute) {
		mcp.AddTool(server, s.tool(ToolKeyExecute), func(ctx context.Context, req *mcp.CallToolRequest, input ExecuteArgs) (*mcp.CallToolResult, map[string]any, error) {
			return s.relay(ctx, ToolKeyExecute, "/api/execute", map[string]any{"code": input.Code})
		})
	}

	if s.enabled(ToolKeyCall) {
		mcp.AddTool(server, s.tool(ToolKeyCall), func(ctx context.Context, req *mcp.CallToolRequest, input CallArgs) (*mcp.CallToolResult, map[string]any, error) {
			payload := map[string]any{"func": input.Func}
			if input.Args != nil {
				payload["args"] = input.Args
			}
			return s.relay(ctx, ToolKeyCall, "/api/call", payload)
		})
	}

	if s.enabled(ToolKeyDataFrame) {
		mcp.AddTool(server, s.tool(ToolKeyDataFrame), func(ctx context.Context, req *mcp.CallToolRequest, input DataFrameArgs) (*mcp.CallToolResult, map[string]any, error) {
			payload := map[string]any{
				"data":      input.Data,
				"operation": valueOr(input.Operation, "summary"),
			}
			return s.relay(ctx, ToolKeyDataFrame, "/api/dataframe", payload)
		})
	}

	if s.enabled(ToolKeyCorrelation) {
		mcp.AddTool(server, s.tool(ToolKeyCorrelation), func(ctx context.Context, req *mcp.CallToolRequest, input CorrelationArgs) (*mcp.CallToolResult, map[string]any, error) {
			payload := map[string]any{
				"x":      input.X,
				"y":      input.Y,
				"method": valueOr(input.Method, "pearson"),
			}
			return s.relay(ctx, ToolKeyCorrelation, "/api/correlation", payload)
		})
	}

	if s.enabled(ToolKeyTTest) {
		mcp.AddTool(server, s.tool(ToolKeyTTest), func(ctx context.Context, req *mcp.CallToolRequest, input TTestArgs) (*mcp.CallToolResult, map[string]any, error) {
			payload := map[string]any{
				"x":           input.X,
				"mu":          0.0,
				"paired":      false,
				"alternative": valueOr(input.Alternative, "two.sided"),
			}
			if input.Y != nil {
				payload["y"] = input.Y
			}
			if input.Mu != nil {
				payload["mu"] = *input.Mu
			}
			if input.Paired != nil {
				payload["paired"] = *input.Paired
			}
			return s.relay(ctx, ToolKeyTTest, "/api/ttest", payload)
		})
	}
}

// relay performs one round trip against the stats API and reshapes the
// envelope into a tool result. Failures become IsError results carrying the
// envelope so the caller sees the error message verbatim.
func (s *StatsMCP) relay(ctx context.Context, toolKey, path string, payload map[string]any) (*mcp.CallToolResult, map[string]any, error) {
	start := time.Now()
	log.Info().Str("tool", toolKey).Str("path", path).Msg("MCP tool call received")

	body, err := s.client.Call(ctx, path, payload)
	if err != nil {
		metrics.RecordToolCall(toolKey, "unreachable", time.Since(start).Seconds())
		log.Warn().Err(err).Str("tool", toolKey).Msg("stats API call failed")
		return errorResult(err.Error()), map[string]any{
			"success": false,
			"error":   err.Error(),
		}, nil
	}

	if success, _ := body["success"].(bool); !success {
		message, _ := body["error"].(string)
		if message == "" {
			message = "stats API reported a failure without an error message"
		}
		metrics.RecordToolCall(toolKey, "error", time.Since(start).Seconds())
		log.Warn().Str("tool", toolKey).Str("error", message).Msg("stats API returned a failure envelope")
		return errorResult(message), body, nil
	}

	metrics.RecordToolCall(toolKey, "success", time.Since(start).Seconds())
	return nil, body, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}

func valueOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}
