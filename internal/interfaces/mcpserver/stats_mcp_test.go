package mcpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbridge/internal/config"
	"statbridge/internal/infrastructure/statsapi"
	"statbridge/internal/infrastructure/tooldesc"
)

// fakeStatsAPI serves a minimal stats API: a health endpoint plus canned
// envelope responses per path.
func fakeStatsAPI(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/health" {
			w.Write([]byte(`{"success":true,"status":"ok","service":"stats-api","version":"1.0.0"}`))
			return
		}
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":"no such endpoint"}`))
			return
		}
		w.Write([]byte(body))
	}))
}

func newBridgeClient(t *testing.T, apiURL string) *statsapi.Client {
	t.Helper()
	return statsapi.NewClient(&config.BridgeConfig{
		StatsAPIURL:       apiURL,
		RequestTimeoutSec: 5,
		ConnectTimeoutSec: 1,
	})
}

// connectSession wires a client to the tool server over in-memory transports.
func connectSession(t *testing.T, client *statsapi.Client, overrides *tooldesc.Config) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	route := NewMCPRoute(NewStatsMCP(client, overrides))
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := route.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	mcpClient := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := mcpClient.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestListTools(t *testing.T) {
	api := fakeStatsAPI(t, nil)
	defer api.Close()

	session := connectSession(t, newBridgeClient(t, api.URL), &tooldesc.Config{})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	for _, want := range []string{
		ToolKeyStatus, ToolKeyHello, ToolKeyAdd, ToolKeyDescribe,
		ToolKeyLMSimple, ToolKeyLMFormula, ToolKeyExecute, ToolKeyCall,
		ToolKeyDataFrame, ToolKeyCorrelation, ToolKeyTTest,
	} {
		assert.Contains(t, names, want)
	}
}

func TestListTools_DescriptionOverrideAndDisable(t *testing.T) {
	api := fakeStatsAPI(t, nil)
	defer api.Close()

	overrides := &tooldesc.Config{Tools: map[string]tooldesc.Override{
		ToolKeyAdd:     {Description: "custom add description"},
		ToolKeyExecute: {Disabled: true},
	}}
	session := connectSession(t, newBridgeClient(t, api.URL), overrides)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var sawAdd bool
	for _, tool := range res.Tools {
		assert.NotEqual(t, ToolKeyExecute, tool.Name, "disabled tool must not be registered")
		if tool.Name == ToolKeyAdd {
			sawAdd = true
			assert.Equal(t, "custom add description", tool.Description)
		}
	}
	assert.True(t, sawAdd)
}

func TestCallTool_Add(t *testing.T) {
	api := fakeStatsAPI(t, map[string]string{
		"/api/add": `{"success":true,"timestamp":"2026-01-01T00:00:00Z","a":2,"b":3,"result":5}`,
	})
	defer api.Close()

	session := connectSession(t, newBridgeClient(t, api.URL), &tooldesc.Config{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolKeyAdd,
		Arguments: map[string]any{"a": 2, "b": 3},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	body, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, body["success"])
	assert.InDelta(t, 5.0, body["result"].(float64), 1e-9)
}

func TestCallTool_FailureEnvelopeBecomesToolError(t *testing.T) {
	api := fakeStatsAPI(t, map[string]string{
		"/api/stats": `{"success":false,"timestamp":"2026-01-01T00:00:00Z","error":"data must be a non-empty numeric array"}`,
	})
	defer api.Close()

	session := connectSession(t, newBridgeClient(t, api.URL), &tooldesc.Config{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolKeyDescribe,
		Arguments: map[string]any{"data": []float64{}},
	})
	require.NoError(t, err, "API failures surface as tool errors, not protocol errors")
	assert.True(t, res.IsError)

	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "non-empty numeric array")

	body, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, body["success"])
}

func TestCallTool_StatusWhenOffline(t *testing.T) {
	api := fakeStatsAPI(t, nil)
	url := api.URL
	api.Close() // tool must report offline, not fail

	session := connectSession(t, newBridgeClient(t, url), &tooldesc.Config{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolKeyStatus,
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	body, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "offline", body["status"])
	assert.Contains(t, body["message"], "is not running at")
}

func TestCallTool_UnreachableServer(t *testing.T) {
	api := fakeStatsAPI(t, nil)
	url := api.URL
	api.Close()

	session := connectSession(t, newBridgeClient(t, url), &tooldesc.Config{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolKeyHello,
		Arguments: map[string]any{"name": "Ada"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	body, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "is not running at")
}

func TestCallTool_DescribeDefaultsOperation(t *testing.T) {
	var gotBody string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/health" {
			w.Write([]byte(`{"success":true}`))
			return
		}
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(`{"success":true,"operation":"mean","result":3,"n":5}`))
	}))
	defer api.Close()

	session := connectSession(t, newBridgeClient(t, api.URL), &tooldesc.Config{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolKeyDescribe,
		Arguments: map[string]any{"data": []float64{1, 2, 3, 4, 5}},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, gotBody, `"operation":"mean"`)
}

func TestMCPMethodGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	api := fakeStatsAPI(t, nil)
	defer api.Close()

	cfg := &config.BridgeConfig{
		HTTPPort:          "0",
		StatsAPIURL:       api.URL,
		RequestTimeoutSec: 5,
		ConnectTimeoutSec: 1,
	}
	route := NewMCPRoute(NewStatsMCP(statsapi.NewClient(cfg), &tooldesc.Config{}))
	router := NewServer(cfg, route).Router()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"invalid json", "{", http.StatusBadRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, http.StatusBadRequest},
		{"disallowed method", `{"jsonrpc":"2.0","method":"resources/list","id":1}`, http.StatusBadRequest},
		{"allowed method", `{"jsonrpc":"2.0","method":"ping","id":1}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/mcp", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestBridgeHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.BridgeConfig{
		HTTPPort:          "0",
		StatsAPIURL:       "http://localhost:1",
		RequestTimeoutSec: 5,
		ConnectTimeoutSec: 1,
	}
	route := NewMCPRoute(NewStatsMCP(statsapi.NewClient(cfg), &tooldesc.Config{}))
	router := NewServer(cfg, route).Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"statbridge-mcp"`)
}
