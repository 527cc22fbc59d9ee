package mcpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"statbridge/internal/config"
	"statbridge/internal/interfaces/httpserver/responses"
)

var allowedMCPMethods = map[string]bool{
	// Initialization / handshake
	"initialize":                true,
	"notifications/initialized": true,
	"ping":                      true,

	// Tools
	"tools/list": true,
	"tools/call": true,
}

// MCPRoute serves the MCP endpoint over streamable HTTP.
type MCPRoute struct {
	statsMCP    *StatsMCP
	mcpServer   *mcp.Server
	httpHandler http.Handler
}

// NewMCPRoute builds the MCP server and registers the stats tools on it.
func NewMCPRoute(statsMCP *StatsMCP) *MCPRoute {
	impl := &mcp.Implementation{
		Name:    config.BridgeServiceName,
		Version: config.ServiceVersion,
	}
	server := mcp.NewServer(impl, nil)
	statsMCP.RegisterTools(server)

	return &MCPRoute{
		statsMCP:  statsMCP,
		mcpServer: server,
		httpHandler: mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
			return server
		}, &mcp.StreamableHTTPOptions{Stateless: true}),
	}
}

// Server exposes the underlying MCP server for in-process clients and tests.
func (route *MCPRoute) Server() *mcp.Server {
	return route.mcpServer
}

func (route *MCPRoute) RegisterRouter(router *gin.RouterGroup) {
	router.POST("/mcp",
		MCPMethodGuard(allowedMCPMethods),
		route.serveMCP,
	)
}

func (route *MCPRoute) serveMCP(reqCtx *gin.Context) {
	// Force acceptable content types for go-sdk streamable handler even if client omits Accept.
	reqCtx.Request.Header.Set("Accept", "application/json, text/event-stream")
	route.httpHandler.ServeHTTP(reqCtx.Writer, reqCtx.Request)
}

// MCPMethodGuard rejects any JSON-RPC method outside the allowed set before
// the request reaches the streamable handler.
func MCPMethodGuard(allowedMethods map[string]bool) gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		bodyBytes, err := io.ReadAll(reqCtx.Request.Body)
		if err != nil {
			responses.Fail(reqCtx, http.StatusInternalServerError, "failed to read MCP request body")
			return
		}
		_ = reqCtx.Request.Body.Close()

		if len(bodyBytes) == 0 {
			responses.Fail(reqCtx, http.StatusBadRequest, "empty MCP request body")
			return
		}

		reqCtx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var payload struct {
			Method string `json:"method"`
		}

		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			responses.Fail(reqCtx, http.StatusBadRequest, "invalid MCP request payload")
			return
		}

		if payload.Method == "" {
			responses.Fail(reqCtx, http.StatusBadRequest, "missing method field in MCP request")
			return
		}

		if !allowedMethods[payload.Method] {
			responses.Fail(reqCtx, http.StatusBadRequest, "unsupported MCP method: "+payload.Method)
			return
		}

		reqCtx.Next()
	}
}
