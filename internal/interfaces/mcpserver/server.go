package mcpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statbridge/internal/config"
	"statbridge/internal/interfaces/httpserver/middlewares"
	"statbridge/internal/interfaces/httpserver/responses"
)

// Server hosts the MCP bridge over HTTP.
type Server struct {
	router *gin.Engine
	config *config.BridgeConfig
	route  *MCPRoute
}

// NewServer wires the router, middleware stack and MCP route.
func NewServer(cfg *config.BridgeConfig, route *MCPRoute) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.MetricsRecorder())

	s := &Server{
		router: router,
		config: cfg,
		route:  route,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, responses.HealthResponse{
			Envelope: responses.OK(),
			Status:   "ok",
			Service:  config.BridgeServiceName,
			Version:  config.ServiceVersion,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	s.route.RegisterRouter(v1)
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the bridge on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.HTTPPort)
	return s.router.Run(addr)
}
