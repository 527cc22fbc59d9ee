package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statbridge/internal/config"
	"statbridge/internal/interfaces/httpserver/handlers"
	"statbridge/internal/interfaces/httpserver/middlewares"
	"statbridge/internal/interfaces/httpserver/responses"
)

// HTTPServer serves the stats API.
type HTTPServer struct {
	router  *gin.Engine
	config  *config.StatsConfig
	handler *handlers.StatsHandler
}

// NewHTTPServer wires the router, middleware stack and handlers.
func NewHTTPServer(cfg *config.StatsConfig, handler *handlers.StatsHandler) *HTTPServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.MetricsRecorder())

	s := &HTTPServer{
		router:  router,
		config:  cfg,
		handler: handler,
	}
	s.setupRoutes()
	return s
}

func (s *HTTPServer) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, responses.HealthResponse{
			Envelope: responses.OK(),
			Status:   "ok",
			Service:  config.StatsServiceName,
			Version:  config.ServiceVersion,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.POST("/hello", s.handler.Hello)
	api.POST("/add", s.handler.Add)
	api.POST("/stats", s.handler.Stats)
	api.POST("/lm", s.handler.LM)
	api.POST("/execute", s.handler.Execute)
	api.POST("/call", s.handler.Call)
	api.POST("/dataframe", s.handler.DataFrame)
	api.POST("/correlation", s.handler.Correlation)
	api.POST("/ttest", s.handler.TTest)
}

// Router exposes the configured engine, mainly for tests.
func (s *HTTPServer) Router() *gin.Engine {
	return s.router
}

// Run starts the server on the configured port.
func (s *HTTPServer) Run() error {
	addr := fmt.Sprintf(":%s", s.config.HTTPPort)
	return s.router.Run(addr)
}
