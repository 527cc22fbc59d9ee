// Package handlers implements the stats API endpoints. Every path returns
// the uniform envelope; validation the handler can detect up front is a 400,
// anything failing inside the numeric layer is a 500.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"statbridge/internal/config"
	"statbridge/internal/evaluate"
	"statbridge/internal/interfaces/httpserver/requests"
	"statbridge/internal/interfaces/httpserver/responses"
	"statbridge/internal/stats"
)

// StatsHandler exposes the numeric endpoints.
type StatsHandler struct {
	cfg     *config.StatsConfig
	runtime *evaluate.Runtime
	log     zerolog.Logger
}

// NewStatsHandler builds the handler set.
func NewStatsHandler(cfg *config.StatsConfig, runtime *evaluate.Runtime) *StatsHandler {
	return &StatsHandler{
		cfg:     cfg,
		runtime: runtime,
		log:     log.With().Str("component", "stats-handler").Logger(),
	}
}

// bindJSON decodes the body into req. An entirely empty body is accepted so
// endpoints whose fields all have defaults work without a payload.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Hello greets the caller.
func (h *StatsHandler) Hello(c *gin.Context) {
	var req requests.HelloRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	name := req.Name
	if name == "" {
		name = "World"
	}
	c.JSON(http.StatusOK, responses.HelloResponse{
		Envelope: responses.OK(),
		Message:  fmt.Sprintf("Hello, %s!", name),
	})
}

// Add sums two numbers, both defaulting to 0.
func (h *StatsHandler) Add(c *gin.Context) {
	var req requests.AddRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var a, b float64
	if req.A != nil {
		a = *req.A
	}
	if req.B != nil {
		b = *req.B
	}
	c.JSON(http.StatusOK, responses.AddResponse{
		Envelope: responses.OK(),
		A:        a,
		B:        b,
		Result:   a + b,
	})
}

// Stats applies one descriptive statistic to a numeric sample.
func (h *StatsHandler) Stats(c *gin.Context) {
	var req requests.StatsRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Data) == 0 {
		responses.Fail(c, http.StatusBadRequest, stats.ErrEmptyData.Error())
		return
	}
	operation := req.Operation
	if operation == "" {
		operation = "mean"
	}
	if !stats.IsOperation(operation) {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("unknown operation %q, valid operations: %v", operation, stats.Operations()))
		return
	}

	result, err := stats.Apply(operation, req.Data)
	if err != nil {
		h.log.Error().Err(err).Str("operation", operation).Msg("stats computation failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.StatsResponse{
		Envelope:  responses.OK(),
		Operation: operation,
		Result:    result,
		N:         len(req.Data),
	})
}

// DataFrame applies one table operation to a column mapping.
func (h *StatsHandler) DataFrame(c *gin.Context) {
	var req requests.DataFrameRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Data) == 0 {
		responses.Fail(c, http.StatusBadRequest, "data must be a non-empty mapping of columns")
		return
	}
	operation := req.Operation
	if operation == "" {
		operation = "summary"
	}
	if !stats.IsFrameOperation(operation) {
		responses.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("unknown operation %q, valid operations: %v", operation, stats.FrameOperations()))
		return
	}

	frame, err := stats.NewFrame(req.Data)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := stats.ApplyFrame(operation, frame, h.cfg.HeadRows)
	if err != nil {
		h.log.Error().Err(err).Str("operation", operation).Msg("dataframe computation failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.DataFrameResponse{
		Envelope:  responses.OK(),
		Operation: operation,
		Result:    result,
		Rows:      frame.Rows(),
		Columns:   frame.Columns(),
	})
}
