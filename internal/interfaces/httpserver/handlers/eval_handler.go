package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"statbridge/internal/interfaces/httpserver/requests"
	"statbridge/internal/interfaces/httpserver/responses"
)

// Execute evaluates an expression in the sandboxed runtime. Disabled unless
// STATS_ENABLE_EXEC is set.
func (h *StatsHandler) Execute(c *gin.Context) {
	var req requests.ExecuteRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if !h.cfg.EnableExec {
		responses.Fail(c, http.StatusForbidden,
			"code execution is disabled; set STATS_ENABLE_EXEC=true to enable it")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		responses.Fail(c, http.StatusBadRequest, "code must not be empty")
		return
	}

	result, output, typeName, err := h.runtime.Execute(req.Code)
	if err != nil {
		h.log.Error().Err(err).Msg("expression evaluation failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.ExecuteResponse{
		Envelope: responses.OK(),
		Result:   result,
		Output:   output,
		Type:     typeName,
	})
}

// Call invokes a registered function by name with positional or named
// arguments.
func (h *StatsHandler) Call(c *gin.Context) {
	var req requests.CallRequest
	if err := bindJSON(c, &req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Func == "" {
		responses.Fail(c, http.StatusBadRequest, "func is required")
		return
	}
	if _, ok := h.runtime.Lookup(req.Func); !ok {
		responses.Fail(c, http.StatusBadRequest,
			"function "+req.Func+" is not callable; see /api/call documentation for the allow-list")
		return
	}

	var args []any
	var named map[string]any
	switch value := req.Args.(type) {
	case nil:
	case []any:
		args = value
	case map[string]any:
		named = value
	default:
		responses.Fail(c, http.StatusBadRequest, "args must be an array (positional) or object (named)")
		return
	}

	result, typeName, err := h.runtime.Call(req.Func, args, named)
	if err != nil {
		h.log.Error().Err(err).Str("function", req.Func).Msg("function invocation failed")
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.CallResponse{
		Envelope: responses.OK(),
		Function: req.Func,
		Result:   result,
		Type:     typeName,
	})
}
