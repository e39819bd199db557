// Package handlers provides HTTP request handlers for the Arcana HTTP transport.
// This file contains the interpretation generation endpoint.
package handlers

import (
	"strings"

	arcana "github.com/arcanahq/arcana"
	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// InterpretationHandler manages HTTP requests for interpretation generation
type InterpretationHandler struct {
	client *arcana.Arcana
	logger schemas.Logger
}

// NewInterpretationHandler creates a new interpretation handler instance
func NewInterpretationHandler(client *arcana.Arcana, logger schemas.Logger) *InterpretationHandler {
	return &InterpretationHandler{
		client: client,
		logger: logger,
	}
}

// RegisterRoutes registers the interpretation routes
func (h *InterpretationHandler) RegisterRoutes(r *router.Router, middlewares ...Middleware) {
	r.POST("/api/interpretations", ChainMiddlewares(h.generateInterpretation, middlewares...))
}

// generateInterpretation handles POST /api/interpretations. Generation never
// fails once the input is valid; provider outages resolve to fallback text.
func (h *InterpretationHandler) generateInterpretation(ctx *fasthttp.RequestCtx) {
	var req schemas.InterpretationRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		SendError(ctx, fasthttp.StatusBadRequest, "A question is required", h.logger)
		return
	}
	if strings.TrimSpace(req.CardInterpretations) == "" {
		SendError(ctx, fasthttp.StatusBadRequest, "Card interpretations are required", h.logger)
		return
	}

	response := h.client.GenerateInterpretation(ctx, req)
	SendJSON(ctx, response, h.logger)
}
