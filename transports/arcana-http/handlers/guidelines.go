// Package handlers provides HTTP request handlers for the Arcana HTTP transport.
// This file contains guideline catalog management and query functionality.
package handlers

import (
	"errors"
	"fmt"

	"github.com/arcanahq/arcana/guidelines"
	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// GuidelineHandler manages HTTP requests for guideline operations
type GuidelineHandler struct {
	catalog *guidelines.Catalog
	logger  schemas.Logger
}

// NewGuidelineHandler creates a new guideline handler instance
func NewGuidelineHandler(catalog *guidelines.Catalog, logger schemas.Logger) *GuidelineHandler {
	return &GuidelineHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ToggleGuidelineRequest represents the request body for a state toggle
type ToggleGuidelineRequest struct {
	IsActive bool `json:"is_active"`
}

// SaveGuidelineResponse carries the id assigned to a newly saved guideline
type SaveGuidelineResponse struct {
	ID string `json:"id"`
}

// RegisterRoutes registers all guideline management routes
func (h *GuidelineHandler) RegisterRoutes(r *router.Router, middlewares ...Middleware) {
	r.GET("/api/guidelines", ChainMiddlewares(h.listGuidelines, middlewares...))
	r.GET("/api/guidelines/spread/{spreadId}", ChainMiddlewares(h.getBySpread, middlewares...))
	r.GET("/api/guidelines/style/{styleId}", ChainMiddlewares(h.getByStyle, middlewares...))
	r.GET("/api/guidelines/combination/{spreadId}/{styleId}", ChainMiddlewares(h.getByCombination, middlewares...))
	r.POST("/api/guidelines", ChainMiddlewares(h.saveGuideline, middlewares...))
	r.PUT("/api/guidelines/{id}", ChainMiddlewares(h.updateGuideline, middlewares...))
	r.DELETE("/api/guidelines/{id}", ChainMiddlewares(h.deleteGuideline, middlewares...))
	r.PATCH("/api/guidelines/{id}/active", ChainMiddlewares(h.toggleGuideline, middlewares...))
}

// listGuidelines handles GET /api/guidelines?forceRefresh=true|false
func (h *GuidelineHandler) listGuidelines(ctx *fasthttp.RequestCtx) {
	forceRefresh := string(ctx.QueryArgs().Peek("forceRefresh")) == "true"
	result := h.catalog.GetAll(ctx, forceRefresh)
	SendJSON(ctx, result, h.logger)
}

// getBySpread handles GET /api/guidelines/spread/{spreadId}
func (h *GuidelineHandler) getBySpread(ctx *fasthttp.RequestCtx) {
	spreadID := ctx.UserValue("spreadId").(string)
	SendJSON(ctx, h.catalog.GetBySpread(ctx, spreadID), h.logger)
}

// getByStyle handles GET /api/guidelines/style/{styleId}
func (h *GuidelineHandler) getByStyle(ctx *fasthttp.RequestCtx) {
	styleID := ctx.UserValue("styleId").(string)
	SendJSON(ctx, h.catalog.GetByStyle(ctx, styleID), h.logger)
}

// getByCombination handles GET /api/guidelines/combination/{spreadId}/{styleId}
func (h *GuidelineHandler) getByCombination(ctx *fasthttp.RequestCtx) {
	spreadID := ctx.UserValue("spreadId").(string)
	styleID := ctx.UserValue("styleId").(string)

	guideline, err := h.catalog.GetByCombination(ctx, spreadID, styleID)
	if err != nil {
		if errors.Is(err, guidelines.ErrNotFound) {
			SendError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("No guideline for spread %q and style %q", spreadID, styleID), h.logger)
			return
		}
		h.logger.Error(fmt.Errorf("failed to get guideline by combination: %w", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to look up guideline", h.logger)
		return
	}
	SendJSON(ctx, guideline, h.logger)
}

// saveGuideline handles POST /api/guidelines
func (h *GuidelineHandler) saveGuideline(ctx *fasthttp.RequestCtx) {
	var guideline schemas.Guideline
	if err := sonic.Unmarshal(ctx.PostBody(), &guideline); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	id, err := h.catalog.Save(ctx, guideline)
	if err != nil {
		if errors.Is(err, guidelines.ErrStoreRequired) {
			SendError(ctx, fasthttp.StatusServiceUnavailable, "Guideline storage is not available", h.logger)
			return
		}
		SendError(ctx, fasthttp.StatusBadRequest, err.Error(), h.logger)
		return
	}
	SendJSON(ctx, SaveGuidelineResponse{ID: id}, h.logger)
}

// updateGuideline handles PUT /api/guidelines/{id}
func (h *GuidelineHandler) updateGuideline(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)

	var guideline schemas.Guideline
	if err := sonic.Unmarshal(ctx.PostBody(), &guideline); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if err := h.catalog.Update(ctx, id, guideline); err != nil {
		h.sendGuidelineError(ctx, id, "update", err)
		return
	}
	SendMessage(ctx, fmt.Sprintf("Guideline %s updated", id), h.logger)
}

// deleteGuideline handles DELETE /api/guidelines/{id}
func (h *GuidelineHandler) deleteGuideline(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)

	if err := h.catalog.Delete(ctx, id); err != nil {
		h.sendGuidelineError(ctx, id, "delete", err)
		return
	}
	SendMessage(ctx, fmt.Sprintf("Guideline %s deleted", id), h.logger)
}

// toggleGuideline handles PATCH /api/guidelines/{id}/active
func (h *GuidelineHandler) toggleGuideline(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)

	var req ToggleGuidelineRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	source, err := h.catalog.ToggleActive(ctx, id, req.IsActive)
	if err != nil {
		h.sendGuidelineError(ctx, id, "toggle", err)
		return
	}
	if source == guidelines.SourceDegraded {
		SendMessage(ctx, fmt.Sprintf("Guideline %s state changed in memory only; storage is unavailable", id), h.logger)
		return
	}
	SendMessage(ctx, fmt.Sprintf("Guideline %s state changed", id), h.logger)
}

func (h *GuidelineHandler) sendGuidelineError(ctx *fasthttp.RequestCtx, id, operation string, err error) {
	switch {
	case errors.Is(err, guidelines.ErrSystemGuideline):
		SendError(ctx, fasthttp.StatusForbidden, "System guidelines cannot change state", h.logger)
	case errors.Is(err, guidelines.ErrNotFound):
		SendError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Guideline %s not found", id), h.logger)
	case errors.Is(err, guidelines.ErrStoreRequired):
		SendError(ctx, fasthttp.StatusServiceUnavailable, "Guideline storage is not available", h.logger)
	default:
		h.logger.Error(fmt.Errorf("failed to %s guideline %s: %w", operation, id, err))
		SendError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Failed to %s guideline", operation), h.logger)
	}
}
