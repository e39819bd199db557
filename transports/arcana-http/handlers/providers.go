// Package handlers provides HTTP request handlers for the Arcana HTTP transport.
// This file contains all provider management functionality including CRUD operations.
package handlers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	arcana "github.com/arcanahq/arcana"
	"github.com/arcanahq/arcana/configstore"
	"github.com/arcanahq/arcana/modelcatalog"
	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// envMirrorNames maps a provider to the environment variable its plaintext
// key is mirrored into on save. The mirror is best effort; the store write
// is authoritative.
var envMirrorNames = map[schemas.ModelProvider]string{
	schemas.OpenAI: "OPENAI_API_KEY",
	schemas.Gemini: "GEMINI_API_KEY",
}

// ProviderHandler manages HTTP requests for provider configuration operations
type ProviderHandler struct {
	store  configstore.ConfigStore
	client *arcana.Arcana
	logger schemas.Logger
}

// NewProviderHandler creates a new provider handler instance
func NewProviderHandler(store configstore.ConfigStore, client *arcana.Arcana, logger schemas.Logger) *ProviderHandler {
	return &ProviderHandler{
		store:  store,
		client: client,
		logger: logger,
	}
}

// SaveProviderRequest represents the request body for saving a provider config
type SaveProviderRequest struct {
	Provider             schemas.ModelProvider `json:"provider"`
	APIKey               string                `json:"api_key"`
	BaseURL              string                `json:"base_url,omitempty"`
	IsActive             bool                  `json:"is_active"`
	MaxRequestsPerMinute int                   `json:"max_requests_per_minute"`
	SelectedModels       []string              `json:"selected_models"`
}

// TestConnectionRequest represents the request body for a connection test
type TestConnectionRequest struct {
	Provider schemas.ModelProvider `json:"provider"`
	APIKey   string                `json:"api_key"`
	BaseURL  string                `json:"base_url,omitempty"`
}

// RegisterRoutes registers all provider management routes
func (h *ProviderHandler) RegisterRoutes(r *router.Router, middlewares ...Middleware) {
	r.GET("/api/providers", ChainMiddlewares(h.listProviders, middlewares...))
	r.GET("/api/providers/{provider}", ChainMiddlewares(h.getProvider, middlewares...))
	r.POST("/api/providers", ChainMiddlewares(h.saveProvider, middlewares...))
	r.DELETE("/api/providers/{provider}", ChainMiddlewares(h.deleteProvider, middlewares...))
	r.POST("/api/providers/test", ChainMiddlewares(h.testConnection, middlewares...))
	r.GET("/api/feature-mappings", ChainMiddlewares(h.getFeatureMappings, middlewares...))
	r.PUT("/api/feature-mappings", ChainMiddlewares(h.saveFeatureMappings, middlewares...))
	r.GET("/api/config", ChainMiddlewares(h.getAggregateConfiguration, middlewares...))
	r.PUT("/api/settings", ChainMiddlewares(h.updateGlobalSettings, middlewares...))
	r.GET("/api/prompt-template", ChainMiddlewares(h.getPromptTemplate, middlewares...))
	r.PUT("/api/prompt-template", ChainMiddlewares(h.updatePromptTemplate, middlewares...))
}

// saveProvider handles POST /api/providers - validate, filter models, upsert
func (h *ProviderHandler) saveProvider(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendError(ctx, fasthttp.StatusServiceUnavailable, "Config store is not enabled", h.logger)
		return
	}

	var req SaveProviderRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if !schemas.IsKnownProvider(req.Provider) {
		SendError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Unknown provider: %s", req.Provider), h.logger)
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		SendError(ctx, fasthttp.StatusBadRequest, "API key is required", h.logger)
		return
	}
	if req.MaxRequestsPerMinute <= 0 {
		SendError(ctx, fasthttp.StatusBadRequest, "max_requests_per_minute must be positive", h.logger)
		return
	}
	models := modelcatalog.FilterSelected(req.Provider, req.SelectedModels)
	if len(models) == 0 {
		SendError(ctx, fasthttp.StatusBadRequest, "At least one known model must be selected", h.logger)
		return
	}

	config := schemas.ProviderConfig{
		Provider:             req.Provider,
		APIKey:               req.APIKey,
		BaseURL:              strings.TrimSpace(req.BaseURL),
		IsActive:             req.IsActive,
		MaxRequestsPerMinute: req.MaxRequestsPerMinute,
		Models:               models,
	}

	if err := h.store.UpsertProviderConfig(ctx, config); err != nil {
		h.logger.Error(fmt.Errorf("failed to save provider config for %s: %w", req.Provider, err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to save provider configuration", h.logger)
		return
	}

	// Mirror the plaintext key for in-process reuse. The store write above
	// is authoritative; a mirror failure is logged and not propagated.
	if name, ok := envMirrorNames[req.Provider]; ok {
		if err := os.Setenv(name, req.APIKey); err != nil {
			h.logger.Warn(fmt.Sprintf("failed to mirror %s key into environment: %v", req.Provider, err))
		}
	}

	SendMessage(ctx, fmt.Sprintf("Provider %s configuration saved", req.Provider), h.logger)
}

// getProvider handles GET /api/providers/{provider} - decrypted config
func (h *ProviderHandler) getProvider(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendError(ctx, fasthttp.StatusServiceUnavailable, "Config store is not enabled", h.logger)
		return
	}
	provider := schemas.ModelProvider(ctx.UserValue("provider").(string))

	config, err := h.store.GetProviderConfig(ctx, provider)
	if err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			SendError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("No configuration for provider %s", provider), h.logger)
			return
		}
		h.logger.Error(fmt.Errorf("failed to get provider config for %s: %w", provider, err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to load provider configuration", h.logger)
		return
	}
	SendJSON(ctx, config, h.logger)
}

// listProviders handles GET /api/providers - masked by default, internal when
// masked=false is passed explicitly
func (h *ProviderHandler) listProviders(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendJSON(ctx, []schemas.ProviderConfig{}, h.logger)
		return
	}

	masked := string(ctx.QueryArgs().Peek("masked")) != "false"

	var (
		configs []schemas.ProviderConfig
		err     error
	)
	if masked {
		configs, err = h.store.GetRedactedProviderConfigs(ctx)
	} else {
		configs, err = h.store.GetProviderConfigs(ctx)
	}
	if err != nil {
		h.logger.Error(fmt.Errorf("failed to list provider configs: %w", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to list provider configurations", h.logger)
		return
	}
	SendJSON(ctx, configs, h.logger)
}

// deleteProvider handles DELETE /api/providers/{provider} - idempotent
func (h *ProviderHandler) deleteProvider(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendError(ctx, fasthttp.StatusServiceUnavailable, "Config store is not enabled", h.logger)
		return
	}
	provider := schemas.ModelProvider(ctx.UserValue("provider").(string))

	if err := h.store.DeleteProviderConfig(ctx, provider); err != nil {
		h.logger.Error(fmt.Errorf("failed to delete provider config for %s: %w", provider, err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to delete provider configuration", h.logger)
		return
	}
	SendMessage(ctx, fmt.Sprintf("Provider %s configuration deleted", provider), h.logger)
}

// testConnection handles POST /api/providers/test - real lightweight health
// check against the provider with the candidate credential
func (h *ProviderHandler) testConnection(ctx *fasthttp.RequestCtx) {
	var req TestConnectionRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if !schemas.IsKnownProvider(req.Provider) {
		SendError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Unknown provider: %s", req.Provider), h.logger)
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		SendError(ctx, fasthttp.StatusBadRequest, "API key is required", h.logger)
		return
	}

	if err := h.client.TestProviderConnection(ctx, req.Provider, req.APIKey, req.BaseURL); err != nil {
		h.logger.Warn(fmt.Sprintf("connection test failed for %s: %v", req.Provider, err))
		SendError(ctx, fasthttp.StatusBadGateway, fmt.Sprintf("Connection test failed for %s", req.Provider), h.logger)
		return
	}
	SendMessage(ctx, fmt.Sprintf("Connection to %s verified", req.Provider), h.logger)
}

// getFeatureMappings handles GET /api/feature-mappings
func (h *ProviderHandler) getFeatureMappings(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendJSON(ctx, []schemas.FeatureMapping{}, h.logger)
		return
	}
	mappings, err := h.store.GetFeatureMappings(ctx)
	if err != nil {
		h.logger.Error(fmt.Errorf("failed to get feature mappings: %w", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to load feature mappings", h.logger)
		return
	}
	SendJSON(ctx, mappings, h.logger)
}

// saveFeatureMappings handles PUT /api/feature-mappings - whole-list replace
func (h *ProviderHandler) saveFeatureMappings(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendError(ctx, fasthttp.StatusServiceUnavailable, "Config store is not enabled", h.logger)
		return
	}

	var mappings []schemas.FeatureMapping
	if err := sonic.Unmarshal(ctx.PostBody(), &mappings); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	for _, mapping := range mappings {
		if mapping.Feature == "" || mapping.ModelID == "" || !schemas.IsKnownProvider(mapping.ProviderID) {
			SendError(ctx, fasthttp.StatusBadRequest, "Each mapping needs a feature, a known provider and a model id", h.logger)
			return
		}
	}

	if err := h.store.ReplaceFeatureMappings(ctx, mappings); err != nil {
		h.logger.Error(fmt.Errorf("failed to replace feature mappings: %w", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to save feature mappings", h.logger)
		return
	}
	SendMessage(ctx, "Feature mappings saved", h.logger)
}

// updateGlobalSettings handles PUT /api/settings - replaces the shared
// request parameters
func (h *ProviderHandler) updateGlobalSettings(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendError(ctx, fasthttp.StatusServiceUnavailable, "Config store is not enabled", h.logger)
		return
	}

	var settings schemas.GlobalSettings
	if err := sonic.Unmarshal(ctx.PostBody(), &settings); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if settings.Temperature < 0 || settings.Temperature > 2 {
		SendError(ctx, fasthttp.StatusBadRequest, "temperature must be between 0 and 2", h.logger)
		return
	}
	if settings.MaxTokens <= 0 {
		SendError(ctx, fasthttp.StatusBadRequest, "max_tokens must be positive", h.logger)
		return
	}

	if err := h.store.UpdateGlobalSettings(ctx, settings); err != nil {
		h.logger.Error(fmt.Errorf("failed to update global settings: %w", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to save global settings", h.logger)
		return
	}
	SendMessage(ctx, "Global settings saved", h.logger)
}

// getPromptTemplate handles GET /api/prompt-template - empty content means
// the compiled-in default template is in effect
func (h *ProviderHandler) getPromptTemplate(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendJSON(ctx, map[string]string{"content": ""}, h.logger)
		return
	}
	content, err := h.store.GetPromptTemplate(ctx)
	if err != nil {
		h.logger.Error(fmt.Errorf("failed to get prompt template: %w", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to load prompt template", h.logger)
		return
	}
	SendJSON(ctx, map[string]string{"content": content}, h.logger)
}

// updatePromptTemplate handles PUT /api/prompt-template - stores the admin
// override for the base prompt
func (h *ProviderHandler) updatePromptTemplate(ctx *fasthttp.RequestCtx) {
	if h.store == nil {
		SendError(ctx, fasthttp.StatusServiceUnavailable, "Config store is not enabled", h.logger)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		SendError(ctx, fasthttp.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if err := h.store.UpdatePromptTemplate(ctx, req.Content); err != nil {
		h.logger.Error(fmt.Errorf("failed to update prompt template: %w", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to save prompt template", h.logger)
		return
	}
	SendMessage(ctx, "Prompt template saved", h.logger)
}

// getAggregateConfiguration handles GET /api/config - providers (masked),
// feature mappings and global settings in one response
func (h *ProviderHandler) getAggregateConfiguration(ctx *fasthttp.RequestCtx) {
	aggregate := schemas.AggregateConfiguration{
		Providers:       []schemas.ProviderConfig{},
		FeatureMappings: []schemas.FeatureMapping{},
		GlobalSettings:  schemas.DefaultGlobalSettings(),
	}

	if h.store != nil {
		if providers, err := h.store.GetRedactedProviderConfigs(ctx); err == nil {
			aggregate.Providers = providers
		} else {
			h.logger.Warn(fmt.Sprintf("aggregate config: failed to load providers: %v", err))
		}
		if mappings, err := h.store.GetFeatureMappings(ctx); err == nil {
			aggregate.FeatureMappings = mappings
		} else {
			h.logger.Warn(fmt.Sprintf("aggregate config: failed to load feature mappings: %v", err))
		}
		if settings, err := h.store.GetGlobalSettings(ctx); err == nil && settings != nil {
			aggregate.GlobalSettings = *settings
		}
	}

	SendJSON(ctx, aggregate, h.logger)
}
