// Package arcana provides the core implementation of the Arcana interpretation
// system: guideline-enriched prompt composition and a multi-provider fallback
// chain that always resolves to text.
package arcana

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/arcanahq/arcana/configstore"
	"github.com/arcanahq/arcana/guidelines"
	"github.com/arcanahq/arcana/modelcatalog"
	"github.com/arcanahq/arcana/providers"
	"github.com/arcanahq/arcana/schemas"
	"golang.org/x/time/rate"
)

const (
	// TarotInterpretationFeature is the feature-mapping key consulted when
	// selecting a model for interpretation requests.
	TarotInterpretationFeature = "tarot-interpretation"

	// DefaultAttemptTimeout bounds each provider attempt so a hung call
	// advances the fallback chain instead of stalling the request.
	DefaultAttemptTimeout = 10 * time.Second
)

// envKeyNames maps each provider to the environment variable consulted when
// no stored credential exists for it.
var envKeyNames = map[schemas.ModelProvider]string{
	schemas.OpenAI: "OPENAI_API_KEY",
	schemas.Gemini: "GEMINI_API_KEY",
}

// ClientConfig holds the dependencies for an Arcana client. Store may be nil,
// in which case credentials come from the environment and global settings and
// the prompt template fall back to their built-in defaults.
type ClientConfig struct {
	Store          configstore.ConfigStore
	Catalog        *guidelines.Catalog
	Logger         schemas.Logger
	AttemptTimeout time.Duration
}

// Arcana orchestrates interpretation generation: it composes the enriched
// prompt, walks the provider priority list with per-attempt isolation, and
// degrades to the deterministic local renderer when every attempt fails.
type Arcana struct {
	store          configstore.ConfigStore
	catalog        *guidelines.Catalog
	logger         schemas.Logger
	providers      []providers.Provider
	attemptTimeout time.Duration

	mu       sync.Mutex
	limiters map[schemas.ModelProvider]*providerLimiter
}

// providerLimiter pairs a token bucket with the budget it was built from, so
// a changed budget is detected and the bucket rebuilt.
type providerLimiter struct {
	rpm     int
	limiter *rate.Limiter
}

// Init creates a new Arcana client with the given configuration. The provider
// chain is built in the fixed priority order; it is data-driven but not
// configurable at runtime.
func Init(config ClientConfig) *Arcana {
	logger := config.Logger
	if logger == nil {
		logger = NewDefaultLogger(schemas.LogLevelInfo)
	}
	catalog := config.Catalog
	if catalog == nil {
		catalog = guidelines.NewCatalog(config.Store, logger)
	}
	timeout := config.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	chain := make([]providers.Provider, 0, len(schemas.ProviderPriority))
	for _, key := range schemas.ProviderPriority {
		switch key {
		case schemas.Gemini:
			chain = append(chain, providers.NewGeminiProvider(logger))
		case schemas.OpenAI:
			chain = append(chain, providers.NewOpenAIProvider(logger))
		}
	}

	return &Arcana{
		store:          config.Store,
		catalog:        catalog,
		logger:         logger,
		providers:      chain,
		attemptTimeout: timeout,
		limiters:       make(map[schemas.ModelProvider]*providerLimiter),
	}
}

// Catalog returns the guideline catalog used for prompt enrichment.
func (a *Arcana) Catalog() *guidelines.Catalog {
	return a.catalog
}

// GenerateInterpretation produces an interpretation for the given input. It
// never returns an error: when every provider attempt fails or none is
// configured, the deterministic local renderer supplies the text.
func (a *Arcana) GenerateInterpretation(ctx context.Context, input schemas.InterpretationRequest) schemas.InterpretationResponse {
	guideline := a.resolveGuideline(ctx, input)
	template := a.resolvePromptTemplate(ctx)
	settings := a.resolveGlobalSettings(ctx)
	prompt := composePrompt(template, input, guideline)

	a.logger.Debug(fmt.Sprintf("composed prompt of %d chars (guideline hit: %t)", len(prompt), guideline != nil))

	mappings := a.resolveFeatureMappings(ctx)

	for _, provider := range a.providers {
		key := provider.GetProviderKey()

		credential, config, err := a.resolveCredential(ctx, key)
		if err != nil {
			a.logger.Warn(fmt.Sprintf("skipping provider %s: %s", key, err.Error()))
			continue
		}
		if credential == "" {
			a.logger.Debug(fmt.Sprintf("skipping provider %s: no credential configured", key))
			continue
		}
		if !a.allowRequest(key, config) {
			a.logger.Warn(fmt.Sprintf("skipping provider %s: request rate limit reached", key))
			continue
		}

		model := a.selectModel(key, config, mappings)
		baseURL := ""
		if config != nil {
			baseURL = config.BaseURL
		}

		a.logger.Info(fmt.Sprintf("attempting provider %s with model %s", key, model))

		attemptCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
		text, providerErr := provider.GenerateText(attemptCtx, credential, baseURL, model, prompt, settings)
		cancel()

		if providerErr != nil {
			a.logger.Warn(fmt.Sprintf("provider %s failed: %s", key, providerErr.Error()))
			continue
		}
		if strings.TrimSpace(text) == "" {
			a.logger.Warn(fmt.Sprintf("provider %s returned empty text", key))
			continue
		}

		a.logger.Info(fmt.Sprintf("provider %s succeeded with %d chars", key, len(text)))
		return schemas.InterpretationResponse{Interpretation: text}
	}

	a.logger.Info("all providers exhausted; using deterministic fallback renderer")
	return schemas.InterpretationResponse{Interpretation: renderFallbackInterpretation(input, guideline)}
}

// TestProviderConnection performs a lightweight authenticated health check
// against a provider using the candidate credential. It validates that the
// key works before it is saved; it makes no statement about model access.
func (a *Arcana) TestProviderConnection(ctx context.Context, provider schemas.ModelProvider, apiKey, baseURL string) error {
	for _, candidate := range a.providers {
		if candidate.GetProviderKey() != provider {
			continue
		}
		attemptCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
		providerErr := candidate.TestConnection(attemptCtx, apiKey, baseURL)
		cancel()
		return providerErr
	}
	return fmt.Errorf("unsupported provider: %s", provider)
}

// resolveGuideline looks up the enrichment guideline when both spread and
// style are present. A miss is a valid state, never an error to the caller.
func (a *Arcana) resolveGuideline(ctx context.Context, input schemas.InterpretationRequest) *schemas.Guideline {
	if input.SpreadID == "" || input.StyleID == "" {
		return nil
	}
	guideline, err := a.catalog.GetByCombination(ctx, input.SpreadID, input.StyleID)
	if err != nil {
		a.logger.Debug(fmt.Sprintf("no guideline for spread %q style %q", input.SpreadID, input.StyleID))
		return nil
	}
	return guideline
}

// resolvePromptTemplate returns the stored template override, or the built-in
// default when the store is absent, empty, or failing.
func (a *Arcana) resolvePromptTemplate(ctx context.Context) string {
	if a.store == nil {
		return DefaultPromptTemplate
	}
	content, err := a.store.GetPromptTemplate(ctx)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("failed to load prompt template override: %s", err.Error()))
		return DefaultPromptTemplate
	}
	if strings.TrimSpace(content) == "" {
		return DefaultPromptTemplate
	}
	return content
}

func (a *Arcana) resolveGlobalSettings(ctx context.Context) schemas.GlobalSettings {
	if a.store == nil {
		return schemas.DefaultGlobalSettings()
	}
	settings, err := a.store.GetGlobalSettings(ctx)
	if err != nil || settings == nil {
		return schemas.DefaultGlobalSettings()
	}
	return *settings
}

func (a *Arcana) resolveFeatureMappings(ctx context.Context) []schemas.FeatureMapping {
	if a.store == nil {
		return nil
	}
	mappings, err := a.store.GetFeatureMappings(ctx)
	if err != nil {
		a.logger.Debug(fmt.Sprintf("failed to load feature mappings: %s", err.Error()))
		return nil
	}
	return mappings
}

// resolveCredential returns the plaintext API key for a provider, preferring
// the stored config over the process environment. Failures are scoped to this
// provider only; the chain moves on to the next one.
func (a *Arcana) resolveCredential(ctx context.Context, provider schemas.ModelProvider) (string, *schemas.ProviderConfig, error) {
	if a.store != nil {
		config, err := a.store.GetProviderConfig(ctx, provider)
		switch {
		case err == nil && config != nil:
			if !config.IsActive {
				return "", config, nil
			}
			return config.APIKey, config, nil
		case err != nil && !errors.Is(err, configstore.ErrNotFound):
			a.logger.Debug(fmt.Sprintf("store lookup failed for provider %s: %s", provider, err.Error()))
		}
	}
	if name, ok := envKeyNames[provider]; ok {
		return os.Getenv(name), nil, nil
	}
	return "", nil, nil
}

// selectModel resolves the model id for an attempt: the feature mapping for
// tarot interpretation wins, then the first active stored model, then the
// provider's catalog default.
func (a *Arcana) selectModel(provider schemas.ModelProvider, config *schemas.ProviderConfig, mappings []schemas.FeatureMapping) string {
	for _, mapping := range mappings {
		if mapping.Feature == TarotInterpretationFeature && mapping.ProviderID == provider && mapping.ModelID != "" {
			return mapping.ModelID
		}
	}
	if config != nil {
		for _, model := range config.Models {
			if model.IsActive {
				return model.ID
			}
		}
	}
	return modelcatalog.DefaultModelID(provider)
}

// allowRequest enforces the stored maxRequestsPerMinute budget with a lazily
// created token bucket per provider. A zero or missing budget means no limit.
// The bucket is rebuilt when the stored budget changes, so an admin update
// takes effect on the next request.
func (a *Arcana) allowRequest(provider schemas.ModelProvider, config *schemas.ProviderConfig) bool {
	if config == nil || config.MaxRequestsPerMinute <= 0 {
		return true
	}

	a.mu.Lock()
	bucket, ok := a.limiters[provider]
	if !ok || bucket.rpm != config.MaxRequestsPerMinute {
		bucket = &providerLimiter{
			rpm:     config.MaxRequestsPerMinute,
			limiter: rate.NewLimiter(rate.Limit(float64(config.MaxRequestsPerMinute)/60.0), config.MaxRequestsPerMinute),
		}
		a.limiters[provider] = bucket
	}
	a.mu.Unlock()

	return bucket.limiter.Allow()
}
