package schemas

import "time"

// ModelProvider represents the different AI model providers supported by Arcana.
type ModelProvider string

const (
	Gemini ModelProvider = "gemini"
	OpenAI ModelProvider = "openai"
)

// ProviderPriority is the fixed order in which providers are attempted by the
// fallback chain. The order is deliberate and not configurable at runtime.
var ProviderPriority = []ModelProvider{Gemini, OpenAI}

// KnownProviders lists every provider identity the system accepts in
// configuration requests.
var KnownProviders = []ModelProvider{Gemini, OpenAI}

// IsKnownProvider reports whether the given provider identity is supported.
func IsKnownProvider(provider ModelProvider) bool {
	for _, p := range KnownProviders {
		if p == provider {
			return true
		}
	}
	return false
}

// Model represents a single model selected from a provider's static catalog.
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ProviderConfig is the runtime view of a provider's stored configuration.
// The API key is plaintext here; it is only ever encrypted at rest.
type ProviderConfig struct {
	Provider             ModelProvider `json:"provider"`
	APIKey               string        `json:"api_key"`
	BaseURL              string        `json:"base_url,omitempty"`
	IsActive             bool          `json:"is_active"`
	MaxRequestsPerMinute int           `json:"max_requests_per_minute"`
	Models               []Model       `json:"models"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// FeatureMapping routes a product feature to a specific provider/model pair.
type FeatureMapping struct {
	Feature    string        `json:"feature"`
	ProviderID ModelProvider `json:"provider_id"`
	ModelID    string        `json:"model_id"`
}

// GlobalSettings holds the request parameters shared by all provider calls.
type GlobalSettings struct {
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	EnableFallback bool    `json:"enable_fallback"`
}

// DefaultGlobalSettings returns the settings used when none have been stored.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		Temperature:    0.7,
		MaxTokens:      1000,
		EnableFallback: true,
	}
}

// AggregateConfiguration composes the full provider-side configuration view
// consumed by administrative callers.
type AggregateConfiguration struct {
	Providers       []ProviderConfig `json:"providers"`
	FeatureMappings []FeatureMapping `json:"feature_mappings"`
	GlobalSettings  GlobalSettings   `json:"global_settings"`
}

// ProviderError represents a structured failure from a provider attempt.
// Raw provider error bodies never cross the transport boundary; this type
// carries enough context for logging and fallback decisions.
type ProviderError struct {
	Provider   ModelProvider `json:"provider"`
	Message    string        `json:"message"`
	StatusCode *int          `json:"status_code,omitempty"`
	Err        error         `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
