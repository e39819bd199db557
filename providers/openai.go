// This file contains the OpenAI provider implementation.
package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

const openAIDefaultBaseURL = "https://api.openai.com"

// OpenAIChatResponse represents the response structure from the OpenAI chat
// completions API, reduced to the fields the fallback chain consumes.
type OpenAIChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// OpenAIError represents the error response structure from the OpenAI API.
type OpenAIError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// openAIResponsePool provides a pool for OpenAI response objects.
var openAIResponsePool = sync.Pool{
	New: func() interface{} {
		return &OpenAIChatResponse{}
	},
}

func acquireOpenAIResponse() *OpenAIChatResponse {
	resp := openAIResponsePool.Get().(*OpenAIChatResponse)
	*resp = OpenAIChatResponse{}
	return resp
}

func releaseOpenAIResponse(resp *OpenAIChatResponse) {
	if resp != nil {
		openAIResponsePool.Put(resp)
	}
}

// OpenAIProvider implements the Provider interface for OpenAI's chat API.
type OpenAIProvider struct {
	logger schemas.Logger
	client *fasthttp.Client
}

// NewOpenAIProvider creates a new OpenAI provider instance with a bounded
// HTTP client.
func NewOpenAIProvider(logger schemas.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		logger: logger,
		client: &fasthttp.Client{
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			MaxConnsPerHost: 64,
		},
	}
}

// GetProviderKey returns the provider identifier for OpenAI.
func (provider *OpenAIProvider) GetProviderKey() schemas.ModelProvider {
	return schemas.OpenAI
}

// GenerateText performs a single chat completion request against the OpenAI
// API and returns the first choice's content.
func (provider *OpenAIProvider) GenerateText(ctx context.Context, key, baseURL, model, prompt string, settings schemas.GlobalSettings) (string, *schemas.ProviderError) {
	requestBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
		"temperature": settings.Temperature,
		"max_tokens":  settings.MaxTokens,
	}

	jsonBody, err := sonic.Marshal(requestBody)
	if err != nil {
		return "", &schemas.ProviderError{
			Provider: schemas.OpenAI,
			Message:  "failed to marshal request body",
			Err:      err,
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(resolveBaseURL(baseURL, openAIDefaultBaseURL) + "/v1/chat/completions")
	req.Header.SetMethod("POST")
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	req.SetBody(jsonBody)

	if providerErr := makeRequestWithContext(ctx, schemas.OpenAI, provider.client, req, resp); providerErr != nil {
		return "", providerErr
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		provider.logger.Debug(fmt.Sprintf("error from openai provider: status %d", resp.StatusCode()))

		var errorResp OpenAIError
		providerErr := handleProviderAPIError(schemas.OpenAI, resp, &errorResp)
		if errorResp.Error.Message != "" {
			providerErr.Message = errorResp.Error.Message
		}
		return "", providerErr
	}

	response := acquireOpenAIResponse()
	defer releaseOpenAIResponse(response)

	if err := sonic.Unmarshal(resp.Body(), response); err != nil {
		return "", &schemas.ProviderError{
			Provider: schemas.OpenAI,
			Message:  "failed to unmarshal provider response",
			Err:      err,
		}
	}

	if len(response.Choices) == 0 {
		return "", newEmptyCompletionError(schemas.OpenAI)
	}
	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", newEmptyCompletionError(schemas.OpenAI)
	}
	return text, nil
}

// TestConnection lists models with the candidate key as a lightweight
// authenticated health check.
func (provider *OpenAIProvider) TestConnection(ctx context.Context, key, baseURL string) *schemas.ProviderError {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(resolveBaseURL(baseURL, openAIDefaultBaseURL) + "/v1/models")
	req.Header.SetMethod("GET")
	req.Header.Set("Authorization", "Bearer "+key)

	if providerErr := makeRequestWithContext(ctx, schemas.OpenAI, provider.client, req, resp); providerErr != nil {
		return providerErr
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		var errorResp OpenAIError
		providerErr := handleProviderAPIError(schemas.OpenAI, resp, &errorResp)
		if errorResp.Error.Message != "" {
			providerErr.Message = errorResp.Error.Message
		}
		return providerErr
	}
	return nil
}

// resolveBaseURL prefers the configured base URL, trimming any trailing slash.
func resolveBaseURL(configured, fallback string) string {
	if configured == "" {
		return fallback
	}
	return strings.TrimRight(configured, "/")
}
