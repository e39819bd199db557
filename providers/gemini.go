// This file contains the Google Gemini provider implementation.
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"

// GeminiResponse represents the response structure from the Gemini
// generateContent API, reduced to the fields the fallback chain consumes.
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
			Role string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// GeminiError represents the error response structure from the Gemini API.
type GeminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiProvider implements the Provider interface for Google's Gemini API.
type GeminiProvider struct {
	logger schemas.Logger
	client *fasthttp.Client
}

// NewGeminiProvider creates a new Gemini provider instance with a bounded
// HTTP client.
func NewGeminiProvider(logger schemas.Logger) *GeminiProvider {
	return &GeminiProvider{
		logger: logger,
		client: &fasthttp.Client{
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			MaxConnsPerHost: 64,
		},
	}
}

// GetProviderKey returns the provider identifier for Gemini.
func (provider *GeminiProvider) GetProviderKey() schemas.ModelProvider {
	return schemas.Gemini
}

// GenerateText performs a single generateContent request against the Gemini
// API and returns the first candidate's concatenated text parts.
func (provider *GeminiProvider) GenerateText(ctx context.Context, key, baseURL, model, prompt string, settings schemas.GlobalSettings) (string, *schemas.ProviderError) {
	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     settings.Temperature,
			"maxOutputTokens": settings.MaxTokens,
		},
	}

	jsonBody, err := sonic.Marshal(requestBody)
	if err != nil {
		return "", &schemas.ProviderError{
			Provider: schemas.Gemini,
			Message:  "failed to marshal request body",
			Err:      err,
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		resolveBaseURL(baseURL, geminiDefaultBaseURL), model, key)
	req.SetRequestURI(uri)
	req.Header.SetMethod("POST")
	req.Header.SetContentType("application/json")
	req.SetBody(jsonBody)

	if providerErr := makeRequestWithContext(ctx, schemas.Gemini, provider.client, req, resp); providerErr != nil {
		return "", providerErr
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		provider.logger.Debug(fmt.Sprintf("error from gemini provider: status %d", resp.StatusCode()))

		var errorResp GeminiError
		providerErr := handleProviderAPIError(schemas.Gemini, resp, &errorResp)
		if errorResp.Error.Message != "" {
			providerErr.Message = errorResp.Error.Message
		}
		return "", providerErr
	}

	var response GeminiResponse
	if err := sonic.Unmarshal(resp.Body(), &response); err != nil {
		return "", &schemas.ProviderError{
			Provider: schemas.Gemini,
			Message:  "failed to unmarshal provider response",
			Err:      err,
		}
	}

	if len(response.Candidates) == 0 {
		return "", newEmptyCompletionError(schemas.Gemini)
	}
	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", newEmptyCompletionError(schemas.Gemini)
	}
	return text, nil
}

// TestConnection lists models with the candidate key as a lightweight
// authenticated health check.
func (provider *GeminiProvider) TestConnection(ctx context.Context, key, baseURL string) *schemas.ProviderError {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(resolveBaseURL(baseURL, geminiDefaultBaseURL) + "/v1beta/models?key=" + key)
	req.Header.SetMethod("GET")

	if providerErr := makeRequestWithContext(ctx, schemas.Gemini, provider.client, req, resp); providerErr != nil {
		return providerErr
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		var errorResp GeminiError
		providerErr := handleProviderAPIError(schemas.Gemini, resp, &errorResp)
		if errorResp.Error.Message != "" {
			providerErr.Message = errorResp.Error.Message
		}
		return providerErr
	}
	return nil
}
