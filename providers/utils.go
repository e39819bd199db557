// Package providers implements the generative-AI provider clients and their
// shared utility functions.
package providers

import (
	"context"
	"fmt"

	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

// Provider is the capability every member of the fallback chain satisfies:
// one text generation attempt and one lightweight connectivity check.
// Implementations make a single attempt per call; retries and fallback are
// the orchestrator's concern.
type Provider interface {
	// GetProviderKey returns the provider's identifier.
	GetProviderKey() schemas.ModelProvider
	// GenerateText performs one completion attempt and returns the text.
	GenerateText(ctx context.Context, key, baseURL, model, prompt string, settings schemas.GlobalSettings) (string, *schemas.ProviderError)
	// TestConnection performs a lightweight authenticated health check.
	TestConnection(ctx context.Context, key, baseURL string) *schemas.ProviderError
}

// makeRequestWithContext executes an HTTP request with context cancellation
// support. client.Do blocks, so it runs in a goroutine racing ctx.Done().
func makeRequestWithContext(ctx context.Context, provider schemas.ModelProvider, client *fasthttp.Client, req *fasthttp.Request, resp *fasthttp.Response) *schemas.ProviderError {
	errChan := make(chan error, 1)

	go func() {
		errChan <- client.Do(req, resp)
	}()

	select {
	case <-ctx.Done():
		return &schemas.ProviderError{
			Provider: provider,
			Message:  "request cancelled or timed out by context",
			Err:      ctx.Err(),
		}
	case err := <-errChan:
		if err != nil {
			return &schemas.ProviderError{
				Provider: provider,
				Message:  "provider request failed",
				Err:      err,
			}
		}
		// Caller checks resp.StatusCode() for HTTP-level errors.
		return nil
	}
}

// handleProviderAPIError parses a non-200 response body into the provider's
// error shape and wraps it with the status code. The raw body never leaves
// this package.
func handleProviderAPIError(provider schemas.ModelProvider, resp *fasthttp.Response, errorResp any) *schemas.ProviderError {
	statusCode := resp.StatusCode()

	if err := sonic.Unmarshal(resp.Body(), errorResp); err != nil {
		return &schemas.ProviderError{
			Provider:   provider,
			Message:    fmt.Sprintf("provider returned status %d with unparseable body", statusCode),
			StatusCode: &statusCode,
			Err:        err,
		}
	}

	return &schemas.ProviderError{
		Provider:   provider,
		Message:    fmt.Sprintf("provider returned status %d", statusCode),
		StatusCode: &statusCode,
	}
}

// newEmptyCompletionError marks a structurally valid response that carried no
// usable text; the fallback chain treats it like any other failure.
func newEmptyCompletionError(provider schemas.ModelProvider) *schemas.ProviderError {
	return &schemas.ProviderError{
		Provider: provider,
		Message:  "provider returned an empty completion",
	}
}
