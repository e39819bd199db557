// Package handlers provides HTTP request handlers for the Arcana HTTP transport.
// This file contains common utility functions used across all handlers.
package handlers

import (
	"fmt"

	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

// APIResponse is the uniform envelope returned by every endpoint. Internal
// errors are logged with context but callers only ever see this shape.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SendJSON sends a success envelope with 200 OK status
func SendJSON(ctx *fasthttp.RequestCtx, data interface{}, logger schemas.Logger) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")

	body, err := sonic.Marshal(APIResponse{Success: true, Data: data})
	if err != nil {
		logger.Warn(fmt.Sprintf("Failed to encode JSON response: %v", err))
		SendError(ctx, fasthttp.StatusInternalServerError, "Failed to encode response", logger)
		return
	}
	ctx.SetBody(body)
}

// SendMessage sends a success envelope carrying only a user-facing message
func SendMessage(ctx *fasthttp.RequestCtx, message string, logger schemas.Logger) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")

	body, err := sonic.Marshal(APIResponse{Success: true, Message: message})
	if err != nil {
		logger.Warn(fmt.Sprintf("Failed to encode JSON response: %v", err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetBody(body)
}

// SendError sends a failure envelope with the given status code
func SendError(ctx *fasthttp.RequestCtx, statusCode int, message string, logger schemas.Logger) {
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")

	body, err := sonic.Marshal(APIResponse{Success: false, Message: message})
	if err != nil {
		logger.Warn(fmt.Sprintf("Failed to encode error response: %v", err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("failed to encode error response")
		return
	}
	ctx.SetBody(body)
}
