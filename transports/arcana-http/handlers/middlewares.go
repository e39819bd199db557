package handlers

import (
	"fmt"
	"time"

	"github.com/arcanahq/arcana/schemas"
	"github.com/valyala/fasthttp"
)

// Middleware wraps a fasthttp handler with cross-cutting behavior.
type Middleware func(next fasthttp.RequestHandler) fasthttp.RequestHandler

// ChainMiddlewares applies middlewares to a handler in declaration order.
func ChainMiddlewares(handler fasthttp.RequestHandler, middlewares ...Middleware) fasthttp.RequestHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// RecoverMiddleware converts handler panics into a 500 envelope so a single
// bad request cannot take the server down.
func RecoverMiddleware(logger schemas.Logger) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(fmt.Errorf("panic in handler for %s: %v", ctx.Path(), r))
					SendError(ctx, fasthttp.StatusInternalServerError, "Internal server error", logger)
				}
			}()
			next(ctx)
		}
	}
}

// RequestLogMiddleware logs method, path, status and latency for every request.
func RequestLogMiddleware(logger schemas.Logger) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			logger.Debug(fmt.Sprintf("%s %s -> %d (%s)",
				ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start)))
		}
	}
}
