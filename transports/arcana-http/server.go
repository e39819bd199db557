package main

import (
	"fmt"

	arcana "github.com/arcanahq/arcana"
	"github.com/arcanahq/arcana/configstore"
	"github.com/arcanahq/arcana/schemas"
	"github.com/arcanahq/arcana/transports/arcana-http/handlers"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// buildRouter wires every handler onto a router with the shared middleware
// chain applied.
func buildRouter(client *arcana.Arcana, store configstore.ConfigStore, logger schemas.Logger) *router.Router {
	r := router.New()

	middlewares := []handlers.Middleware{
		handlers.RecoverMiddleware(logger),
		handlers.RequestLogMiddleware(logger),
	}

	providerHandler := handlers.NewProviderHandler(store, client, logger)
	providerHandler.RegisterRoutes(r, middlewares...)

	guidelineHandler := handlers.NewGuidelineHandler(client.Catalog(), logger)
	guidelineHandler.RegisterRoutes(r, middlewares...)

	interpretationHandler := handlers.NewInterpretationHandler(client, logger)
	interpretationHandler.RegisterRoutes(r, middlewares...)

	r.GET("/api/health", handlers.ChainMiddlewares(func(ctx *fasthttp.RequestCtx) {
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				handlers.SendError(ctx, fasthttp.StatusServiceUnavailable, "Config store is unreachable", logger)
				return
			}
		}
		handlers.SendMessage(ctx, "ok", logger)
	}, middlewares...))

	return r
}

// newServer builds the fasthttp server around the wired router.
func newServer(client *arcana.Arcana, store configstore.ConfigStore, logger schemas.Logger) *fasthttp.Server {
	r := buildRouter(client, store, logger)
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		handlers.SendError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("No route for %s %s", ctx.Method(), ctx.Path()), logger)
	}
	return &fasthttp.Server{
		Handler:            r.Handler,
		Name:               "arcana-http",
		MaxRequestBodySize: 4 * 1024 * 1024,
	}
}
