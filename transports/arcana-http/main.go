// Package main provides the Arcana HTTP service using FastHTTP. It exposes
// endpoints for provider configuration management, guideline catalog CRUD and
// queries, and interpretation generation with multi-provider fallback.
//
// Configuration is handled through a JSON config file and environment
// variables:
//   - Use -config flag to specify the config file location
//   - Use -host and -port flags to bind the listener (defaults: 0.0.0.0:8080)
//   - Use -log-level and -log-style to tune logging output
//   - ARCANA_ENCRYPTION_KEY enables at-rest encryption of stored API keys
//   - OPENAI_API_KEY / GEMINI_API_KEY act as credential fallbacks when no
//     stored provider config exists
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	arcana "github.com/arcanahq/arcana"
	"github.com/arcanahq/arcana/configstore"
	"github.com/arcanahq/arcana/encrypt"
	"github.com/arcanahq/arcana/guidelines"
	"github.com/arcanahq/arcana/schemas"
	"github.com/joho/godotenv"
)

// Command line flags
var (
	host       string // Host to bind the server to
	port       string // Port to run the server on
	configPath string // Path to the config file
	logLevel   string // Minimum log level
	logStyle   string // Log output style: json or pretty
)

func init() {
	flag.StringVar(&host, "host", "0.0.0.0", "Host to bind the server to")
	flag.StringVar(&port, "port", "8080", "Port to run the server on")
	flag.StringVar(&configPath, "config", "", "Path to the config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&logStyle, "log-style", "json", "Log output style (json, pretty)")
	flag.Parse()
}

// appConfig is the shape of the JSON config file.
type appConfig struct {
	ConfigStore *configstore.Config `json:"config_store"`
}

func loadAppConfig(path string) (*appConfig, error) {
	if path == "" {
		return &appConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config appConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

func main() {
	// Best effort; the file is optional in containerized deployments.
	_ = godotenv.Load()

	logger := arcana.NewDefaultLogger(schemas.LogLevel(logLevel))
	logger.SetOutputType(arcana.LoggerOutputType(logStyle))

	encrypt.Init(os.Getenv("ARCANA_ENCRYPTION_KEY"), logger)

	config, err := loadAppConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store configstore.ConfigStore
	if config.ConfigStore != nil {
		store, err = configstore.NewConfigStore(ctx, config.ConfigStore, logger)
		if err != nil {
			log.Fatalf("failed to initialize config store: %v", err)
		}
	}
	if store == nil {
		logger.Warn("config store is disabled; credentials come from the environment and guidelines are defaults only")
	}

	catalog := guidelines.NewCatalog(store, logger)
	client := arcana.Init(arcana.ClientConfig{
		Store:   store,
		Catalog: catalog,
		Logger:  logger,
	})

	server := newServer(client, store, logger)
	addr := fmt.Sprintf("%s:%s", host, port)

	go func() {
		logger.Info(fmt.Sprintf("arcana-http listening on %s", addr))
		if err := server.ListenAndServe(addr); err != nil {
			logger.Error(fmt.Errorf("server stopped: %w", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error(fmt.Errorf("graceful shutdown failed: %w", err))
	}
	if store != nil {
		if err := store.Close(shutdownCtx); err != nil {
			logger.Error(fmt.Errorf("failed to close config store: %w", err))
		}
	}
}
