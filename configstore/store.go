// Package configstore provides the persistent configuration store for Arcana:
// provider credentials, feature mappings, global settings, the base prompt
// override, and user-authored interpretation guidelines.
package configstore

import (
	"context"
	"fmt"

	"github.com/arcanahq/arcana/configstore/tables"
	"github.com/arcanahq/arcana/schemas"
	"gorm.io/gorm"
)

// ConfigStore is the interface for the config store.
type ConfigStore interface {
	// Health check
	Ping(ctx context.Context) error

	// Provider config CRUD
	UpsertProviderConfig(ctx context.Context, config schemas.ProviderConfig) error
	GetProviderConfig(ctx context.Context, provider schemas.ModelProvider) (*schemas.ProviderConfig, error)
	GetProviderConfigs(ctx context.Context) ([]schemas.ProviderConfig, error)
	GetRedactedProviderConfigs(ctx context.Context) ([]schemas.ProviderConfig, error)
	DeleteProviderConfig(ctx context.Context, provider schemas.ModelProvider) error

	// Feature mapping CRUD (whole-list replace/read against a single row)
	ReplaceFeatureMappings(ctx context.Context, mappings []schemas.FeatureMapping) error
	GetFeatureMappings(ctx context.Context) ([]schemas.FeatureMapping, error)

	// Global settings CRUD
	GetGlobalSettings(ctx context.Context) (*schemas.GlobalSettings, error)
	UpdateGlobalSettings(ctx context.Context, settings schemas.GlobalSettings) error

	// Prompt template override CRUD
	GetPromptTemplate(ctx context.Context) (string, error)
	UpdatePromptTemplate(ctx context.Context, content string) error

	// Custom guideline CRUD
	CreateGuideline(ctx context.Context, guideline schemas.Guideline) error
	GetGuidelines(ctx context.Context) ([]schemas.Guideline, error)
	GetGuideline(ctx context.Context, id string) (*schemas.Guideline, error)
	UpdateGuideline(ctx context.Context, id string, guideline schemas.Guideline) error
	DeleteGuideline(ctx context.Context, id string) error
	SetGuidelineActive(ctx context.Context, id string, isActive bool) error

	// DB returns the underlying database connection.
	DB() *gorm.DB

	// Cleanup
	Close(ctx context.Context) error
}

// RedactedKeyMask is the fixed-length mask substituted for API keys in
// display-only listings. It carries no information about the original key.
const RedactedKeyMask = "************"

// allTables lists every table auto-migrated on store startup.
var allTables = []any{
	&tables.TableProviderConfig{},
	&tables.TableGuideline{},
	&tables.TableFeatureMappings{},
	&tables.TableGlobalSettings{},
	&tables.TablePromptTemplate{},
}

// NewConfigStore creates a new config store based on the configuration.
func NewConfigStore(ctx context.Context, config *Config, logger schemas.Logger) (ConfigStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if !config.Enabled {
		return nil, nil
	}
	switch config.Type {
	case ConfigStoreTypeSQLite:
		if sqliteConfig, ok := config.Config.(*SQLiteConfig); ok {
			return newSqliteConfigStore(ctx, sqliteConfig, logger)
		}
		return nil, fmt.Errorf("invalid sqlite config: %T", config.Config)
	case ConfigStoreTypePostgres:
		if postgresConfig, ok := config.Config.(*PostgresConfig); ok {
			return newPostgresConfigStore(ctx, postgresConfig, logger)
		}
		return nil, fmt.Errorf("invalid postgres config: %T", config.Config)
	}
	return nil, fmt.Errorf("unsupported config store type: %s", config.Type)
}
