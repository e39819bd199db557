package configstore

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ConfigStoreType represents the type of config store.
type ConfigStoreType string

const (
	ConfigStoreTypeSQLite   ConfigStoreType = "sqlite"
	ConfigStoreTypePostgres ConfigStoreType = "postgres"
)

// Config represents the configuration for the config store.
type Config struct {
	Enabled bool            `json:"enabled"`
	Type    ConfigStoreType `json:"type"`
	Config  any             `json:"config"`
}

// UnmarshalJSON unmarshals the config from JSON, dispatching the nested
// config payload on the store type and resolving env. prefixed values.
func (c *Config) UnmarshalJSON(data []byte) error {
	type TempConfig struct {
		Enabled bool            `json:"enabled"`
		Type    ConfigStoreType `json:"type"`
		Config  json.RawMessage `json:"config"`
	}

	var temp TempConfig
	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("failed to unmarshal config store config: %w", err)
	}

	c.Enabled = temp.Enabled
	c.Type = temp.Type

	if !temp.Enabled {
		c.Config = nil
		return nil
	}

	switch temp.Type {
	case ConfigStoreTypeSQLite:
		var sqliteConfig SQLiteConfig
		if err := json.Unmarshal(temp.Config, &sqliteConfig); err != nil {
			return fmt.Errorf("failed to unmarshal sqlite config: %w", err)
		}
		c.Config = &sqliteConfig
	case ConfigStoreTypePostgres:
		var postgresConfig PostgresConfig
		if err := json.Unmarshal(temp.Config, &postgresConfig); err != nil {
			return fmt.Errorf("failed to unmarshal postgres config: %w", err)
		}
		for name, field := range map[string]*string{
			"host":     &postgresConfig.Host,
			"port":     &postgresConfig.Port,
			"user":     &postgresConfig.User,
			"password": &postgresConfig.Password,
			"db name":  &postgresConfig.DBName,
			"ssl mode": &postgresConfig.SSLMode,
		} {
			resolved, err := processEnvValue(*field)
			if err != nil {
				return fmt.Errorf("failed to process env value for %s: %w", name, err)
			}
			*field = resolved
		}
		c.Config = &postgresConfig
	default:
		return fmt.Errorf("unknown config store type: %s", temp.Type)
	}

	return nil
}

// processEnvValue resolves a value that might be an environment variable
// reference of the form "env.NAME".
func processEnvValue(value string) (string, error) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "env.") {
		return value, nil
	}
	envKey := strings.TrimSpace(strings.TrimPrefix(v, "env."))
	if envKey == "" {
		return "", fmt.Errorf("environment variable name missing in %q", value)
	}
	if envValue, ok := os.LookupEnv(envKey); ok {
		return envValue, nil
	}
	return "", fmt.Errorf("environment variable %s not found", envKey)
}
