package configstore

import (
	"context"
	"fmt"

	"github.com/arcanahq/arcana/schemas"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresConfig represents the configuration for a Postgres database.
type PostgresConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"db_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxIdleConns int    `json:"max_idle_conns,omitempty"`
	MaxOpenConns int    `json:"max_open_conns,omitempty"`
}

// newPostgresConfigStore opens the Postgres database and migrates all tables.
func newPostgresConfigStore(ctx context.Context, config *PostgresConfig, logger schemas.Logger) (ConfigStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Host == "" {
		return nil, fmt.Errorf("postgres host is required")
	}
	if config.Port == "" {
		return nil, fmt.Errorf("postgres port is required")
	}
	if config.User == "" {
		return nil, fmt.Errorf("postgres user is required")
	}
	if config.DBName == "" {
		return nil, fmt.Errorf("postgres db name is required")
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxIdleConns := config.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	maxOpenConns := config.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 25
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	if err := db.WithContext(ctx).AutoMigrate(allTables...); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	return &RDBConfigStore{db: db, logger: logger}, nil
}
