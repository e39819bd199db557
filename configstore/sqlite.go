package configstore

import (
	"context"
	"fmt"
	"os"

	"github.com/arcanahq/arcana/schemas"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteConfig represents the configuration for a SQLite database.
type SQLiteConfig struct {
	Path string `json:"path"`
}

// newSqliteConfigStore opens (creating if necessary) the SQLite database and
// migrates all tables.
func newSqliteConfigStore(ctx context.Context, config *SQLiteConfig, logger schemas.Logger) (ConfigStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if config.Path != ":memory:" {
		if _, err := os.Stat(config.Path); os.IsNotExist(err) {
			f, err := os.Create(config.Path)
			if err != nil {
				return nil, err
			}
			_ = f.Close()
		}
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=60000&_foreign_keys=1", config.Path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(allTables...); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	logger.Debug("sqlite config store opened at " + config.Path)
	return &RDBConfigStore{db: db, logger: logger}, nil
}
