package configstore

import (
	"context"
	"errors"
	"time"

	"github.com/arcanahq/arcana/configstore/tables"
	"github.com/arcanahq/arcana/schemas"
	"gorm.io/gorm"
)

// RDBConfigStore represents a configuration store that uses a relational database.
type RDBConfigStore struct {
	db     *gorm.DB
	logger schemas.Logger
}

// Ping checks if the database is reachable.
func (s *RDBConfigStore) Ping(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}

// DB returns the underlying database connection.
func (s *RDBConfigStore) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *RDBConfigStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PROVIDER CONFIG METHODS

// UpsertProviderConfig writes the single row for a provider, preserving the
// original creation timestamp on update. The table hook encrypts the API key.
func (s *RDBConfigStore) UpsertProviderConfig(ctx context.Context, config schemas.ProviderConfig) error {
	row := tables.TableProviderConfig{
		Provider:             string(config.Provider),
		APIKey:               config.APIKey,
		BaseURL:              config.BaseURL,
		IsActive:             config.IsActive,
		MaxRequestsPerMinute: config.MaxRequestsPerMinute,
		Models:               config.Models,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tables.TableProviderConfig
		err := tx.Where("provider = ?", row.Provider).First(&existing).Error
		if err == nil {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			return tx.Save(&row).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&row).Error
	})
}

// GetProviderConfig retrieves the decrypted config for a provider.
func (s *RDBConfigStore) GetProviderConfig(ctx context.Context, provider schemas.ModelProvider) (*schemas.ProviderConfig, error) {
	var row tables.TableProviderConfig
	if err := s.db.WithContext(ctx).Where("provider = ?", string(provider)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	config := row.ToSchema()
	return &config, nil
}

// GetProviderConfigs retrieves all provider configs with decrypted API keys.
// For internal use only; display paths must use GetRedactedProviderConfigs.
func (s *RDBConfigStore) GetProviderConfigs(ctx context.Context) ([]schemas.ProviderConfig, error) {
	var rows []tables.TableProviderConfig
	if err := s.db.WithContext(ctx).Order("provider").Find(&rows).Error; err != nil {
		return nil, err
	}
	configs := make([]schemas.ProviderConfig, len(rows))
	for i := range rows {
		configs[i] = rows[i].ToSchema()
	}
	return configs, nil
}

// GetRedactedProviderConfigs retrieves all provider configs with the API key
// replaced by a fixed-length mask. The key column is never read, so the mask
// cannot leak any ciphertext or plaintext.
func (s *RDBConfigStore) GetRedactedProviderConfigs(ctx context.Context) ([]schemas.ProviderConfig, error) {
	var rows []tables.TableProviderConfig
	if err := s.db.WithContext(ctx).
		Select("id, provider, base_url, is_active, max_requests_per_minute, models_json, created_at, updated_at").
		Order("provider").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	configs := make([]schemas.ProviderConfig, len(rows))
	for i := range rows {
		config := rows[i].ToSchema()
		config.APIKey = RedactedKeyMask
		configs[i] = config
	}
	return configs, nil
}

// DeleteProviderConfig removes the row for a provider. Deleting a provider
// that was never configured is a no-op.
func (s *RDBConfigStore) DeleteProviderConfig(ctx context.Context, provider schemas.ModelProvider) error {
	return s.db.WithContext(ctx).Where("provider = ?", string(provider)).Delete(&tables.TableProviderConfig{}).Error
}

// FEATURE MAPPING METHODS

// ReplaceFeatureMappings replaces the whole routing list in its single row.
func (s *RDBConfigStore) ReplaceFeatureMappings(ctx context.Context, mappings []schemas.FeatureMapping) error {
	row := tables.TableFeatureMappings{Mappings: mappings}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&tables.TableFeatureMappings{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
}

// GetFeatureMappings reads the whole routing list. An absent row yields an
// empty list, not an error.
func (s *RDBConfigStore) GetFeatureMappings(ctx context.Context) ([]schemas.FeatureMapping, error) {
	var row tables.TableFeatureMappings
	if err := s.db.WithContext(ctx).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []schemas.FeatureMapping{}, nil
		}
		return nil, err
	}
	return row.Mappings, nil
}

// GLOBAL SETTINGS METHODS

// GetGlobalSettings reads the stored settings row. Returns nil when absent;
// callers substitute defaults.
func (s *RDBConfigStore) GetGlobalSettings(ctx context.Context) (*schemas.GlobalSettings, error) {
	var row tables.TableGlobalSettings
	if err := s.db.WithContext(ctx).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	settings := row.ToSchema()
	return &settings, nil
}

// UpdateGlobalSettings replaces the single settings row.
func (s *RDBConfigStore) UpdateGlobalSettings(ctx context.Context, settings schemas.GlobalSettings) error {
	row := tables.TableGlobalSettings{
		Temperature:    settings.Temperature,
		MaxTokens:      settings.MaxTokens,
		EnableFallback: settings.EnableFallback,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&tables.TableGlobalSettings{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
}

// PROMPT TEMPLATE METHODS

// GetPromptTemplate reads the admin-configured base prompt override.
// An absent row yields the empty string; callers fall back to the
// compiled-in default template.
func (s *RDBConfigStore) GetPromptTemplate(ctx context.Context) (string, error) {
	var row tables.TablePromptTemplate
	if err := s.db.WithContext(ctx).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.Content, nil
}

// UpdatePromptTemplate replaces the single prompt override row.
func (s *RDBConfigStore) UpdatePromptTemplate(ctx context.Context, content string) error {
	row := tables.TablePromptTemplate{Content: content}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&tables.TablePromptTemplate{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
}

// GUIDELINE METHODS

// CreateGuideline appends a new custom guideline row.
func (s *RDBConfigStore) CreateGuideline(ctx context.Context, guideline schemas.Guideline) error {
	row := tables.GuidelineFromSchema(guideline)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// GetGuidelines retrieves all custom guidelines ordered by creation time.
func (s *RDBConfigStore) GetGuidelines(ctx context.Context) ([]schemas.Guideline, error) {
	var rows []tables.TableGuideline
	if err := s.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	guidelines := make([]schemas.Guideline, len(rows))
	for i := range rows {
		guidelines[i] = rows[i].ToSchema()
	}
	return guidelines, nil
}

// GetGuideline retrieves a single custom guideline by id.
func (s *RDBConfigStore) GetGuideline(ctx context.Context, id string) (*schemas.Guideline, error) {
	var row tables.TableGuideline
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	guideline := row.ToSchema()
	return &guideline, nil
}

// UpdateGuideline overwrites an existing custom guideline, keeping its
// creation timestamp and refreshing the update timestamp.
func (s *RDBConfigStore) UpdateGuideline(ctx context.Context, id string, guideline schemas.Guideline) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tables.TableGuideline
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		row := tables.GuidelineFromSchema(guideline)
		row.ID = id
		row.CreatedAt = existing.CreatedAt
		row.UpdatedAt = time.Now()
		return tx.Save(&row).Error
	})
}

// DeleteGuideline removes a custom guideline row.
func (s *RDBConfigStore) DeleteGuideline(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&tables.TableGuideline{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetGuidelineActive flips the active flag on a custom guideline.
func (s *RDBConfigStore) SetGuidelineActive(ctx context.Context, id string, isActive bool) error {
	result := s.db.WithContext(ctx).Model(&tables.TableGuideline{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": isActive, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
