package tables

import (
	"fmt"
	"time"

	"github.com/arcanahq/arcana/encrypt"
	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

const (
	EncryptionStatusPlainText = "plain_text"
	EncryptionStatusEncrypted = "encrypted"
)

// TableProviderConfig represents a provider configuration in the database.
// There is at most one row per provider identity (uniqueIndex on Provider).
// The API key column holds ciphertext whenever encryption is enabled.
type TableProviderConfig struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Provider             string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"provider"`
	APIKey               string    `gorm:"type:text;not null" json:"-"`
	BaseURL              string    `gorm:"type:text" json:"base_url,omitempty"`
	IsActive             bool      `gorm:"default:true" json:"is_active"`
	MaxRequestsPerMinute int       `gorm:"default:60" json:"max_requests_per_minute"`
	ModelsJSON           string    `gorm:"type:text" json:"-"` // JSON serialized []schemas.Model
	CreatedAt            time.Time `gorm:"index;not null" json:"created_at"`
	UpdatedAt            time.Time `gorm:"index;not null" json:"updated_at"`

	EncryptionStatus string `gorm:"type:varchar(20);default:'plain_text'" json:"-"`

	// Virtual fields for runtime use (not stored in DB)
	Models []schemas.Model `gorm:"-" json:"models"`
}

func (TableProviderConfig) TableName() string { return "config_providers" }

// BeforeSave serializes the selected models into the JSON column and encrypts
// the API key before the row is written.
func (p *TableProviderConfig) BeforeSave(tx *gorm.DB) error {
	if p.Models != nil {
		data, err := sonic.Marshal(p.Models)
		if err != nil {
			return err
		}
		p.ModelsJSON = string(data)
	} else {
		p.ModelsJSON = "[]"
	}

	if encrypt.IsEnabled() && p.APIKey != "" {
		encrypted, err := encrypt.Encrypt(p.APIKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt api key: %w", err)
		}
		p.APIKey = encrypted
		p.EncryptionStatus = EncryptionStatusEncrypted
	} else {
		p.EncryptionStatus = EncryptionStatusPlainText
	}

	return nil
}

// AfterFind decrypts the API key (if encrypted) and deserializes the models
// column back into the runtime slice after the row is read.
func (p *TableProviderConfig) AfterFind(tx *gorm.DB) error {
	if p.EncryptionStatus == EncryptionStatusEncrypted && p.APIKey != "" {
		decrypted, err := encrypt.Decrypt(p.APIKey)
		if err != nil {
			return fmt.Errorf("failed to decrypt api key: %w", err)
		}
		p.APIKey = decrypted
	}

	if p.ModelsJSON != "" {
		if err := sonic.Unmarshal([]byte(p.ModelsJSON), &p.Models); err != nil {
			return err
		}
	} else {
		p.Models = []schemas.Model{}
	}

	return nil
}

// ToSchema converts the row into the runtime provider config.
func (p *TableProviderConfig) ToSchema() schemas.ProviderConfig {
	models := p.Models
	if models == nil {
		models = []schemas.Model{}
	}
	return schemas.ProviderConfig{
		Provider:             schemas.ModelProvider(p.Provider),
		APIKey:               p.APIKey,
		BaseURL:              p.BaseURL,
		IsActive:             p.IsActive,
		MaxRequestsPerMinute: p.MaxRequestsPerMinute,
		Models:               models,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
