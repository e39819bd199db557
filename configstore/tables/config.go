package tables

import (
	"time"

	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// TableFeatureMappings holds the whole feature-to-provider/model routing list
// in a single row. Reads and writes always replace the entire list.
type TableFeatureMappings struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MappingsJSON string    `gorm:"type:text" json:"-"` // JSON serialized []schemas.FeatureMapping
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`

	// Virtual field for runtime use (not stored in DB)
	Mappings []schemas.FeatureMapping `gorm:"-" json:"mappings"`
}

func (TableFeatureMappings) TableName() string { return "config_feature_mappings" }

func (m *TableFeatureMappings) BeforeSave(tx *gorm.DB) error {
	if m.Mappings != nil {
		data, err := sonic.Marshal(m.Mappings)
		if err != nil {
			return err
		}
		m.MappingsJSON = string(data)
	} else {
		m.MappingsJSON = "[]"
	}
	return nil
}

func (m *TableFeatureMappings) AfterFind(tx *gorm.DB) error {
	if m.MappingsJSON != "" {
		if err := sonic.Unmarshal([]byte(m.MappingsJSON), &m.Mappings); err != nil {
			return err
		}
	} else {
		m.Mappings = []schemas.FeatureMapping{}
	}
	return nil
}

// TableGlobalSettings holds the single row of request parameters shared by
// all provider calls. Absence of the row means defaults apply.
type TableGlobalSettings struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// No column defaults here: GORM skips zero-valued fields that carry a
	// default tag on Create, which would turn a stored false/0 into the
	// default. Defaults live in schemas.DefaultGlobalSettings instead.
	Temperature    float64   `json:"temperature"`
	MaxTokens      int       `json:"max_tokens"`
	EnableFallback bool      `json:"enable_fallback"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (TableGlobalSettings) TableName() string { return "config_global_settings" }

// ToSchema converts the row into the runtime settings.
func (s *TableGlobalSettings) ToSchema() schemas.GlobalSettings {
	return schemas.GlobalSettings{
		Temperature:    s.Temperature,
		MaxTokens:      s.MaxTokens,
		EnableFallback: s.EnableFallback,
	}
}

// TablePromptTemplate holds the admin-configurable base prompt override.
// A single row; absence means the compiled-in default template is used.
type TablePromptTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TablePromptTemplate) TableName() string { return "config_prompt_templates" }
