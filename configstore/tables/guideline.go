package tables

import (
	"time"

	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// TableGuideline represents a user-authored interpretation guideline in the
// database. System guidelines are compiled into the binary and never stored.
type TableGuideline struct {
	ID                     string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	SpreadID               string    `gorm:"type:varchar(100);index;not null" json:"spread_id"`
	StyleID                string    `gorm:"type:varchar(100);index;not null" json:"style_id"`
	Name                   string    `gorm:"type:varchar(255);not null" json:"name"`
	Description            string    `gorm:"type:text" json:"description"`
	GeneralApproach        string    `gorm:"type:text" json:"general_approach"`
	PositionsJSON          string    `gorm:"type:text" json:"-"` // JSON serialized []schemas.PositionGuide
	KeyFocusAreasJSON      string    `gorm:"type:text" json:"-"` // JSON serialized []string
	InterpretationTipsJSON string    `gorm:"type:text" json:"-"` // JSON serialized []string
	Difficulty             string    `gorm:"type:varchar(50)" json:"difficulty"`
	EstimatedTime          string    `gorm:"type:varchar(50)" json:"estimated_time"`
	IsActive               bool      `gorm:"default:true" json:"is_active"`
	CreatedAt              time.Time `gorm:"index;not null" json:"created_at"`
	UpdatedAt              time.Time `gorm:"index;not null" json:"updated_at"`

	// Virtual fields for runtime use (not stored in DB)
	Positions          []schemas.PositionGuide `gorm:"-" json:"positions"`
	KeyFocusAreas      []string                `gorm:"-" json:"key_focus_areas"`
	InterpretationTips []string                `gorm:"-" json:"interpretation_tips"`
}

func (TableGuideline) TableName() string { return "guidelines" }

// BeforeSave serializes the nested guideline structures into JSON columns.
func (g *TableGuideline) BeforeSave(tx *gorm.DB) error {
	if g.Positions != nil {
		data, err := sonic.Marshal(g.Positions)
		if err != nil {
			return err
		}
		g.PositionsJSON = string(data)
	} else {
		g.PositionsJSON = "[]"
	}
	if g.KeyFocusAreas != nil {
		data, err := sonic.Marshal(g.KeyFocusAreas)
		if err != nil {
			return err
		}
		g.KeyFocusAreasJSON = string(data)
	} else {
		g.KeyFocusAreasJSON = "[]"
	}
	if g.InterpretationTips != nil {
		data, err := sonic.Marshal(g.InterpretationTips)
		if err != nil {
			return err
		}
		g.InterpretationTipsJSON = string(data)
	} else {
		g.InterpretationTipsJSON = "[]"
	}
	return nil
}

// AfterFind deserializes the JSON columns back into the runtime structures.
func (g *TableGuideline) AfterFind(tx *gorm.DB) error {
	if g.PositionsJSON != "" {
		if err := sonic.Unmarshal([]byte(g.PositionsJSON), &g.Positions); err != nil {
			return err
		}
	} else {
		g.Positions = []schemas.PositionGuide{}
	}
	if g.KeyFocusAreasJSON != "" {
		if err := sonic.Unmarshal([]byte(g.KeyFocusAreasJSON), &g.KeyFocusAreas); err != nil {
			return err
		}
	} else {
		g.KeyFocusAreas = []string{}
	}
	if g.InterpretationTipsJSON != "" {
		if err := sonic.Unmarshal([]byte(g.InterpretationTipsJSON), &g.InterpretationTips); err != nil {
			return err
		}
	} else {
		g.InterpretationTips = []string{}
	}
	return nil
}

// ToSchema converts the row into the runtime guideline.
func (g *TableGuideline) ToSchema() schemas.Guideline {
	createdAt := g.CreatedAt
	updatedAt := g.UpdatedAt
	return schemas.Guideline{
		ID:                 g.ID,
		SpreadID:           g.SpreadID,
		StyleID:            g.StyleID,
		Name:               g.Name,
		Description:        g.Description,
		GeneralApproach:    g.GeneralApproach,
		Positions:          g.Positions,
		KeyFocusAreas:      g.KeyFocusAreas,
		InterpretationTips: g.InterpretationTips,
		Difficulty:         g.Difficulty,
		EstimatedTime:      g.EstimatedTime,
		IsActive:           g.IsActive,
		CreatedAt:          &createdAt,
		UpdatedAt:          &updatedAt,
	}
}

// GuidelineFromSchema builds a row from the runtime guideline.
func GuidelineFromSchema(g schemas.Guideline) TableGuideline {
	row := TableGuideline{
		ID:                 g.ID,
		SpreadID:           g.SpreadID,
		StyleID:            g.StyleID,
		Name:               g.Name,
		Description:        g.Description,
		GeneralApproach:    g.GeneralApproach,
		Positions:          g.Positions,
		KeyFocusAreas:      g.KeyFocusAreas,
		InterpretationTips: g.InterpretationTips,
		Difficulty:         g.Difficulty,
		EstimatedTime:      g.EstimatedTime,
		IsActive:           g.IsActive,
	}
	if g.CreatedAt != nil {
		row.CreatedAt = *g.CreatedAt
	}
	if g.UpdatedAt != nil {
		row.UpdatedAt = *g.UpdatedAt
	}
	return row
}
