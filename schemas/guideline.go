package schemas

import "time"

// PositionGuide describes how to read a single card position within a spread.
type PositionGuide struct {
	Position     string   `json:"position"`
	Focus        string   `json:"focus"`
	KeyQuestions []string `json:"key_questions"`
}

// Guideline is a structured interpretation template tied to one spread type
// and one interpretive style. System guidelines are compiled into the binary
// and immutable; custom guidelines live in the config store.
type Guideline struct {
	ID                 string          `json:"id"`
	SpreadID           string          `json:"spread_id"`
	StyleID            string          `json:"style_id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	GeneralApproach    string          `json:"general_approach"`
	Positions          []PositionGuide `json:"positions"`
	KeyFocusAreas      []string        `json:"key_focus_areas"`
	InterpretationTips []string        `json:"interpretation_tips"`
	Difficulty         string          `json:"difficulty"`
	EstimatedTime      string          `json:"estimated_time"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          *time.Time      `json:"created_at,omitempty"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
}

// CatalogStats describes the state of the merged guideline snapshot.
type CatalogStats struct {
	Total       int       `json:"total"`
	System      int       `json:"system"`
	Custom      int       `json:"custom"`
	LastUpdated time.Time `json:"last_updated"`
}
