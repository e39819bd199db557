package schemas

// InterpretationRequest carries everything needed to produce a reading:
// the user's question, the drawn cards, and the chosen spread/style pair
// used for guideline enrichment.
type InterpretationRequest struct {
	Question            string `json:"question"`
	CardSpread          string `json:"card_spread"`
	CardInterpretations string `json:"card_interpretations"`
	IsGuestUser         bool   `json:"is_guest_user"`
	SpreadID            string `json:"spread_id,omitempty"`
	StyleID             string `json:"style_id,omitempty"`
}

// InterpretationResponse is the terminal output of the fallback chain.
// Interpretation is always non-empty; the deterministic renderer guarantees
// liveness even with zero providers configured.
type InterpretationResponse struct {
	Interpretation string `json:"interpretation"`
}
