package arcana

import (
	"strings"

	"github.com/arcanahq/arcana/schemas"
)

// renderFallbackInterpretation synthesizes an interpretation locally when
// every provider attempt has failed or no provider is configured. It is fully
// deterministic for a given input and never performs I/O, which keeps
// interpretation generation live with zero external dependencies.
func renderFallbackInterpretation(input schemas.InterpretationRequest, guideline *schemas.Guideline) string {
	var builder strings.Builder

	builder.WriteString("Your question: \"" + input.Question + "\"\n\n")
	builder.WriteString("The cards drawn for your " + displaySpread(input) + " reading:\n")
	builder.WriteString(input.CardInterpretations + "\n\n")

	if isThreeCardSpread(input) {
		cards := splitCards(input.CardInterpretations)
		builder.WriteString("Past: " + positionReading(cards, 0,
			"The first card speaks to the foundation of your situation. The energies and choices that brought you here still shape what you are asking about today.") + "\n\n")
		builder.WriteString("Present: " + positionReading(cards, 1,
			"The second card reflects where you stand right now. Notice what this card asks you to acknowledge about your current circumstances.") + "\n\n")
		builder.WriteString("Future: " + positionReading(cards, 2,
			"The third card points to the direction your path is taking. It is not a fixed outcome but the trajectory of your present choices.") + "\n\n")
	} else {
		builder.WriteString("Each card carries its own message, and together they form an answer to your question. ")
		builder.WriteString("Consider how the symbols you drew mirror your situation, and which card resonates most strongly with you right now.\n\n")
	}

	if guideline != nil && guideline.GeneralApproach != "" {
		builder.WriteString("Approach this reading with the following in mind: " + guideline.GeneralApproach + "\n\n")
	}

	builder.WriteString("Reflect on your question, \"" + input.Question + "\", as you sit with these cards. ")
	builder.WriteString("The answer you seek often lies in the card that draws your attention first.")

	return builder.String()
}

func displaySpread(input schemas.InterpretationRequest) string {
	if input.CardSpread != "" {
		return input.CardSpread
	}
	if input.SpreadID != "" {
		return input.SpreadID
	}
	return "tarot"
}

func isThreeCardSpread(input schemas.InterpretationRequest) bool {
	if input.SpreadID == "three-card" {
		return true
	}
	spread := strings.ToLower(input.CardSpread)
	return strings.Contains(spread, "three") || strings.Contains(spread, "3")
}

// positionReading pairs a positional template with the matching drawn card
// when the card list could be split, otherwise returns the template alone.
func positionReading(cards []string, index int, template string) string {
	if index < len(cards) && cards[index] != "" {
		return cards[index] + ". " + template
	}
	return template
}

func splitCards(cardInterpretations string) []string {
	parts := strings.Split(cardInterpretations, ",")
	cards := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cards = append(cards, trimmed)
		}
	}
	return cards
}
