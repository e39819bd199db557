package arcana

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arcanahq/arcana/schemas"
)

// DefaultPromptTemplate is the built-in base template used when no
// admin-configured override is stored. Placeholders are resolved by
// composePrompt with literal replacement, and the guest/member conditional
// selects exactly one branch.
const DefaultPromptTemplate = `You are an experienced tarot reader with deep knowledge of symbolism and intuitive insight.

Question: {{question}}
Spread: {{cardSpread}}
Cards drawn: {{cardInterpretations}}

{{#if isGuestUser}}Provide a concise interpretation in 2-3 paragraphs. Focus on the most important message of the cards and end with one practical suggestion.{{else}}Provide a thorough interpretation. Walk through each card in its position, weave the cards into a single narrative that answers the question, and close with concrete guidance the querent can act on.{{/if}}

Write in a warm, encouraging tone. Ground every statement in the cards that were actually drawn.`

var (
	conditionalPattern   = regexp.MustCompile(`(?s)\{\{#if\s+isGuestUser\}\}(.*?)(?:\{\{else\}\}(.*?))?\{\{/if\}\}`)
	placeholderPattern   = regexp.MustCompile(`\{\{[^}]*\}\}`)
	openDirectivePattern = regexp.MustCompile(`\{\{[^}]*`)
)

// composePrompt renders the final prompt string sent to a provider. The
// guideline block, when present, is appended after the base template.
// Resolution order is substitution, then the guest conditional, then a strip
// of any leftover placeholder syntax so unhandled directives never reach a
// provider.
func composePrompt(baseTemplate string, input schemas.InterpretationRequest, guideline *schemas.Guideline) string {
	prompt := baseTemplate
	if guideline != nil {
		prompt = prompt + "\n\n" + renderGuidelineBlock(guideline)
	}

	prompt = strings.ReplaceAll(prompt, "{{question}}", input.Question)
	prompt = strings.ReplaceAll(prompt, "{{cardSpread}}", input.CardSpread)
	prompt = strings.ReplaceAll(prompt, "{{cardInterpretations}}", input.CardInterpretations)

	prompt = resolveGuestConditional(prompt, input.IsGuestUser)

	return stripDirectives(prompt)
}

// stripDirectives removes every leftover directive, including unbalanced
// ones: matched {{...}} pairs first, then unterminated openers, then stray
// closers. No brace-pair syntax survives, even in a malformed template.
func stripDirectives(prompt string) string {
	prompt = placeholderPattern.ReplaceAllString(prompt, "")
	prompt = openDirectivePattern.ReplaceAllString(prompt, "")
	return strings.ReplaceAll(prompt, "}}", "")
}

// resolveGuestConditional keeps exactly one branch of each guest/member
// conditional block. A block without an else branch collapses to empty for
// members.
func resolveGuestConditional(prompt string, isGuestUser bool) string {
	return conditionalPattern.ReplaceAllStringFunc(prompt, func(block string) string {
		match := conditionalPattern.FindStringSubmatch(block)
		if match == nil {
			return ""
		}
		if isGuestUser {
			return match[1]
		}
		return match[2]
	})
}

// renderGuidelineBlock formats a guideline into the structured enrichment
// block: general approach, per-position guidance, then the style's focus
// areas and tips.
func renderGuidelineBlock(guideline *schemas.Guideline) string {
	var builder strings.Builder

	builder.WriteString("=== Interpretation Guideline: " + guideline.Name + " ===\n")
	if guideline.GeneralApproach != "" {
		builder.WriteString("General approach: " + guideline.GeneralApproach + "\n")
	}

	if len(guideline.Positions) > 0 {
		builder.WriteString("\nPosition guidance:\n")
		for i, position := range guideline.Positions {
			builder.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, position.Position, position.Focus))
			for _, question := range position.KeyQuestions {
				builder.WriteString("   - " + question + "\n")
			}
		}
	}

	if len(guideline.KeyFocusAreas) > 0 {
		builder.WriteString("\nKey focus areas: " + strings.Join(guideline.KeyFocusAreas, ", ") + "\n")
	}
	if len(guideline.InterpretationTips) > 0 {
		builder.WriteString("\nInterpretation tips:\n")
		for _, tip := range guideline.InterpretationTips {
			builder.WriteString("- " + tip + "\n")
		}
	}

	return strings.TrimRight(builder.String(), "\n")
}
