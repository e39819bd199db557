// Package modelcatalog holds the static catalog of models known per provider
// and the selection filter applied when an admin saves a provider config.
package modelcatalog

import "github.com/arcanahq/arcana/schemas"

// modelPool is the compiled-in catalog of models known per provider.
// Only models present here can be selected by administrative callers;
// anything else in a save request is silently dropped.
var modelPool = map[schemas.ModelProvider][]schemas.Model{
	schemas.Gemini: {
		{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash"},
		{ID: "gemini-2.0-flash-lite", Name: "Gemini 2.0 Flash Lite"},
		{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro"},
		{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash"},
	},
	schemas.OpenAI: {
		{ID: "gpt-4o", Name: "GPT-4o"},
		{ID: "gpt-4o-mini", Name: "GPT-4o mini"},
		{ID: "gpt-4", Name: "GPT-4"},
		{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
	},
}

// KnownModels returns the static catalog for a provider. The returned slice
// is a copy; callers may mutate it freely.
func KnownModels(provider schemas.ModelProvider) []schemas.Model {
	pool, ok := modelPool[provider]
	if !ok {
		return nil
	}
	models := make([]schemas.Model, len(pool))
	copy(models, pool)
	return models
}

// FilterSelected returns the intersection of the provider's known catalog and
// the admin-selected model ids, preserving catalog order. Every retained
// model is marked active.
func FilterSelected(provider schemas.ModelProvider, selectedIDs []string) []schemas.Model {
	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}

	var models []schemas.Model
	for _, model := range modelPool[provider] {
		if _, ok := selected[model.ID]; ok {
			model.IsActive = true
			models = append(models, model)
		}
	}
	return models
}

// DefaultModelID returns the first catalog model for a provider, used when a
// feature mapping does not pin a specific model.
func DefaultModelID(provider schemas.ModelProvider) string {
	pool := modelPool[provider]
	if len(pool) == 0 {
		return ""
	}
	return pool[0].ID
}
