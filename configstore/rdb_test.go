package configstore

import (
	"context"
	"testing"
	"time"

	"github.com/arcanahq/arcana/configstore/tables"
	"github.com/arcanahq/arcana/encrypt"
	"github.com/arcanahq/arcana/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op implementation of schemas.Logger for tests
type testLogger struct{}

func (testLogger) Debug(msg string) {}
func (testLogger) Info(msg string)  {}
func (testLogger) Warn(msg string)  {}
func (testLogger) Error(err error)  {}

func newTestStore(t *testing.T) ConfigStore {
	t.Helper()
	store, err := NewConfigStore(context.Background(), &Config{
		Enabled: true,
		Type:    ConfigStoreTypeSQLite,
		Config:  &SQLiteConfig{Path: ":memory:"},
	}, testLogger{})
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	return store
}

func TestDisabledStoreReturnsNil(t *testing.T) {
	store, err := NewConfigStore(context.Background(), &Config{Enabled: false}, testLogger{})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestProviderConfigRoundTripWithEncryption(t *testing.T) {
	encrypt.Init("a-long-test-passphrase-for-unit-tests", testLogger{})
	defer encrypt.Reset()

	store := newTestStore(t)
	ctx := context.Background()

	config := schemas.ProviderConfig{
		Provider:             schemas.OpenAI,
		APIKey:               "sk-test",
		IsActive:             true,
		MaxRequestsPerMinute: 60,
		Models:               []schemas.Model{{ID: "gpt-4", Name: "GPT-4", IsActive: true}},
	}
	require.NoError(t, store.UpsertProviderConfig(ctx, config))

	got, err := store.GetProviderConfig(ctx, schemas.OpenAI)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", got.APIKey)
	assert.True(t, got.IsActive)
	assert.Equal(t, 60, got.MaxRequestsPerMinute)
	require.Len(t, got.Models, 1)
	assert.Equal(t, "gpt-4", got.Models[0].ID)

	// The stored row must hold ciphertext, never the plaintext key.
	var row struct {
		APIKey           string
		EncryptionStatus string
	}
	require.NoError(t, store.DB().Raw("SELECT api_key, encryption_status FROM config_providers WHERE provider = ?", "openai").Scan(&row).Error)
	assert.NotEqual(t, "sk-test", row.APIKey)
	assert.NotContains(t, row.APIKey, "sk-test")
	assert.Equal(t, tables.EncryptionStatusEncrypted, row.EncryptionStatus)
}

func TestProviderConfigPlaintextWhenEncryptionDisabled(t *testing.T) {
	encrypt.Reset()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProviderConfig(ctx, schemas.ProviderConfig{
		Provider: schemas.Gemini,
		APIKey:   "gm-test",
		IsActive: true,
	}))

	got, err := store.GetProviderConfig(ctx, schemas.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "gm-test", got.APIKey)
}

func TestRedactedListNeverContainsKey(t *testing.T) {
	encrypt.Init("a-long-test-passphrase-for-unit-tests", testLogger{})
	defer encrypt.Reset()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProviderConfig(ctx, schemas.ProviderConfig{
		Provider: schemas.OpenAI,
		APIKey:   "sk-super-secret",
		IsActive: true,
	}))

	redacted, err := store.GetRedactedProviderConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, redacted, 1)
	assert.Equal(t, RedactedKeyMask, redacted[0].APIKey)
	assert.NotContains(t, redacted[0].APIKey, "sk-super-secret")

	internal, err := store.GetProviderConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, internal, 1)
	assert.Equal(t, "sk-super-secret", internal[0].APIKey)
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProviderConfig(ctx, schemas.ProviderConfig{
		Provider: schemas.OpenAI,
		APIKey:   "first",
	}))
	first, err := store.GetProviderConfig(ctx, schemas.OpenAI)
	require.NoError(t, err)

	require.NoError(t, store.UpsertProviderConfig(ctx, schemas.ProviderConfig{
		Provider: schemas.OpenAI,
		APIKey:   "second",
	}))
	second, err := store.GetProviderConfig(ctx, schemas.OpenAI)
	require.NoError(t, err)

	assert.Equal(t, "second", second.APIKey)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	all, err := store.GetProviderConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetProviderConfigNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProviderConfig(context.Background(), schemas.Gemini)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProviderConfigIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.DeleteProviderConfig(ctx, schemas.OpenAI))

	require.NoError(t, store.UpsertProviderConfig(ctx, schemas.ProviderConfig{Provider: schemas.OpenAI, APIKey: "sk"}))
	require.NoError(t, store.DeleteProviderConfig(ctx, schemas.OpenAI))
	require.NoError(t, store.DeleteProviderConfig(ctx, schemas.OpenAI))

	_, err := store.GetProviderConfig(ctx, schemas.OpenAI)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeatureMappingsReplaceAndRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mappings, err := store.GetFeatureMappings(ctx)
	require.NoError(t, err)
	assert.Empty(t, mappings)

	require.NoError(t, store.ReplaceFeatureMappings(ctx, []schemas.FeatureMapping{
		{Feature: "tarot-interpretation", ProviderID: schemas.Gemini, ModelID: "gemini-2.0-flash"},
		{Feature: "dream-interpretation", ProviderID: schemas.OpenAI, ModelID: "gpt-4o"},
	}))
	mappings, err = store.GetFeatureMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, "tarot-interpretation", mappings[0].Feature)

	// Whole-list replace, not append.
	require.NoError(t, store.ReplaceFeatureMappings(ctx, []schemas.FeatureMapping{
		{Feature: "tarot-interpretation", ProviderID: schemas.OpenAI, ModelID: "gpt-4o-mini"},
	}))
	mappings, err = store.GetFeatureMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, schemas.OpenAI, mappings[0].ProviderID)
}

func TestGlobalSettingsAbsentThenStored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.GetGlobalSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	require.NoError(t, store.UpdateGlobalSettings(ctx, schemas.GlobalSettings{
		Temperature:    0.3,
		MaxTokens:      512,
		EnableFallback: false,
	}))
	settings, err = store.GetGlobalSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, 0.3, settings.Temperature)
	assert.Equal(t, 512, settings.MaxTokens)
	assert.False(t, settings.EnableFallback)
}

func TestPromptTemplateAbsentThenStored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	content, err := store.GetPromptTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", content)

	require.NoError(t, store.UpdatePromptTemplate(ctx, "Custom template {{question}}"))
	content, err = store.GetPromptTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Custom template {{question}}", content)
}

func TestGuidelineCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	guideline := schemas.Guideline{
		ID:              "custom-test-1",
		SpreadID:        "three-card",
		StyleID:         "practical-advice",
		Name:            "Test Guideline",
		GeneralApproach: "Keep it grounded",
		Positions: []schemas.PositionGuide{
			{Position: "Past", Focus: "What led here", KeyQuestions: []string{"What changed?"}},
		},
		KeyFocusAreas:      []string{"action"},
		InterpretationTips: []string{"be concrete"},
		IsActive:           true,
	}
	require.NoError(t, store.CreateGuideline(ctx, guideline))

	got, err := store.GetGuideline(ctx, "custom-test-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Guideline", got.Name)
	require.Len(t, got.Positions, 1)
	assert.Equal(t, []string{"What changed?"}, got.Positions[0].KeyQuestions)

	guideline.Name = "Renamed"
	require.NoError(t, store.UpdateGuideline(ctx, "custom-test-1", guideline))
	got, err = store.GetGuideline(ctx, "custom-test-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, store.SetGuidelineActive(ctx, "custom-test-1", false))
	got, err = store.GetGuideline(ctx, "custom-test-1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, store.DeleteGuideline(ctx, "custom-test-1"))
	assert.ErrorIs(t, store.DeleteGuideline(ctx, "custom-test-1"), ErrNotFound)
	assert.ErrorIs(t, store.SetGuidelineActive(ctx, "custom-test-1", true), ErrNotFound)

	_, err = store.GetGuideline(ctx, "custom-test-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuidelineUpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateGuideline(context.Background(), "missing", schemas.Guideline{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPing(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, store.Ping(ctx))
}
