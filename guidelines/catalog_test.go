package guidelines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arcanahq/arcana/configstore"
	"github.com/arcanahq/arcana/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testLogger is a no-op implementation of schemas.Logger for tests
type testLogger struct{}

func (testLogger) Debug(msg string) {}
func (testLogger) Info(msg string)  {}
func (testLogger) Warn(msg string)  {}
func (testLogger) Error(err error)  {}

// fakeStore implements configstore.ConfigStore with an in-memory guideline
// list and injectable failures. Only the guideline methods carry behavior.
type fakeStore struct {
	guidelines   []schemas.Guideline
	getCalls     int
	getErr       error
	setActiveErr error
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) UpsertProviderConfig(ctx context.Context, config schemas.ProviderConfig) error {
	return nil
}
func (f *fakeStore) GetProviderConfig(ctx context.Context, provider schemas.ModelProvider) (*schemas.ProviderConfig, error) {
	return nil, configstore.ErrNotFound
}
func (f *fakeStore) GetProviderConfigs(ctx context.Context) ([]schemas.ProviderConfig, error) {
	return nil, nil
}
func (f *fakeStore) GetRedactedProviderConfigs(ctx context.Context) ([]schemas.ProviderConfig, error) {
	return nil, nil
}
func (f *fakeStore) DeleteProviderConfig(ctx context.Context, provider schemas.ModelProvider) error {
	return nil
}
func (f *fakeStore) ReplaceFeatureMappings(ctx context.Context, mappings []schemas.FeatureMapping) error {
	return nil
}
func (f *fakeStore) GetFeatureMappings(ctx context.Context) ([]schemas.FeatureMapping, error) {
	return nil, nil
}
func (f *fakeStore) GetGlobalSettings(ctx context.Context) (*schemas.GlobalSettings, error) {
	return nil, nil
}
func (f *fakeStore) UpdateGlobalSettings(ctx context.Context, settings schemas.GlobalSettings) error {
	return nil
}
func (f *fakeStore) GetPromptTemplate(ctx context.Context) (string, error) {
	return "", nil
}
func (f *fakeStore) UpdatePromptTemplate(ctx context.Context, content string) error {
	return nil
}

func (f *fakeStore) CreateGuideline(ctx context.Context, guideline schemas.Guideline) error {
	f.guidelines = append(f.guidelines, guideline)
	return nil
}

func (f *fakeStore) GetGuidelines(ctx context.Context) ([]schemas.Guideline, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]schemas.Guideline, len(f.guidelines))
	copy(out, f.guidelines)
	return out, nil
}

func (f *fakeStore) GetGuideline(ctx context.Context, id string) (*schemas.Guideline, error) {
	for i := range f.guidelines {
		if f.guidelines[i].ID == id {
			return &f.guidelines[i], nil
		}
	}
	return nil, configstore.ErrNotFound
}

func (f *fakeStore) UpdateGuideline(ctx context.Context, id string, guideline schemas.Guideline) error {
	for i := range f.guidelines {
		if f.guidelines[i].ID == id {
			guideline.ID = id
			f.guidelines[i] = guideline
			return nil
		}
	}
	return configstore.ErrNotFound
}

func (f *fakeStore) DeleteGuideline(ctx context.Context, id string) error {
	for i := range f.guidelines {
		if f.guidelines[i].ID == id {
			f.guidelines = append(f.guidelines[:i], f.guidelines[i+1:]...)
			return nil
		}
	}
	return configstore.ErrNotFound
}

func (f *fakeStore) SetGuidelineActive(ctx context.Context, id string, isActive bool) error {
	if f.setActiveErr != nil {
		return f.setActiveErr
	}
	for i := range f.guidelines {
		if f.guidelines[i].ID == id {
			f.guidelines[i].IsActive = isActive
			return nil
		}
	}
	return configstore.ErrNotFound
}

func (f *fakeStore) DB() *gorm.DB                    { return nil }
func (f *fakeStore) Close(ctx context.Context) error { return nil }

func customGuideline(id, spreadID, styleID string) schemas.Guideline {
	return schemas.Guideline{
		ID:       id,
		SpreadID: spreadID,
		StyleID:  styleID,
		Name:     "Custom " + id,
		IsActive: true,
	}
}

func TestGetAllMergesDefaultsAndCustom(t *testing.T) {
	store := &fakeStore{guidelines: []schemas.Guideline{
		customGuideline("custom-1", "horseshoe", "shadow-work"),
	}}
	catalog := NewCatalog(store, testLogger{})

	result := catalog.GetAll(context.Background(), false)

	assert.Equal(t, SourceOk, result.Source)
	assert.Equal(t, len(SystemGuidelines())+1, result.Stats.Total)
	assert.Equal(t, len(SystemGuidelines()), result.Stats.System)
	assert.Equal(t, 1, result.Stats.Custom)
	// System defaults come first in merge order.
	assert.True(t, IsSystemGuideline(result.Guidelines[0].ID))
	assert.Equal(t, "custom-1", result.Guidelines[len(result.Guidelines)-1].ID)
}

func TestGetAllCacheHitWithinTTL(t *testing.T) {
	store := &fakeStore{}
	catalog := NewCatalog(store, testLogger{})
	ctx := context.Background()

	first := catalog.GetAll(ctx, false)
	second := catalog.GetAll(ctx, false)

	assert.Equal(t, 1, store.getCalls)
	assert.Equal(t, first.Stats.LastUpdated, second.Stats.LastUpdated)
}

func TestGetAllForceRefreshRequeries(t *testing.T) {
	store := &fakeStore{}
	catalog := NewCatalog(store, testLogger{})
	ctx := context.Background()

	catalog.GetAll(ctx, false)
	catalog.GetAll(ctx, true)

	assert.Equal(t, 2, store.getCalls)
}

func TestGetAllRequeriesAfterTTLExpiry(t *testing.T) {
	store := &fakeStore{}
	catalog := NewCatalog(store, testLogger{})
	catalog.SetTTL(time.Nanosecond)
	ctx := context.Background()

	catalog.GetAll(ctx, false)
	time.Sleep(time.Millisecond)
	catalog.GetAll(ctx, false)

	assert.Equal(t, 2, store.getCalls)
}

func TestGetAllDegradesOnStoreFailure(t *testing.T) {
	store := &fakeStore{getErr: errors.New("connection refused")}
	catalog := NewCatalog(store, testLogger{})

	result := catalog.GetAll(context.Background(), false)

	assert.Equal(t, SourceDegraded, result.Source)
	assert.Equal(t, len(SystemGuidelines()), result.Stats.Total)
	assert.Equal(t, 0, result.Stats.Custom)
}

func TestGetAllNilStoreServesDefaults(t *testing.T) {
	catalog := NewCatalog(nil, testLogger{})

	result := catalog.GetAll(context.Background(), false)

	assert.Equal(t, SourceDegraded, result.Source)
	assert.Equal(t, len(SystemGuidelines()), result.Stats.Total)
}

func TestMergeDedupesByIDFirstWins(t *testing.T) {
	systemID := SystemGuidelines()[0].ID
	store := &fakeStore{guidelines: []schemas.Guideline{
		customGuideline(systemID, "hijacked", "hijacked"),
	}}
	catalog := NewCatalog(store, testLogger{})

	result := catalog.GetAll(context.Background(), false)

	assert.Equal(t, len(SystemGuidelines()), result.Stats.Total)
	for _, g := range result.Guidelines {
		if g.ID == systemID {
			assert.NotEqual(t, "hijacked", g.SpreadID)
		}
	}
}

func TestGetBySpreadAndStyle(t *testing.T) {
	catalog := NewCatalog(nil, testLogger{})
	ctx := context.Background()

	bySpread := catalog.GetBySpread(ctx, "three-card")
	require.NotEmpty(t, bySpread)
	for _, g := range bySpread {
		assert.Equal(t, "three-card", g.SpreadID)
	}

	byStyle := catalog.GetByStyle(ctx, "spiritual-growth")
	require.NotEmpty(t, byStyle)
	for _, g := range byStyle {
		assert.Equal(t, "spiritual-growth", g.StyleID)
	}
}

func TestGetByCombination(t *testing.T) {
	catalog := NewCatalog(nil, testLogger{})
	ctx := context.Background()

	guideline, err := catalog.GetByCombination(ctx, "three-card", "spiritual-growth")
	require.NoError(t, err)
	assert.Equal(t, "three-card", guideline.SpreadID)
	assert.Equal(t, "spiritual-growth", guideline.StyleID)

	_, err = catalog.GetByCombination(ctx, "three-card", "no-such-style")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveValidatesInput(t *testing.T) {
	store := &fakeStore{}
	catalog := NewCatalog(store, testLogger{})
	ctx := context.Background()

	_, err := catalog.Save(ctx, schemas.Guideline{StyleID: "s", Name: "n"})
	assert.Error(t, err)

	_, err = catalog.Save(ctx, schemas.Guideline{SpreadID: "sp", StyleID: "s"})
	assert.Error(t, err)

	systemID := SystemGuidelines()[0].ID
	_, err = catalog.Save(ctx, schemas.Guideline{ID: systemID, SpreadID: "sp", StyleID: "s", Name: "n"})
	assert.Error(t, err)
}

func TestSaveAssignsIDAndTimestamps(t *testing.T) {
	store := &fakeStore{}
	catalog := NewCatalog(store, testLogger{})

	id, err := catalog.Save(context.Background(), schemas.Guideline{
		SpreadID: "horseshoe",
		StyleID:  "shadow-work",
		Name:     "Horseshoe Shadow Work",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, store.guidelines, 1)
	assert.NotNil(t, store.guidelines[0].CreatedAt)
	assert.NotNil(t, store.guidelines[0].UpdatedAt)
}

func TestSaveWithoutStoreFailsLoudly(t *testing.T) {
	catalog := NewCatalog(nil, testLogger{})

	_, err := catalog.Save(context.Background(), schemas.Guideline{
		SpreadID: "sp", StyleID: "st", Name: "n",
	})
	assert.ErrorIs(t, err, ErrStoreRequired)
}

func TestToggleSystemGuidelineAlwaysFails(t *testing.T) {
	store := &fakeStore{}
	catalog := NewCatalog(store, testLogger{})
	ctx := context.Background()

	for _, g := range SystemGuidelines() {
		_, err := catalog.ToggleActive(ctx, g.ID, false)
		assert.ErrorIs(t, err, ErrSystemGuideline, "id %s", g.ID)
	}
}

func TestToggleCustomGuideline(t *testing.T) {
	store := &fakeStore{guidelines: []schemas.Guideline{
		customGuideline("custom-1", "horseshoe", "shadow-work"),
	}}
	catalog := NewCatalog(store, testLogger{})
	ctx := context.Background()

	source, err := catalog.ToggleActive(ctx, "custom-1", false)
	require.NoError(t, err)
	assert.Equal(t, SourceOk, source)
	assert.False(t, store.guidelines[0].IsActive)
}

func TestToggleNotFound(t *testing.T) {
	store := &fakeStore{}
	catalog := NewCatalog(store, testLogger{})

	_, err := catalog.ToggleActive(context.Background(), "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleDegradesToSnapshotOnStoreFailure(t *testing.T) {
	store := &fakeStore{guidelines: []schemas.Guideline{
		customGuideline("custom-1", "horseshoe", "shadow-work"),
	}}
	catalog := NewCatalog(store, testLogger{})
	ctx := context.Background()

	// Warm the snapshot, then break writes.
	catalog.GetAll(ctx, false)
	store.setActiveErr = errors.New("connection refused")

	source, err := catalog.ToggleActive(ctx, "custom-1", false)
	require.NoError(t, err)
	assert.Equal(t, SourceDegraded, source)

	// The in-memory view reflects the toggle even though the store did not.
	result := catalog.GetAll(ctx, false)
	for _, g := range result.Guidelines {
		if g.ID == "custom-1" {
			assert.False(t, g.IsActive)
		}
	}
	assert.True(t, store.guidelines[0].IsActive)
}

func TestDeleteThenCombinationNotFound(t *testing.T) {
	store := &fakeStore{guidelines: []schemas.Guideline{
		customGuideline("custom-1", "horseshoe", "shadow-work"),
	}}
	catalog := NewCatalog(store, testLogger{})
	ctx := context.Background()

	guideline, err := catalog.GetByCombination(ctx, "horseshoe", "shadow-work")
	require.NoError(t, err)
	assert.Equal(t, "custom-1", guideline.ID)

	require.NoError(t, catalog.Delete(ctx, "custom-1"))

	_, err = catalog.GetByCombination(ctx, "horseshoe", "shadow-work")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSystemGuidelineRejected(t *testing.T) {
	catalog := NewCatalog(&fakeStore{}, testLogger{})

	err := catalog.Delete(context.Background(), SystemGuidelines()[0].ID)
	assert.ErrorIs(t, err, ErrSystemGuideline)
}

func TestUpdateSystemGuidelineRejected(t *testing.T) {
	catalog := NewCatalog(&fakeStore{}, testLogger{})

	err := catalog.Update(context.Background(), SystemGuidelines()[0].ID, schemas.Guideline{Name: "x"})
	assert.ErrorIs(t, err, ErrSystemGuideline)
}
