// Package guidelines maintains the merged catalog of interpretation
// guidelines: an immutable compiled-in set plus user-authored overrides from
// the config store, behind a time-boxed snapshot cache.
package guidelines

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arcanahq/arcana/configstore"
	"github.com/arcanahq/arcana/schemas"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a merged snapshot stays warm before the next read
// triggers a store query.
const DefaultTTL = 30 * time.Minute

var (
	ErrNotFound        = errors.New("guideline not found")
	ErrSystemGuideline = errors.New("system guidelines cannot change state")
	ErrStoreRequired   = errors.New("config store is not available")
)

// Source tells a caller whether the snapshot it received reflects the store
// or a degraded defaults-only view.
type Source string

const (
	SourceOk       Source = "ok"
	SourceDegraded Source = "degraded"
)

// Result is a read of the merged catalog together with its provenance.
type Result struct {
	Guidelines []schemas.Guideline  `json:"guidelines"`
	Stats      schemas.CatalogStats `json:"stats"`
	Source     Source               `json:"source"`
}

type snapshot struct {
	guidelines []schemas.Guideline
	stats      schemas.CatalogStats
	source     Source
}

func (s *snapshot) result() Result {
	return Result{Guidelines: s.guidelines, Stats: s.stats, Source: s.source}
}

// Catalog merges system defaults with custom guidelines from the store.
// One instance per process; safe for concurrent use. Concurrent refreshes
// are deduplicated through a single-flight group, and the snapshot swap is
// a single pointer assignment under the mutex.
type Catalog struct {
	store  configstore.ConfigStore
	logger schemas.Logger
	ttl    time.Duration

	mu       sync.RWMutex
	snapshot *snapshot
	group    singleflight.Group
}

// NewCatalog creates a catalog. The store may be nil, in which case every
// read degrades to the compiled-in defaults.
func NewCatalog(store configstore.ConfigStore, logger schemas.Logger) *Catalog {
	return &Catalog{
		store:  store,
		logger: logger,
		ttl:    DefaultTTL,
	}
}

// SetTTL overrides the snapshot lifetime. Intended for tests and tuning.
func (c *Catalog) SetTTL(ttl time.Duration) {
	c.ttl = ttl
}

// GetAll returns the merged catalog. A warm snapshot inside the TTL window is
// served without touching the store unless forceRefresh is set.
func (c *Catalog) GetAll(ctx context.Context, forceRefresh bool) Result {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()

	if snap != nil && !forceRefresh && time.Since(snap.stats.LastUpdated) < c.ttl {
		return snap.result()
	}

	v, _, _ := c.group.Do("refresh", func() (any, error) {
		return c.refresh(ctx), nil
	})
	return v.(*snapshot).result()
}

// refresh queries the store for custom guidelines, merges them after the
// system defaults, dedupes by id (first occurrence wins) and swaps the
// snapshot. Store failures degrade to defaults-only; reads never fail.
func (c *Catalog) refresh(ctx context.Context) *snapshot {
	source := SourceOk
	var custom []schemas.Guideline

	if c.store == nil {
		source = SourceDegraded
	} else {
		var err error
		custom, err = c.store.GetGuidelines(ctx)
		if err != nil {
			c.logger.Warn(fmt.Sprintf("failed to load custom guidelines, serving system defaults only: %v", err))
			source = SourceDegraded
			custom = nil
		}
	}

	merged := make([]schemas.Guideline, 0, len(systemGuidelines)+len(custom))
	seen := make(map[string]struct{}, len(systemGuidelines)+len(custom))
	systemCount := 0
	for _, g := range systemGuidelines {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		merged = append(merged, g)
		systemCount++
	}
	customCount := 0
	for _, g := range custom {
		if _, ok := seen[g.ID]; ok {
			c.logger.Warn(fmt.Sprintf("custom guideline %s shadows an existing id and was skipped", g.ID))
			continue
		}
		seen[g.ID] = struct{}{}
		merged = append(merged, g)
		customCount++
	}

	snap := &snapshot{
		guidelines: merged,
		stats: schemas.CatalogStats{
			Total:       len(merged),
			System:      systemCount,
			Custom:      customCount,
			LastUpdated: time.Now(),
		},
		source: source,
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	return snap
}

// Invalidate drops the snapshot so the next read re-queries the store.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

// GetBySpread returns every guideline targeting the given spread.
func (c *Catalog) GetBySpread(ctx context.Context, spreadID string) []schemas.Guideline {
	var matches []schemas.Guideline
	for _, g := range c.GetAll(ctx, false).Guidelines {
		if g.SpreadID == spreadID {
			matches = append(matches, g)
		}
	}
	return matches
}

// GetByStyle returns every guideline targeting the given style.
func (c *Catalog) GetByStyle(ctx context.Context, styleID string) []schemas.Guideline {
	var matches []schemas.Guideline
	for _, g := range c.GetAll(ctx, false).Guidelines {
		if g.StyleID == styleID {
			matches = append(matches, g)
		}
	}
	return matches
}

// GetByCombination returns the first guideline matching both keys. The pair
// is not unique by contract; first match in merge order wins.
func (c *Catalog) GetByCombination(ctx context.Context, spreadID, styleID string) (*schemas.Guideline, error) {
	for _, g := range c.GetAll(ctx, false).Guidelines {
		if g.SpreadID == spreadID && g.StyleID == styleID {
			return &g, nil
		}
	}
	return nil, ErrNotFound
}

// Save persists a new custom guideline. Writes are not degradable: a missing
// or failing store surfaces as an error.
func (c *Catalog) Save(ctx context.Context, guideline schemas.Guideline) (string, error) {
	if guideline.SpreadID == "" || guideline.StyleID == "" {
		return "", fmt.Errorf("spread_id and style_id are required")
	}
	if guideline.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	if guideline.ID == "" {
		guideline.ID = uuid.NewString()
	}
	if IsSystemGuideline(guideline.ID) {
		return "", fmt.Errorf("id %s belongs to a system guideline", guideline.ID)
	}
	if c.store == nil {
		return "", ErrStoreRequired
	}

	now := time.Now()
	guideline.CreatedAt = &now
	guideline.UpdatedAt = &now
	if err := c.store.CreateGuideline(ctx, guideline); err != nil {
		return "", fmt.Errorf("failed to save guideline: %w", err)
	}
	c.Invalidate()
	return guideline.ID, nil
}

// Update overwrites an existing custom guideline.
func (c *Catalog) Update(ctx context.Context, id string, guideline schemas.Guideline) error {
	if IsSystemGuideline(id) {
		return ErrSystemGuideline
	}
	if c.store == nil {
		return ErrStoreRequired
	}
	if err := c.store.UpdateGuideline(ctx, id, guideline); err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update guideline: %w", err)
	}
	c.Invalidate()
	return nil
}

// Delete removes a custom guideline.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if IsSystemGuideline(id) {
		return ErrSystemGuideline
	}
	if c.store == nil {
		return ErrStoreRequired
	}
	if err := c.store.DeleteGuideline(ctx, id); err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete guideline: %w", err)
	}
	c.Invalidate()
	return nil
}

// ToggleActive flips the active flag on a custom guideline. System ids are
// always rejected. When the store write fails the in-memory snapshot is
// still mutated and the call reports Degraded instead of failing: admin UIs
// are read-mostly and a stale flag beats a dead toggle. Strict-consistency
// deployments should treat Degraded as an error.
func (c *Catalog) ToggleActive(ctx context.Context, id string, isActive bool) (Source, error) {
	if IsSystemGuideline(id) {
		return SourceOk, ErrSystemGuideline
	}

	var storeErr error
	if c.store == nil {
		storeErr = ErrStoreRequired
	} else {
		storeErr = c.store.SetGuidelineActive(ctx, id, isActive)
	}
	if storeErr == nil {
		c.Invalidate()
		return SourceOk, nil
	}
	if errors.Is(storeErr, configstore.ErrNotFound) {
		return SourceOk, ErrNotFound
	}

	c.logger.Warn(fmt.Sprintf("store unavailable for guideline toggle, applying to in-memory view only: %v", storeErr))
	if !c.patchSnapshotActive(id, isActive) {
		return SourceDegraded, ErrNotFound
	}
	return SourceDegraded, nil
}

// patchSnapshotActive rewrites the cached snapshot with the flipped flag.
// Returns false when the id is not present in the current snapshot.
func (c *Catalog) patchSnapshotActive(id string, isActive bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return false
	}
	found := false
	guidelines := make([]schemas.Guideline, len(c.snapshot.guidelines))
	copy(guidelines, c.snapshot.guidelines)
	for i := range guidelines {
		if guidelines[i].ID == id {
			guidelines[i].IsActive = isActive
			found = true
		}
	}
	if !found {
		return false
	}
	c.snapshot = &snapshot{
		guidelines: guidelines,
		stats:      c.snapshot.stats,
		source:     SourceDegraded,
	}
	return true
}
