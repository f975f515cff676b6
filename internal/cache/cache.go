// Package cache persists the last-known-good dashboard snapshot and the
// theme preference to durable storage. Storage is best-effort: failures are
// logged and never returned to the caller.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/interfaces"
	"github.com/bobmcallan/vire-markets/internal/models"
)

// Storage keys.
const (
	SnapshotKey = "stockDashboardData"
	ThemeKey    = "theme"
)

// SnapshotCache reads and writes the CachedSnapshot.
type SnapshotCache struct {
	kv     interfaces.KeyValueStorage
	logger *common.Logger
	now    func() time.Time
}

// New creates a SnapshotCache over the given key-value storage.
func New(kv interfaces.KeyValueStorage, logger *common.Logger) *SnapshotCache {
	return &SnapshotCache{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the clock used for timestamps and ages.
func (c *SnapshotCache) SetClock(now func() time.Time) {
	c.now = now
}

// Save stamps the snapshot with the current time and writes it.
func (c *SnapshotCache) Save(ctx context.Context, snap models.CachedSnapshot) {
	snap.Timestamp = c.now().UnixMilli()

	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.Error().Str("error", err.Error()).Msg("Failed to encode dashboard snapshot")
		return
	}
	if err := c.kv.Set(ctx, SnapshotKey, string(data)); err != nil {
		c.logger.Warn().Str("error", err.Error()).Msg("Failed to save dashboard snapshot")
		return
	}
	c.logger.Debug().Int("assets", len(snap.AssetData)).Int("bytes", len(data)).Msg("Dashboard snapshot saved")
}

// Load returns the stored snapshot. A corrupted entry is deleted and
// reported as absent.
func (c *SnapshotCache) Load(ctx context.Context) (*models.CachedSnapshot, bool) {
	raw, err := c.kv.Get(ctx, SnapshotKey)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			c.logger.Warn().Str("error", err.Error()).Msg("Failed to read dashboard snapshot")
		}
		return nil, false
	}

	var snap models.CachedSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.logger.Warn().Str("error", err.Error()).Msg("Corrupted dashboard snapshot, clearing")
		c.Clear(ctx)
		return nil, false
	}
	return &snap, true
}

// Age returns how long ago the snapshot was saved.
func (c *SnapshotCache) Age(snap *models.CachedSnapshot) time.Duration {
	return c.now().Sub(snap.SavedAt())
}

// IsFresh reports whether the snapshot is younger than maxAge.
func (c *SnapshotCache) IsFresh(snap *models.CachedSnapshot, maxAge time.Duration) bool {
	if snap == nil || snap.Timestamp == 0 {
		return false
	}
	return c.Age(snap) < maxAge
}

// Clear removes the stored snapshot.
func (c *SnapshotCache) Clear(ctx context.Context) {
	if err := c.kv.Delete(ctx, SnapshotKey); err != nil {
		c.logger.Warn().Str("error", err.Error()).Msg("Failed to clear dashboard snapshot")
	}
}
