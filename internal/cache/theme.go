package cache

import (
	"context"
	"fmt"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/interfaces"
	"github.com/bobmcallan/vire-markets/internal/models"
)

// ThemeStore persists the light/dark preference.
type ThemeStore struct {
	kv     interfaces.KeyValueStorage
	logger *common.Logger
}

// NewThemeStore creates a ThemeStore.
func NewThemeStore(kv interfaces.KeyValueStorage, logger *common.Logger) *ThemeStore {
	return &ThemeStore{kv: kv, logger: logger}
}

// Get returns the stored theme, defaulting to light.
func (s *ThemeStore) Get(ctx context.Context) models.Theme {
	raw, err := s.kv.Get(ctx, ThemeKey)
	if err != nil {
		return models.ThemeLight
	}
	t := models.Theme(raw)
	if !t.Valid() {
		return models.ThemeLight
	}
	return t
}

// Set stores the theme. Only an unknown theme is an error.
func (s *ThemeStore) Set(ctx context.Context, t models.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	if err := s.kv.Set(ctx, ThemeKey, string(t)); err != nil {
		s.logger.Warn().Str("error", err.Error()).Msg("Failed to save theme")
	}
	return nil
}

// Toggle flips the stored theme and returns the new value.
func (s *ThemeStore) Toggle(ctx context.Context) models.Theme {
	next := models.ThemeDark
	if s.Get(ctx) == models.ThemeDark {
		next = models.ThemeLight
	}
	_ = s.Set(ctx, next)
	return next
}
