package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

const (
	feeSettingsKey = "fee_settings:active"
	feeSettingsTTL = 30 * time.Second
)

// CachedFeeSettings decorates a FeeSettingsProvider with a short-lived
// cache. Fee lookups happen on every request creation; the schedule changes
// rarely, so a stale window of a few seconds is acceptable.
type CachedFeeSettings struct {
	inner usecase.FeeSettingsProvider
	cache usecase.Cache
}

// NewCachedFeeSettings creates a new CachedFeeSettings.
func NewCachedFeeSettings(inner usecase.FeeSettingsProvider, cache usecase.Cache) *CachedFeeSettings {
	return &CachedFeeSettings{inner: inner, cache: cache}
}

// GetActive returns the active fee schedule, from cache when possible.
// Cache failures fall through to the underlying provider; a broken cache
// must not block request creation.
func (c *CachedFeeSettings) GetActive(ctx context.Context) (*domain.FeeSettings, error) {
	if data, err := c.cache.Get(ctx, feeSettingsKey); err == nil {
		var settings domain.FeeSettings
		if err := json.Unmarshal(data, &settings); err == nil {
			return &settings, nil
		}
	}

	settings, err := c.inner.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(settings); err == nil {
		_ = c.cache.Set(ctx, feeSettingsKey, data, feeSettingsTTL)
	}
	return settings, nil
}

// Invalidate drops the cached schedule, for use after fee changes.
func (c *CachedFeeSettings) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, feeSettingsKey)
}
