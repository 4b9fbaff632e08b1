package redis

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
)

type countingProvider struct {
	calls    int
	settings *domain.FeeSettings
}

func (p *countingProvider) GetActive(ctx context.Context) (*domain.FeeSettings, error) {
	p.calls++
	if p.settings == nil {
		return nil, domain.ErrNoActiveFeeSettings
	}
	return p.settings, nil
}

func TestCachedFeeSettings_GetActive(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	provider := &countingProvider{settings: &domain.FeeSettings{
		ID:                "fees-1",
		MobileMoneyFeePct: decimal.RequireFromString("1.8"),
		Active:            true,
	}}
	cached := NewCachedFeeSettings(provider, NewCache(client))
	ctx := context.Background()

	first, err := cached.GetActive(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cached.GetActive(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
	if !first.MobileMoneyFeePct.Equal(second.MobileMoneyFeePct) {
		t.Fatalf("cached schedule differs: %s vs %s", first.MobileMoneyFeePct, second.MobileMoneyFeePct)
	}
}

func TestCachedFeeSettings_ErrorNotCached(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	provider := &countingProvider{}
	cached := NewCachedFeeSettings(provider, NewCache(client))
	ctx := context.Background()

	if _, err := cached.GetActive(ctx); err != domain.ErrNoActiveFeeSettings {
		t.Fatalf("expected ErrNoActiveFeeSettings, got %v", err)
	}
	if _, err := cached.GetActive(ctx); err != domain.ErrNoActiveFeeSettings {
		t.Fatalf("expected ErrNoActiveFeeSettings, got %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("misses must reach the provider every time, got %d calls", provider.calls)
	}
}

func TestCachedFeeSettings_Invalidate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	provider := &countingProvider{settings: &domain.FeeSettings{ID: "fees-1", Active: true}}
	cached := NewCachedFeeSettings(provider, NewCache(client))
	ctx := context.Background()

	if _, err := cached.GetActive(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cached.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if _, err := cached.GetActive(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected provider re-read after invalidate, got %d calls", provider.calls)
	}
}
