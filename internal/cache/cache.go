package cache

import (
	"context"
	"time"

	"warungpos/backend/internal/domain"
)

// AnalyticsCache stores computed sales reports under a caller-chosen key. A
// miss is (nil, false, nil); errors are for transport failures only.
type AnalyticsCache interface {
	Get(ctx context.Context, key string) (*domain.AnalyticsReport, bool, error)
	Set(ctx context.Context, key string, value *domain.AnalyticsReport, ttl time.Duration) error
}

type NoopAnalyticsCache struct{}

func (NoopAnalyticsCache) Get(_ context.Context, _ string) (*domain.AnalyticsReport, bool, error) {
	return nil, false, nil
}

func (NoopAnalyticsCache) Set(_ context.Context, _ string, _ *domain.AnalyticsReport, _ time.Duration) error {
	return nil
}
