package analytics

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/cache"
	"warungpos/backend/internal/domain"
)

// Engine serves sales reports, reusing a cached report while the sale
// collection it was computed from is unchanged.
type Engine struct {
	cache    cache.AnalyticsCache
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewEngine(cacheStore cache.AnalyticsCache, cacheTTL time.Duration, log *zap.Logger) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopAnalyticsCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (e *Engine) Report(ctx context.Context, sales []domain.Sale) domain.AnalyticsReport {
	key := buildCacheKey(sales)

	cached, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.log.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return *cached
	}

	report := Aggregate(sales)
	if err := e.cache.Set(ctx, key, &report, e.cacheTTL); err != nil {
		e.log.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
	return report
}

// Aggregate folds every line of every sale into per-product counts and revenue.
// Products are listed in the order they were first seen; revenue uses the price
// captured on the line, not the current catalog price.
func Aggregate(sales []domain.Sale) domain.AnalyticsReport {
	report := domain.AnalyticsReport{Analytics: []domain.ProductAnalytics{}}
	index := make(map[int64]int)

	for _, sale := range sales {
		report.TotalSalesAmount += sale.FinalTotal
		for _, item := range sale.Items {
			pos, seen := index[item.ID]
			if !seen {
				pos = len(report.Analytics)
				index[item.ID] = pos
				report.Analytics = append(report.Analytics, domain.ProductAnalytics{
					ProductID: item.ID,
					Name:      item.Name,
				})
			}
			report.Analytics[pos].Quantity++
			report.Analytics[pos].TotalRevenue += item.Price
		}
	}

	return report
}

// buildCacheKey fingerprints every field Aggregate reads.
func buildCacheKey(sales []domain.Sale) string {
	h := sha1.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}

	writeInt(int64(len(sales)))
	for _, sale := range sales {
		writeInt(sale.ID)
		writeInt(sale.FinalTotal)
		writeInt(int64(len(sale.Items)))
		for _, item := range sale.Items {
			writeInt(item.ID)
			writeInt(item.Price)
			writeInt(int64(len(item.Name)))
			_, _ = h.Write([]byte(item.Name))
		}
	}
	return "pos:analytics:" + hex.EncodeToString(h.Sum(nil))
}
