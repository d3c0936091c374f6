package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/analytics"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

const defaultProductColor = "#ffffff"

// Service owns the product catalog and the sale lifecycle. Every mutation is a
// read-modify-write of a whole collection; mu serializes them within this
// process. Several processes sharing one store still race, last writer wins.
type Service struct {
	mu        sync.Mutex
	repo      store.Repository
	analytics *analytics.Engine
	pricing   PricingPolicy
	log       *zap.Logger
	now       func() time.Time
}

func New(repo store.Repository, engine *analytics.Engine, pricing PricingPolicy, log *zap.Logger) *Service {
	if engine == nil {
		engine = analytics.NewEngine(nil, 0, log)
	}
	if pricing == "" {
		pricing = PricingClient
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		repo:      repo,
		analytics: engine,
		pricing:   pricing,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.LoadProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	in, err := normalizeProductInput(in)
	if err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	color := in.Color
	if color == "" {
		color = defaultProductColor
	}
	product := domain.Product{
		ID:    xid.NextOf(products, productKey),
		Name:  in.Name,
		Price: in.Price,
		Color: color,
	}
	if err := s.repo.SaveProducts(ctx, append(products, product)); err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product created", zap.Int64("product_id", product.ID), zap.Int64("price", product.Price))
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error) {
	in, err := normalizeProductInput(in)
	if err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	idx := -1
	for i, p := range products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}

	updated := products[idx]
	updated.Name = in.Name
	updated.Price = in.Price
	if in.Color != "" {
		updated.Color = in.Color
	}
	products[idx] = updated

	if err := s.repo.SaveProducts(ctx, products); err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product updated", zap.Int64("product_id", updated.ID), zap.Int64("price", updated.Price))
	return updated, nil
}

// DeleteProduct removes the product from the catalog. Sales keep the snapshot
// they captured, but later edits can no longer price this id.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(products) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.repo.SaveProducts(ctx, kept); err != nil {
		return 0, err
	}

	s.log.Info("product deleted", zap.Int64("product_id", id))
	return removed, nil
}

func normalizeProductInput(in domain.ProductInput) (domain.ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if in.Name == "" {
		return in, fmt.Errorf("%w: product name is required", store.ErrValidation)
	}
	if in.Price < 0 {
		return in, fmt.Errorf("%w: product price must not be negative", store.ErrValidation)
	}
	return in, nil
}

func productKey(p domain.Product) int64 { return p.ID }

func saleKey(s domain.Sale) int64 { return s.ID }
