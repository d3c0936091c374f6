package memory

import (
	"context"
	"sync"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

// Store keeps both collections in process memory. Load and Save copy records in
// and out so callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	sales    []domain.Sale
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store with a small demo menu and no sales.
func NewSeeded() *Store {
	return &Store{
		products: []domain.Product{
			{ID: 1, Name: "Nasi Goreng", Price: 25000, Color: "#f4b183"},
			{ID: 2, Name: "Mie Ayam", Price: 22000, Color: "#ffe699"},
			{ID: 3, Name: "Es Teh Manis", Price: 6000, Color: "#c5e0b4"},
			{ID: 4, Name: "Kopi Susu", Price: 15000, Color: "#d9c3a5"},
			{ID: 5, Name: "Pisang Goreng", Price: 12000, Color: "#fff2cc"},
		},
	}
}

func (s *Store) LoadProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product{}, s.products...), nil
}

func (s *Store) SaveProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]domain.Product{}, products...)
	return nil
}

func (s *Store) LoadSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSales(s.sales), nil
}

func (s *Store) SaveSales(_ context.Context, sales []domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = cloneSales(sales)
	return nil
}

func cloneSales(sales []domain.Sale) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		out = append(out, sale.Clone())
	}
	return out
}
