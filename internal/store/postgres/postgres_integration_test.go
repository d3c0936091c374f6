package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"warungpos/backend/internal/domain"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("POS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set POS_TEST_DATABASE_URL to run postgres integration test")
	}

	s, err := New(context.Background(), databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(context.Background(), `DELETE FROM sales`)
		_, _ = s.db.ExecContext(context.Background(), `DELETE FROM products`)
		_ = s.Close()
	})
	return s
}

func TestSalesReplaceKeepsPositionOrder(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	createdAt := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		{
			ID:         5,
			Items:      []domain.CartLine{{ID: 1, Name: "Kopi", Price: 500}},
			ItemStatus: map[int64]domain.ItemStatus{1: domain.ItemUndelivered},
			Total:      500,
			FinalTotal: 500,
			Status:     domain.SaleUndelivered,
			CreatedAt:  createdAt,
		},
		{
			ID:         2,
			Items:      []domain.CartLine{},
			ItemStatus: map[int64]domain.ItemStatus{},
			Status:     domain.SaleDelivered,
			CreatedAt:  createdAt.Add(time.Minute),
		},
	}
	if err := s.SaveSales(ctx, sales); err != nil {
		t.Fatalf("save sales: %v", err)
	}

	loaded, err := s.LoadSales(ctx)
	if err != nil {
		t.Fatalf("load sales: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != 5 || loaded[1].ID != 2 {
		t.Fatalf("expected sales [5 2] in saved order, got %+v", loaded)
	}
	if loaded[0].ItemStatus[1] != domain.ItemUndelivered {
		t.Fatalf("expected item status to round-trip, got %v", loaded[0].ItemStatus)
	}
	if !loaded[0].CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %s, got %s", createdAt, loaded[0].CreatedAt)
	}

	if err := s.SaveSales(ctx, sales[:1]); err != nil {
		t.Fatalf("save sales: %v", err)
	}
	loaded, _ = s.LoadSales(ctx)
	if len(loaded) != 1 {
		t.Fatalf("expected save to replace the collection, got %d rows", len(loaded))
	}
}

func TestProductsRoundTrip(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	in := []domain.Product{{ID: 1, Name: "Kopi", Price: 500, Color: "#fff"}}
	if err := s.SaveProducts(ctx, in); err != nil {
		t.Fatalf("save products: %v", err)
	}
	out, err := s.LoadProducts(ctx)
	if err != nil {
		t.Fatalf("load products: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}
