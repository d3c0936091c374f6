package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

func TestMissingFilesLoadAsEmptyCollections(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	products, err := s.LoadProducts(context.Background())
	require.NoError(t, err)
	require.Empty(t, products)

	sales, err := s.LoadSales(context.Background())
	require.NoError(t, err)
	require.Empty(t, sales)
}

func TestSalesRoundTripKeepsOrderAndStatus(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	createdAt := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	in := []domain.Sale{
		{
			ID:         2,
			Items:      []domain.CartLine{{ID: 1, Name: "Kopi", Price: 500}, {ID: 1, Name: "Kopi", Price: 500}},
			ItemStatus: map[int64]domain.ItemStatus{1: domain.ItemDelivered},
			Total:      1000,
			Discount:   200,
			FinalTotal: 800,
			Status:     domain.SaleDelivered,
			CreatedAt:  createdAt,
		},
		{
			ID:         1,
			Items:      []domain.CartLine{{ID: 3, Name: "Teh", Price: 300}},
			ItemStatus: map[int64]domain.ItemStatus{3: domain.ItemUndelivered},
			Total:      300,
			FinalTotal: 300,
			Status:     domain.SaleUndelivered,
			CreatedAt:  createdAt.Add(time.Hour),
		},
	}
	require.NoError(t, s.SaveSales(ctx, in))

	out, err := s.LoadSales(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int64(2), out[0].ID)
	require.Equal(t, int64(1), out[1].ID)
	require.Equal(t, domain.ItemDelivered, out[0].ItemStatus[1])
	require.True(t, out[0].CreatedAt.Equal(createdAt))
}

func TestCorruptFileIsStorageError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, productsFile), []byte("{not json"), 0o644))

	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.LoadProducts(context.Background())
	require.Error(t, err)

	var storageErr *store.StorageError
	require.True(t, errors.As(err, &storageErr))
	require.Equal(t, "read", storageErr.Op)
	require.Equal(t, store.CollectionProducts, storageErr.Collection)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.SaveProducts(context.Background(), []domain.Product{{ID: 1, Name: "A", Price: 1}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, productsFile, entries[0].Name())
}
