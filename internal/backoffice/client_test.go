package backoffice

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/httpapi"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store/memory"
)

func newServer(t *testing.T) (*Client, *service.Service) {
	t.Helper()

	svc := service.New(memory.NewSeeded(), nil, service.PricingClient, nil)
	srv := httptest.NewServer(httpapi.New(svc, nil, "*", time.UTC).Handler())
	t.Cleanup(srv.Close)

	return New(srv.URL), svc
}

func sell(t *testing.T, svc *service.Service, lines ...domain.CartLine) domain.Sale {
	t.Helper()
	sale, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{Cart: lines})
	require.NoError(t, err)
	return sale
}

func TestClientReadsReports(t *testing.T) {
	client, svc := newServer(t)
	ctx := context.Background()

	next, err := client.NextSaleID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), next)

	sell(t, svc, domain.CartLine{ID: 1, Name: "Nasi Goreng", Price: 25000})
	sell(t, svc, domain.CartLine{ID: 4, Name: "Kopi Susu", Price: 15000})

	history, err := client.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, int64(2), history[0].ID)

	report, err := client.Analytics(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(40000), report.TotalSalesAmount)
	require.Len(t, report.Analytics, 2)

	csv, err := client.ExportCSV(ctx)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(csv, []byte("\ufeffsale_id,")))
	require.Contains(t, string(csv), ",Kopi Susu,1,15000,15000,0")
}

func TestClientDeletes(t *testing.T) {
	client, svc := newServer(t)
	ctx := context.Background()

	sell(t, svc, domain.CartLine{ID: 1, Name: "Nasi Goreng", Price: 25000})
	sell(t, svc, domain.CartLine{ID: 2, Name: "Mie Ayam", Price: 22000})
	sell(t, svc, domain.CartLine{ID: 3, Name: "Es Teh Manis", Price: 6000})

	removed, err := client.DeleteSale(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	removed, err = client.DeleteSale(ctx, 2)
	require.NoError(t, err)
	require.Zero(t, removed)

	removed, err = client.PurgeRange(ctx, "2000-01-01", time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	next, err := client.NextSaleID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), next)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	client, _ := newServer(t)

	_, err := client.PurgeRange(context.Background(), "2024-02-01", "2024-01-01")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Message, "start must not be after end")
}
