package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

// NextSaleID reports the id the next CreateSale would receive right now.
func (s *Service) NextSaleID(ctx context.Context) (int64, error) {
	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return 0, err
	}
	return xid.NextOf(sales, saleKey), nil
}

// CreateSale records a checkout. It does not insist on a non-empty cart: an
// empty one produces a sale worth zero with nothing to deliver.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	if err := validateCreateRequest(req); err != nil {
		return domain.Sale{}, err
	}
	if err := checkClientTotals(s.pricing, req); err != nil {
		return domain.Sale{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return domain.Sale{}, err
	}

	var catalog []domain.Product
	if s.pricing == PricingCatalog {
		catalog, err = s.repo.LoadProducts(ctx)
		if err != nil {
			return domain.Sale{}, err
		}
	}
	total, finalTotal := priceNewSale(s.pricing, req, catalog)

	items := append([]domain.CartLine{}, req.Cart...)
	sale := domain.Sale{
		ID:         xid.NextOf(sales, saleKey),
		Items:      items,
		ItemStatus: initialItemStatus(items),
		Total:      total,
		Discount:   req.Discount,
		FinalTotal: finalTotal,
		Status:     domain.SaleUndelivered,
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.repo.SaveSales(ctx, append(sales, sale)); err != nil {
		return domain.Sale{}, err
	}

	s.log.Info("sale created",
		zap.Int64("sale_id", sale.ID),
		zap.Int("items", len(sale.Items)),
		zap.Int64("final_total", sale.FinalTotal),
		zap.String("pricing", string(s.pricing)),
	)
	return sale, nil
}

// UpdateSaleItems replaces the lines of a sale and reprices them from the
// current catalog. The discount is kept. Delivery state is left as it was, so
// ids added by the edit are not tracked and removed ids stay tracked.
func (s *Service) UpdateSaleItems(ctx context.Context, id int64, req domain.SaleUpdateRequest) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return domain.Sale{}, err
	}
	idx := indexOfSale(sales, id)
	if idx < 0 {
		return domain.Sale{}, fmt.Errorf("sale %d: %w", id, store.ErrNotFound)
	}
	if req.Items == nil {
		return domain.Sale{}, fmt.Errorf("%w: items must be an array", store.ErrValidation)
	}

	catalog, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return domain.Sale{}, err
	}

	sale := sales[idx]
	sale.Items = append([]domain.CartLine{}, req.Items...)
	sale.Total = catalogTotal(sale.Items, catalog)
	sale.FinalTotal = applyDiscount(sale.Total, sale.Discount)
	sales[idx] = sale

	if err := s.repo.SaveSales(ctx, sales); err != nil {
		return domain.Sale{}, err
	}

	s.log.Info("sale items updated",
		zap.Int64("sale_id", sale.ID),
		zap.Int("items", len(sale.Items)),
		zap.Int64("total", sale.Total),
		zap.Int64("final_total", sale.FinalTotal),
	)
	return sale, nil
}

// MarkItemDelivered flags one product of a sale as handed over. A product the
// sale does not track is accepted without change. The aggregate status is
// refreshed on every call.
func (s *Service) MarkItemDelivered(ctx context.Context, saleID int64, productID int64) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return domain.Sale{}, err
	}
	idx := indexOfSale(sales, saleID)
	if idx < 0 {
		return domain.Sale{}, fmt.Errorf("sale %d: %w", saleID, store.ErrNotFound)
	}

	sale := sales[idx]
	if sale.ItemStatus == nil {
		sale.ItemStatus = map[int64]domain.ItemStatus{}
	}
	if _, tracked := sale.ItemStatus[productID]; tracked {
		sale.ItemStatus[productID] = domain.ItemDelivered
	}
	sale.Status = aggregateStatus(sale.ItemStatus)
	sales[idx] = sale

	if err := s.repo.SaveSales(ctx, sales); err != nil {
		return domain.Sale{}, err
	}

	s.log.Info("sale item delivered",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", productID),
		zap.String("status", string(sale.Status)),
	)
	return sale, nil
}

// ListUndelivered returns the kitchen queue, oldest id first.
func (s *Service) ListUndelivered(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		if sale.Status == domain.SaleUndelivered {
			pending = append(pending, sale)
		}
	}
	slices.SortFunc(pending, func(a, b domain.Sale) int { return cmp.Compare(a.ID, b.ID) })
	return pending, nil
}

// ListHistory returns every sale, newest id first.
func (s *Service) ListHistory(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int { return cmp.Compare(b.ID, a.ID) })
	return sales, nil
}

func (s *Service) Analytics(ctx context.Context) (domain.AnalyticsReport, error) {
	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return domain.AnalyticsReport{}, err
	}
	return s.analytics.Report(ctx, sales), nil
}

// DeleteSale removes the sale with the given id and reports how many were removed.
func (s *Service) DeleteSale(ctx context.Context, id int64) (int, error) {
	return s.removeSales(ctx, func(sale domain.Sale) bool { return sale.ID == id })
}

// DeleteSalesInRange removes every sale created within [start, end], both ends included.
func (s *Service) DeleteSalesInRange(ctx context.Context, start time.Time, end time.Time) (int, error) {
	if start.IsZero() || end.IsZero() {
		return 0, fmt.Errorf("%w: start and end are required", store.ErrValidation)
	}
	if start.After(end) {
		return 0, fmt.Errorf("%w: start must not be after end", store.ErrValidation)
	}

	return s.removeSales(ctx, func(sale domain.Sale) bool {
		return !sale.CreatedAt.Before(start) && !sale.CreatedAt.After(end)
	})
}

func (s *Service) removeSales(ctx context.Context, match func(domain.Sale) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		if !match(sale) {
			kept = append(kept, sale)
		}
	}
	removed := len(sales) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.repo.SaveSales(ctx, kept); err != nil {
		return 0, err
	}

	s.log.Info("sales deleted", zap.Int("removed", removed), zap.Int("remaining", len(kept)))
	return removed, nil
}

// ExportRows flattens sales into one row per distinct product per sale, in
// stored sale order. Quantity counts the lines sharing an id; the unit price is
// the one captured on the first such line.
func (s *Service) ExportRows(ctx context.Context) ([]domain.ExportRow, error) {
	sales, err := s.repo.LoadSales(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ExportRow, 0, len(sales))
	for _, sale := range sales {
		saleRows := make([]domain.ExportRow, 0, len(sale.Items))
		index := make(map[int64]int, len(sale.Items))
		for _, item := range sale.Items {
			pos, seen := index[item.ID]
			if !seen {
				pos = len(saleRows)
				index[item.ID] = pos
				saleRows = append(saleRows, domain.ExportRow{
					SaleID:    sale.ID,
					CreatedAt: sale.CreatedAt,
					Product:   item.Name,
					UnitPrice: item.Price,
				})
			}
			saleRows[pos].Quantity++
		}
		for i := range saleRows {
			saleRows[i].Subtotal = saleRows[i].UnitPrice * int64(saleRows[i].Quantity)
		}
		if len(saleRows) > 0 {
			discount := sale.Discount
			saleRows[0].Discount = &discount
		}
		rows = append(rows, saleRows...)
	}
	return rows, nil
}

func validateCreateRequest(req domain.SaleCreateRequest) error {
	if req.Discount < 0 {
		return fmt.Errorf("%w: discount must not be negative", store.ErrValidation)
	}
	if req.Total != nil && *req.Total < 0 {
		return fmt.Errorf("%w: total must not be negative", store.ErrValidation)
	}
	if req.FinalTotal != nil && *req.FinalTotal < 0 {
		return fmt.Errorf("%w: finalTotal must not be negative", store.ErrValidation)
	}
	for i, line := range req.Cart {
		if line.ID < 1 {
			return fmt.Errorf("%w: cart line %d has no product id", store.ErrValidation, i)
		}
		if line.Price < 0 {
			return fmt.Errorf("%w: cart line %d has a negative price", store.ErrValidation, i)
		}
	}
	return nil
}

func initialItemStatus(items []domain.CartLine) map[int64]domain.ItemStatus {
	status := make(map[int64]domain.ItemStatus, len(items))
	for _, item := range items {
		status[item.ID] = domain.ItemUndelivered
	}
	return status
}

// aggregateStatus is delivered only when every tracked item is; a sale that
// tracks nothing counts as delivered.
func aggregateStatus(items map[int64]domain.ItemStatus) domain.SaleStatus {
	for _, status := range items {
		if status != domain.ItemDelivered {
			return domain.SaleUndelivered
		}
	}
	return domain.SaleDelivered
}

func indexOfSale(sales []domain.Sale, id int64) int {
	for i, sale := range sales {
		if sale.ID == id {
			return i
		}
	}
	return -1
}
