package service

import (
	"fmt"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

// PricingPolicy decides where the totals of a new sale come from. Edits are
// always repriced from the catalog regardless of the policy.
type PricingPolicy string

const (
	// PricingClient stores the totals the checkout terminal computed.
	PricingClient PricingPolicy = "client"
	// PricingCatalog recomputes totals from current catalog prices at checkout too.
	PricingCatalog PricingPolicy = "catalog"
)

func ParsePricingPolicy(raw string) (PricingPolicy, error) {
	switch PricingPolicy(raw) {
	case PricingClient, PricingCatalog:
		return PricingPolicy(raw), nil
	default:
		return "", fmt.Errorf("unknown pricing policy %q", raw)
	}
}

// priceNewSale returns total and finalTotal for a sale being created. An empty
// cart is always worth zero. catalog is only read under PricingCatalog.
func priceNewSale(policy PricingPolicy, req domain.SaleCreateRequest, catalog []domain.Product) (int64, int64) {
	if len(req.Cart) == 0 {
		return 0, 0
	}

	if policy == PricingCatalog {
		total := catalogTotal(req.Cart, catalog)
		return total, applyDiscount(total, req.Discount)
	}

	var total int64
	if req.Total != nil {
		total = *req.Total
	} else {
		for _, line := range req.Cart {
			total += line.Price
		}
	}

	finalTotal := applyDiscount(total, req.Discount)
	if req.FinalTotal != nil {
		finalTotal = *req.FinalTotal
	}
	return total, finalTotal
}

// checkClientTotals rejects a supplied finalTotal that disagrees with the
// supplied (or derived) total and the discount. Only PricingClient stores
// client totals, so only that policy needs the check.
func checkClientTotals(policy PricingPolicy, req domain.SaleCreateRequest) error {
	if policy != PricingClient || req.FinalTotal == nil || len(req.Cart) == 0 {
		return nil
	}

	var total int64
	if req.Total != nil {
		total = *req.Total
	} else {
		for _, line := range req.Cart {
			total += line.Price
		}
	}
	if want := applyDiscount(total, req.Discount); *req.FinalTotal != want {
		return fmt.Errorf("%w: finalTotal %d does not match total %d less discount %d (want %d)",
			store.ErrValidation, *req.FinalTotal, total, req.Discount, want)
	}
	return nil
}

// catalogTotal sums the current catalog price of every line. Ids missing from
// the catalog add nothing.
func catalogTotal(lines []domain.CartLine, catalog []domain.Product) int64 {
	prices := make(map[int64]int64, len(catalog))
	for _, p := range catalog {
		prices[p.ID] = p.Price
	}

	var total int64
	for _, line := range lines {
		total += prices[line.ID]
	}
	return total
}

func applyDiscount(total int64, discount int64) int64 {
	if final := total - discount; final > 0 {
		return final
	}
	return 0
}
