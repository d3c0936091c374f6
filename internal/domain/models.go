package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Color string `json:"color"`
}

// ProductInput is the body accepted by product create and update.
type ProductInput struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Color string `json:"color,omitempty"`
}

// CartLine is a product snapshot taken when the item was put in the cart.
// Several lines with the same ID mean a quantity above one.
type CartLine struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Color string `json:"color,omitempty"`
}

type ItemStatus string

const (
	ItemUndelivered ItemStatus = "undelivered"
	ItemDelivered   ItemStatus = "delivered"
)

type SaleStatus string

const (
	SaleUndelivered SaleStatus = "undelivered"
	SaleDelivered   SaleStatus = "delivered"
)

type Sale struct {
	ID         int64                `json:"id"`
	Items      []CartLine           `json:"items"`
	ItemStatus map[int64]ItemStatus `json:"itemStatus"`
	Total      int64                `json:"total"`
	Discount   int64                `json:"discount"`
	FinalTotal int64                `json:"finalTotal"`
	Status     SaleStatus           `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (s Sale) Clone() Sale {
	out := s
	if s.Items != nil {
		out.Items = make([]CartLine, len(s.Items))
		copy(out.Items, s.Items)
	}
	if s.ItemStatus != nil {
		out.ItemStatus = make(map[int64]ItemStatus, len(s.ItemStatus))
		for id, status := range s.ItemStatus {
			out.ItemStatus[id] = status
		}
	}
	return out
}

type SaleCreateRequest struct {
	Cart       []CartLine `json:"cart"`
	Total      *int64     `json:"total,omitempty"`
	Discount   int64      `json:"discount"`
	FinalTotal *int64     `json:"finalTotal,omitempty"`
}

// SaleUpdateRequest replaces the lines of a stored sale. A nil Items means the
// caller did not send a list at all.
type SaleUpdateRequest struct {
	Items []CartLine `json:"items"`
}

// UnmarshalJSON leaves Items nil when "items" is missing or is not a list of
// cart lines, so the sale lookup can still answer not-found before the body is
// judged. Unknown keys at either level are still rejected.
func (r *SaleUpdateRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items json.RawMessage `json:"items"`
	}
	outer := json.NewDecoder(bytes.NewReader(data))
	outer.DisallowUnknownFields()
	if err := outer.Decode(&raw); err != nil {
		return err
	}

	r.Items = nil
	if len(raw.Items) == 0 || bytes.Equal(raw.Items, []byte("null")) {
		return nil
	}
	var lines []CartLine
	inner := json.NewDecoder(bytes.NewReader(raw.Items))
	inner.DisallowUnknownFields()
	if err := inner.Decode(&lines); err != nil {
		return nil
	}
	if lines == nil {
		lines = []CartLine{}
	}
	r.Items = lines
	return nil
}

type SaleResponse struct {
	Sale Sale `json:"sale"`
}

type NextIDResponse struct {
	NextID int64 `json:"nextId"`
}

type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

type ProductAnalytics struct {
	ProductID    int64  `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	TotalRevenue int64  `json:"totalRevenue"`
}

type AnalyticsReport struct {
	Analytics        []ProductAnalytics `json:"analytics"`
	TotalSalesAmount int64              `json:"totalSalesAmount"`
}

// ExportRow is one CSV line: a single product within a single sale.
type ExportRow struct {
	SaleID    int64
	CreatedAt time.Time
	Product   string
	Quantity  int
	UnitPrice int64
	Subtotal  int64
	// Discount is only set on the first row of each sale.
	Discount *int64
}
