package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/logger"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store"
)

const maxJSONBody = 1 << 20

type API struct {
	service       *service.Service
	log           *zap.Logger
	allowedOrigin string
	exportLoc     *time.Location
}

// New wires the HTTP surface. exportLoc is the zone CSV timestamps are
// rendered in; nil means UTC.
func New(svc *service.Service, log *zap.Logger, allowedOrigin string, exportLoc *time.Location) *API {
	if log == nil {
		log = zap.NewNop()
	}
	if exportLoc == nil {
		exportLoc = time.UTC
	}
	return &API{
		service:       svc,
		log:           log,
		allowedOrigin: allowedOrigin,
		exportLoc:     exportLoc,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealth)

	mux.HandleFunc("GET /api/products", a.handleListProducts)
	mux.HandleFunc("POST /api/products", a.handleCreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", a.handleUpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", a.handleDeleteProduct)

	mux.HandleFunc("GET /api/next-order-id", a.handleNextOrderID)
	mux.HandleFunc("POST /api/sales", a.handleCreateSale)
	mux.HandleFunc("PUT /api/sales/{id}", a.handleUpdateSale)
	mux.HandleFunc("DELETE /api/sales", a.handleDeleteSalesInRange)
	mux.HandleFunc("DELETE /api/sales/{id}", a.handleDeleteSale)
	mux.HandleFunc("GET /api/sales/analytics", a.handleAnalytics)
	mux.HandleFunc("GET /api/sales/history", a.handleHistory)
	mux.HandleFunc("GET /api/sales/csv", a.handleExportCSV)

	mux.HandleFunc("GET /api/kitchen/undelivered", a.handleUndelivered)
	mux.HandleFunc("POST /api/kitchen/order/{orderId}/item/{productId}/complete", a.handleCompleteItem)

	return a.withMiddleware(mux)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := a.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	removed, err := a.service.DeleteProduct(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.DeleteResponse{Deleted: removed})
}

func (a *API) handleNextOrderID(w http.ResponseWriter, r *http.Request) {
	next, err := a.service.NextSaleID(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NextIDResponse{NextID: next})
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Cart) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("cart must contain at least one item"))
		return
	}

	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.SaleResponse{Sale: sale})
}

func (a *API) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.SaleUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sale, err := a.service.UpdateSaleItems(r.Context(), id, req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SaleResponse{Sale: sale})
}

func (a *API) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	removed, err := a.service.DeleteSale(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.DeleteResponse{Deleted: removed})
}

func (a *API) handleDeleteSalesInRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseBound(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("start: %w", err))
		return
	}
	end, err := parseBound(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("end: %w", err))
		return
	}

	removed, err := a.service.DeleteSalesInRange(r.Context(), start, end)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.DeleteResponse{Deleted: removed})
}

func (a *API) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.Analytics(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	sales, err := a.service.ListHistory(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (a *API) handleUndelivered(w http.ResponseWriter, r *http.Request) {
	sales, err := a.service.ListUndelivered(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (a *API) handleCompleteItem(w http.ResponseWriter, r *http.Request) {
	saleID, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}

	sale, err := a.service.MarkItemDelivered(r.Context(), saleID, productID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SaleResponse{Sale: sale})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		requestID := strings.TrimSpace(r.Header.Get(logger.RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(logger.RequestIDHeader, requestID)
		}
		w.Header().Set(logger.RequestIDHeader, requestID)

		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
	return logger.RequestLog(inner, a.log)
}

// writeServiceError maps engine errors onto status codes. Storage failures are
// logged in full and reported generically.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	default:
		a.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, raw))
		return 0, false
	}
	return id, true
}

// boundLayouts are tried in order. Layouts without a zone are read as UTC.
var boundLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseBound(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date bound is required", store.ErrValidation)
	}
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", store.ErrValidation, raw)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}
