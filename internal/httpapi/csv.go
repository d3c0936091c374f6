package httpapi

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"time"

	"warungpos/backend/internal/domain"
)

const (
	csvTimeLayout = "2006/01/02 15:04:05"
	utf8BOM       = "\ufeff"
)

var csvHeader = []string{"sale_id", "created_at", "product", "quantity", "unit_price", "subtotal", "discount"}

func (a *API) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := a.service.ExportRows(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales_data.csv"`)
	w.WriteHeader(http.StatusOK)
	_ = writeSalesCSV(w, rows, a.exportLoc)
}

// writeSalesCSV emits a BOM so spreadsheet tools pick UTF-8, then one record
// per export row. The discount column is blank except on a sale's first row.
func writeSalesCSV(out io.Writer, rows []domain.ExportRow, loc *time.Location) error {
	if _, err := io.WriteString(out, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		discount := ""
		if row.Discount != nil {
			discount = strconv.FormatInt(*row.Discount, 10)
		}
		record := []string{
			strconv.FormatInt(row.SaleID, 10),
			row.CreatedAt.In(loc).Format(csvTimeLayout),
			row.Product,
			strconv.Itoa(row.Quantity),
			strconv.FormatInt(row.UnitPrice, 10),
			strconv.FormatInt(row.Subtotal, 10),
			discount,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
