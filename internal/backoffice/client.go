// Package backoffice is a small HTTP client for the administrative sale
// endpoints: previewing ids, pulling history and reports, and purging sales.
package backoffice

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"warungpos/backend/internal/domain"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) NextSaleID(ctx context.Context) (int64, error) {
	var out domain.NextIDResponse
	if err := c.get(ctx, "/api/next-order-id", &out); err != nil {
		return 0, err
	}
	return out.NextID, nil
}

func (c *Client) History(ctx context.Context) ([]domain.Sale, error) {
	var out []domain.Sale
	if err := c.get(ctx, "/api/sales/history", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Analytics(ctx context.Context) (domain.AnalyticsReport, error) {
	var out domain.AnalyticsReport
	if err := c.get(ctx, "/api/sales/analytics", &out); err != nil {
		return domain.AnalyticsReport{}, err
	}
	return out, nil
}

// ExportCSV returns the raw CSV document, BOM included.
func (c *Client) ExportCSV(ctx context.Context) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv").
		SetError(&errorBody{}).
		Get("/api/sales/csv")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// DeleteSale removes one sale and reports whether it existed.
func (c *Client) DeleteSale(ctx context.Context, id int64) (int, error) {
	var out domain.DeleteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Delete("/api/sales/" + strconv.FormatInt(id, 10))
	if err != nil {
		return 0, err
	}
	if err := checkResponse(resp); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

// PurgeRange deletes every sale created within [start, end]. Bounds are sent
// as given; the server accepts RFC 3339 as well as plain dates.
func (c *Client) PurgeRange(ctx context.Context, start, end string) (int, error) {
	var out domain.DeleteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("start", start).
		SetQueryParam("end", end).
		SetResult(&out).
		SetError(&errorBody{}).
		Delete("/api/sales")
	if err != nil {
		return 0, err
	}
	if err := checkResponse(resp); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(dest).
		SetError(&errorBody{}).
		Get(path)
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
