// Package report reads sales reports and downloads order exports.
package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abduss/storefront/internal/gateway"
)

// ContentTypeXLSX is the media type of order exports.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

var (
	ErrInvalidRange = errors.New("invalid report range")
	ErrEmptyExport  = errors.New("export is empty")
)

type apiClient interface {
	Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

// Revenue is the revenue for one label (usually a day).
type Revenue struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// StatusTotal counts orders in one status.
type StatusTotal struct {
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

// OrderCount is the number of orders placed in an optional date range.
type OrderCount struct {
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	TotalOrders int64  `json:"totalOrders"`
}

// Export is a downloaded spreadsheet.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	api apiClient
}

func NewService(api apiClient) *Service {
	return &Service{api: api}
}

// Revenue returns revenue per day between from and to inclusive.
func (s *Service) Revenue(ctx context.Context, from, to time.Time) ([]Revenue, error) {
	query, err := rangeQuery(from, to, true)
	if err != nil {
		return nil, err
	}
	var out []Revenue
	if err := s.get(ctx, "/reports/revenue", query, &out); err != nil {
		return nil, fmt.Errorf("revenue report: %w", err)
	}
	return out, nil
}

// OrderStatus returns order totals per status. An empty statuses list reports
// every status.
func (s *Service) OrderStatus(ctx context.Context, from, to time.Time, statuses ...string) ([]StatusTotal, error) {
	query, err := rangeQuery(from, to, true)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if st = strings.ToUpper(strings.TrimSpace(st)); st != "" {
			query.Add("statuses", st)
		}
	}
	var out []StatusTotal
	if err := s.get(ctx, "/reports/orders/status", query, &out); err != nil {
		return nil, fmt.Errorf("order status report: %w", err)
	}
	return out, nil
}

// CountOrders counts orders. Zero times leave that end of the range open.
func (s *Service) CountOrders(ctx context.Context, from, to time.Time) (OrderCount, error) {
	query, err := rangeQuery(from, to, false)
	if err != nil {
		return OrderCount{}, err
	}
	var out OrderCount
	if err := s.get(ctx, "/reports/orders/count", query, &out); err != nil {
		return OrderCount{}, fmt.Errorf("count orders: %w", err)
	}
	return out, nil
}

// ExportOrders downloads the order spreadsheet for a year, or for one month of
// it when month is between 1 and 12.
func (s *Service) ExportOrders(ctx context.Context, year, month int) (Export, error) {
	if year < 1 || month < 0 || month > 12 {
		return Export{}, fmt.Errorf("%w: year %d month %d", ErrInvalidRange, year, month)
	}
	query := url.Values{"year": []string{strconv.Itoa(year)}}
	if month > 0 {
		query.Set("month", strconv.Itoa(month))
	}

	resp, err := s.api.Do(ctx, &gateway.Request{
		Method: http.MethodGet,
		Path:   "/reports/orders/export",
		Query:  query,
		Header: http.Header{"Accept": []string{ContentTypeXLSX}},
	})
	if err != nil {
		return Export{}, fmt.Errorf("export orders: %w", err)
	}
	if len(resp.Body) == 0 {
		return Export{}, ErrEmptyExport
	}

	exp := Export{
		Filename:    resp.Filename(),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}
	if exp.Filename == "" {
		exp.Filename = ExportFilename(year, month)
	}
	if exp.ContentType == "" {
		exp.ContentType = ContentTypeXLSX
	}
	return exp, nil
}

// ExportFilename is the name the backend gives an export.
func ExportFilename(year, month int) string {
	if month > 0 {
		return fmt.Sprintf("orders_%d_%d.xlsx", month, year)
	}
	return fmt.Sprintf("orders_%d.xlsx", year)
}

func (s *Service) get(ctx context.Context, path string, query url.Values, dst any) error {
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return resp.Decode(dst)
}

func rangeQuery(from, to time.Time, required bool) (url.Values, error) {
	if required && (from.IsZero() || to.IsZero()) {
		return nil, fmt.Errorf("%w: from and to are required", ErrInvalidRange)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to.Format(dateLayout), from.Format(dateLayout))
	}
	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.Format(dateLayout))
	}
	if !to.IsZero() {
		query.Set("to", to.Format(dateLayout))
	}
	return query, nil
}
