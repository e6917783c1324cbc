package report

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/abduss/storefront/internal/gateway/gatewaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRevenueSendsISODates(t *testing.T) {
	api := gatewaytest.New().OK(http.MethodGet, "/reports/revenue",
		`{"success":true,"data":[{"label":"2026-01-01","revenue":120.5}]}`)

	rows, err := NewService(api).Revenue(context.Background(), day("2026-01-01"), day("2026-01-31"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 120.5, rows[0].Revenue, 0.001)

	q := api.Last().Query
	assert.Equal(t, "2026-01-01", q.Get("from"))
	assert.Equal(t, "2026-01-31", q.Get("to"))
}

func TestRevenueRejectsBadRange(t *testing.T) {
	api := gatewaytest.New()
	service := NewService(api)

	_, err := service.Revenue(context.Background(), day("2026-02-01"), day("2026-01-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = service.Revenue(context.Background(), time.Time{}, day("2026-01-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Empty(t, api.Requests())
}

func TestOrderStatusRepeatsStatuses(t *testing.T) {
	api := gatewaytest.New().OK(http.MethodGet, "/reports/orders/status",
		`{"success":true,"data":[{"status":"PENDING","total":3}]}`)

	_, err := NewService(api).OrderStatus(context.Background(), day("2026-01-01"), day("2026-01-02"), "pending", " ", "delivered")
	require.NoError(t, err)
	assert.Equal(t, []string{"PENDING", "DELIVERED"}, api.Last().Query["statuses"])
}

func TestCountOrdersAllowsOpenRange(t *testing.T) {
	api := gatewaytest.New().OK(http.MethodGet, "/reports/orders/count",
		`{"success":true,"message":"Count orders successfully","data":{"from":null,"to":null,"totalOrders":42}}`)

	count, err := NewService(api).CountOrders(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 42, count.TotalOrders)
	assert.Empty(t, api.Last().Query)
}

func TestExportOrdersUsesContentDisposition(t *testing.T) {
	api := gatewaytest.New().On(http.MethodGet, "/reports/orders/export", gatewaytest.Reply{
		Status: http.StatusOK,
		Header: http.Header{
			"Content-Disposition": []string{"attachment; filename=orders_3_2026.xlsx"},
			"Content-Type":        []string{ContentTypeXLSX},
		},
		Body: "PK\x03\x04",
	})

	exp, err := NewService(api).ExportOrders(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, "orders_3_2026.xlsx", exp.Filename)
	assert.Equal(t, ContentTypeXLSX, exp.ContentType)
	assert.Equal(t, []byte("PK\x03\x04"), exp.Data)
	assert.Equal(t, "3", api.Last().Query.Get("month"))
}

func TestExportOrdersFallsBackToBackendName(t *testing.T) {
	api := gatewaytest.New().OK(http.MethodGet, "/reports/orders/export", "data")

	exp, err := NewService(api).ExportOrders(context.Background(), 2025, 0)
	require.NoError(t, err)
	assert.Equal(t, "orders_2025.xlsx", exp.Filename)
	assert.Equal(t, ContentTypeXLSX, exp.ContentType)
	assert.Empty(t, api.Last().Query.Get("month"))

	_, err = NewService(api).ExportOrders(context.Background(), 2025, 13)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "orders_11_2024.xlsx", ExportFilename(2024, 11))
	assert.Equal(t, "orders_2024.xlsx", ExportFilename(2024, 0))
}
