package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeReader struct {
	orders     []models.Order
	lastLimit  int
	lastOffset int
}

func (f *fakeReader) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return f.orders, nil
}

func (f *fakeReader) Get(ctx context.Context, id string) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			return &f.orders[i], nil
		}
	}
	return nil, httperror.NewHTTPError(http.StatusNotFound, "order not found")
}

type fakeImporter struct {
	imported []models.OrderExport
}

func (f *fakeImporter) ImportOrders(ctx context.Context, exports []models.OrderExport) (int, error) {
	f.imported = exports
	return len(exports), nil
}

type fakeConnectedAccounts struct {
	accounts []models.CreditAccount
}

func (f *fakeConnectedAccounts) AccountsForOrder(ctx context.Context, orderID string) ([]models.CreditAccount, error) {
	return f.accounts, nil
}

func newTestServer(reader Reader, importer Importer, linker ConnectedAccounts) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logging.NewNop())
	handler := NewHandler(reader, importer, linker, logging.NewNop())
	handler.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestHandler_Import(t *testing.T) {
	t.Run("ValidPayload", func(t *testing.T) {
		importer := &fakeImporter{}
		e := newTestServer(&fakeReader{}, importer, &fakeConnectedAccounts{})

		body := `[{"id": "ord-1", "data": {"customerName": "Joao Silva", "total": 80.0}}]`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/import", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, importer.imported, 1)
		assert.Equal(t, "ord-1", importer.imported[0].ID)
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		e := newTestServer(&fakeReader{}, &fakeImporter{}, &fakeConnectedAccounts{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/import", strings.NewReader("not json"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_List(t *testing.T) {
	t.Run("PassesPagingParams", func(t *testing.T) {
		reader := &fakeReader{orders: []models.Order{{ID: "ord-1"}}}
		e := newTestServer(reader, &fakeImporter{}, &fakeConnectedAccounts{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=10&offset=20", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 10, reader.lastLimit)
		assert.Equal(t, 20, reader.lastOffset)
	})

	t.Run("RejectsBadOffset", func(t *testing.T) {
		e := newTestServer(&fakeReader{}, &fakeImporter{}, &fakeConnectedAccounts{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?offset=abc", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Get(t *testing.T) {
	total := 80.0
	reader := &fakeReader{orders: []models.Order{{ID: "ord-1", CustomerName: "Joao Silva", Total: &total}}}
	e := newTestServer(reader, &fakeImporter{}, &fakeConnectedAccounts{})

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ord-1", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var order models.Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
		assert.Equal(t, "Joao Silva", order.CustomerName)
	})

	t.Run("NotFound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ord-missing", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Accounts(t *testing.T) {
	linker := &fakeConnectedAccounts{accounts: []models.CreditAccount{{ID: "acc-1"}}}
	e := newTestServer(&fakeReader{}, &fakeImporter{}, linker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ord-1/accounts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var accounts []models.CreditAccount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc-1", accounts[0].ID)
}
