package account

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
	accounts   []models.CreditAccount
	lastLimit  int
	lastOffset int
}

func (f *fakeReader) List(ctx context.Context, limit, offset int) ([]models.CreditAccount, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return f.accounts, nil
}

func (f *fakeReader) Get(ctx context.Context, id string) (*models.CreditAccount, error) {
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			return &f.accounts[i], nil
		}
	}
	return nil, httperror.NewHTTPError(http.StatusNotFound, "credit account not found")
}

type fakeImporter struct {
	imported []models.CreditAccountExport
}

func (f *fakeImporter) ImportAccounts(ctx context.Context, exports []models.CreditAccountExport) (int, error) {
	f.imported = exports
	return len(exports), nil
}

type fakeConnectedOrders struct {
	orders []models.Order
}

func (f *fakeConnectedOrders) OrdersForAccount(ctx context.Context, accountID string) ([]models.Order, error) {
	return f.orders, nil
}

func newTestServer(reader Reader, importer Importer, linker ConnectedOrders) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logging.NewNop())
	handler := NewHandler(reader, importer, linker, logging.NewNop())
	handler.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestHandler_Import(t *testing.T) {
	t.Run("ValidPayload", func(t *testing.T) {
		importer := &fakeImporter{}
		e := newTestServer(&fakeReader{}, importer, &fakeConnectedOrders{})

		body := `[{"id": "acc-1", "customerName": "João Silva", "history": []}]`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/import", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, importer.imported, 1)
		assert.Equal(t, "acc-1", importer.imported[0].ID)

		var resp map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp["imported"])
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		e := newTestServer(&fakeReader{}, &fakeImporter{}, &fakeConnectedOrders{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/import", strings.NewReader("{not json"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_List(t *testing.T) {
	t.Run("PassesPagingParams", func(t *testing.T) {
		reader := &fakeReader{accounts: []models.CreditAccount{{ID: "acc-1"}}}
		e := newTestServer(reader, &fakeImporter{}, &fakeConnectedOrders{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts?limit=25&offset=50", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 25, reader.lastLimit)
		assert.Equal(t, 50, reader.lastOffset)
	})

	t.Run("RejectsNegativeLimit", func(t *testing.T) {
		e := newTestServer(&fakeReader{}, &fakeImporter{}, &fakeConnectedOrders{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts?limit=-1", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Get(t *testing.T) {
	reader := &fakeReader{accounts: []models.CreditAccount{{ID: "acc-1", CustomerName: "João Silva"}}}
	e := newTestServer(reader, &fakeImporter{}, &fakeConnectedOrders{})

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acc-1", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var account models.CreditAccount
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
		assert.Equal(t, "João Silva", account.CustomerName)
	})

	t.Run("NotFound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acc-missing", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Orders(t *testing.T) {
	linker := &fakeConnectedOrders{orders: []models.Order{{ID: "ord-1"}, {ID: "ord-2"}}}
	e := newTestServer(&fakeReader{}, &fakeImporter{}, linker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acc-1/orders", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-1", orders[0].ID)
}
