package order

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/ingest"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Reader lists and fetches stored orders.
type Reader interface {
	List(ctx context.Context, limit, offset int) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
}

// Importer ingests order export records.
type Importer interface {
	ImportOrders(ctx context.Context, exports []models.OrderExport) (int, error)
}

// ConnectedAccounts resolves the credit accounts that claim an order.
type ConnectedAccounts interface {
	AccountsForOrder(ctx context.Context, orderID string) ([]models.CreditAccount, error)
}

// Handler handles order routes
type Handler struct {
	reader   Reader
	importer Importer
	linker   ConnectedAccounts
	logger   ectologger.Logger
}

// NewHandler creates a new order handler
func NewHandler(reader Reader, importer Importer, linker ConnectedAccounts, logger ectologger.Logger) *Handler {
	return &Handler{
		reader:   reader,
		importer: importer,
		linker:   linker,
		logger:   logger,
	}
}

// RegisterRoutes registers order routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/orders/import", h.Import)
	g.GET("/orders", h.List)
	g.GET("/orders/:id", h.Get)
	g.GET("/orders/:id/accounts", h.Accounts)
}

// Import ingests an order export payload
func (h *Handler) Import(c echo.Context) error {
	ctx := c.Request().Context()

	exports, err := ingest.ParseOrderExports(c.Request().Body)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid order export payload")
	}

	count, err := h.importer.ImportOrders(ctx, exports)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"received": len(exports),
		"imported": count,
	})
}

// List returns stored orders, optionally paged with the limit and offset
// query parameters
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := parsePaging(c)
	if err != nil {
		return err
	}

	orders, err := h.reader.List(ctx, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func parsePaging(c echo.Context) (limit, offset int, err error) {
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return 0, 0, httperror.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, httperror.NewHTTPError(http.StatusBadRequest, "offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// Get returns a single order by id
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.reader.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

// Accounts returns the credit accounts whose connections include this order
func (h *Handler) Accounts(c echo.Context) error {
	ctx := c.Request().Context()

	accounts, err := h.linker.AccountsForOrder(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, accounts)
}
