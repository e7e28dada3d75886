package account

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

// Reader lists and fetches stored credit accounts.
type Reader interface {
	List(ctx context.Context, limit, offset int) ([]models.CreditAccount, error)
	Get(ctx context.Context, id string) (*models.CreditAccount, error)
}

// Importer ingests credit account export records.
type Importer interface {
	ImportAccounts(ctx context.Context, exports []models.CreditAccountExport) (int, error)
}

// ConnectedOrders resolves the orders linked to an account.
type ConnectedOrders interface {
	OrdersForAccount(ctx context.Context, accountID string) ([]models.Order, error)
}

// Handler handles credit account routes
type Handler struct {
	reader   Reader
	importer Importer
	linker   ConnectedOrders
	logger   ectologger.Logger
}

// NewHandler creates a new credit account handler
func NewHandler(reader Reader, importer Importer, linker ConnectedOrders, logger ectologger.Logger) *Handler {
	return &Handler{
		reader:   reader,
		importer: importer,
		linker:   linker,
		logger:   logger,
	}
}

// RegisterRoutes registers credit account routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/accounts/import", h.Import)
	g.GET("/accounts", h.List)
	g.GET("/accounts/:id", h.Get)
	g.GET("/accounts/:id/orders", h.Orders)
}

// Import ingests a credit account export payload
func (h *Handler) Import(c echo.Context) error {
	ctx := c.Request().Context()

	exports, err := ingest.ParseAccountExports(c.Request().Body)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid credit account export payload")
	}

	count, err := h.importer.ImportAccounts(ctx, exports)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"received": len(exports),
		"imported": count,
	})
}

// List returns stored credit accounts, optionally paged with the limit
// and offset query parameters
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := parsePaging(c)
	if err != nil {
		return err
	}

	accounts, err := h.reader.List(ctx, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, accounts)
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

// Get returns a single credit account by id
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := h.reader.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

// Orders returns the orders connected to a credit account, best match first
func (h *Handler) Orders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.linker.OrdersForAccount(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}
