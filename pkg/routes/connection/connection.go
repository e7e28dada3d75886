package connection

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/linker"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Linker runs and queries linking runs.
type Linker interface {
	Recompute(ctx context.Context, trigger string) (*linker.RunResult, error)
	Connections(ctx context.Context) ([]models.Connection, error)
	Stats(ctx context.Context) (models.ConnectionStats, error)
	Insights(ctx context.Context) (models.InsightReport, error)
}

// Handler handles connection routes
type Handler struct {
	linker Linker
	logger ectologger.Logger
}

// NewHandler creates a new connection handler
func NewHandler(linker Linker, logger ectologger.Logger) *Handler {
	return &Handler{
		linker: linker,
		logger: logger,
	}
}

// RegisterRoutes registers connection routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/connections/recompute", h.Recompute)
	g.GET("/connections", h.List)
	g.GET("/connections/stats", h.Stats)
	g.GET("/connections/insights", h.Insights)
}

// Recompute runs a full linking pass over the imported data
func (h *Handler) Recompute(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.linker.Recompute(ctx, "manual")
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// List returns every connection from the latest run
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	conns, err := h.linker.Connections(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, conns)
}

// Stats returns aggregate statistics for the latest run
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.linker.Stats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

// Insights returns the generated insight report for the latest run
func (h *Handler) Insights(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.linker.Insights(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}
