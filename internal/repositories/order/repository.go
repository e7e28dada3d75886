// Package order persists imported orders.
package order

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const orderTable = "orders"

var orderColumns = []string{
	"id", "order_number", "customer_name", "customer_phone", "total", "total_amount",
	"status", "payment_method", "placed_at", "created_at", "updated_at",
}

// Repository handles order persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new order repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// UpsertBatch writes a batch of orders, replacing any existing rows with
// the same id.
func (r *Repository) UpsertBatch(ctx context.Context, orders []models.Order) error {
	ctx, span := tracing.StartSpan(ctx, "order.Repository.UpsertBatch")
	defer span.End()

	if len(orders) == 0 {
		return nil
	}

	now := time.Now().UTC()
	ib := database.NewInsertBuilder()
	ib.InsertInto(orderTable)
	ib.Cols(orderColumns...)

	for _, order := range orders {
		if order.UpdatedAt.IsZero() {
			order.UpdatedAt = now
		}
		ib.Values(order.ID, order.OrderNumber, order.CustomerName, order.CustomerPhone,
			order.Total, order.TotalAmount, order.Status, order.PaymentMethod,
			order.PlacedAt, order.CreatedAt, order.UpdatedAt)
	}

	ub := ib.OnConflict("id")
	ub.Set(
		ub.Assign("order_number", database.Excluded("order_number")),
		ub.Assign("customer_name", database.Excluded("customer_name")),
		ub.Assign("customer_phone", database.Excluded("customer_phone")),
		ub.Assign("total", database.Excluded("total")),
		ub.Assign("total_amount", database.Excluded("total_amount")),
		ub.Assign("status", database.Excluded("status")),
		ub.Assign("payment_method", database.Excluded("payment_method")),
		ub.Assign("placed_at", database.Excluded("placed_at")),
		ub.Assign("updated_at", now),
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert orders")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert orders")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(orders)}).Debug("Upserted orders")
	return nil
}

// Get retrieves an order by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "order.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(orderColumns...)
	sb.From(orderTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var order models.Order
	if err := r.db.GetContext(ctx, &order, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("order %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get order")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get order")
	}

	return &order, nil
}

// List retrieves orders, most recently placed first. A limit of zero or
// less returns everything.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "order.Repository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(orderColumns...)
	sb.From(orderTable)
	sb.OrderBy("placed_at DESC", "id")
	if limit > 0 {
		sb.Limit(limit)
	}
	if offset > 0 {
		sb.Offset(offset)
	}

	query, args := sb.Build()
	var orders []models.Order
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list orders")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list orders")
	}

	return orders, nil
}
