// Package connection persists the output of linking runs.
package connection

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles connection persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new connection repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ReplaceAll swaps the whole connection set for the output of a new
// linking run. Delete and insert happen in one transaction so readers
// never observe a half-replaced set.
func (r *Repository) ReplaceAll(ctx context.Context, runID string, conns []models.Connection) error {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.ReplaceAll")
	defer span.End()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	// Rollback with the opener's context; with txCtx it would be treated
	// as borrowed and skipped, leaving the transaction open on error.
	defer tx.Rollback(ctx)

	delb := database.NewDeleteBuilder()
	delb.DeleteFrom(connectionTable)
	query, args := delb.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		r.logger.WithContext(txCtx).WithError(err).Error("Failed to clear connections")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear connections")
	}

	if len(conns) > 0 {
		now := time.Now().UTC()
		ib := database.NewInsertBuilder()
		ib.InsertInto(connectionTable)
		ib.Cols(connectionColumns...)

		for _, conn := range conns {
			if conn.ID == "" {
				conn.ID = uuid.New().String()
			}
			conn.RunID = runID
			if conn.CreatedAt.IsZero() {
				conn.CreatedAt = now
			}
			row := fromConnection(conn)
			ib.Values(row.ID, row.RunID, row.AccountID, row.CustomerName, row.MatchedOrderIDs,
				row.Confidence, row.NameMatch, row.ValueMatch, row.DateMatch, row.CreatedAt)
		}

		query, args = ib.Build()
		if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
			r.logger.WithContext(txCtx).WithError(err).Error("Failed to insert connections")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert connections")
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit connections")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id": runID,
		"count":  len(conns),
	}).Info("Replaced connection set")
	return nil
}

// List retrieves every connection, highest confidence first
func (r *Repository) List(ctx context.Context) ([]models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(connectionColumns...)
	sb.From(connectionTable)
	sb.OrderBy("confidence DESC", "account_id")

	query, args := sb.Build()
	var rows []connectionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list connections")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list connections")
	}

	return toConnections(rows), nil
}

// GetByAccount retrieves the connection for one account. A missing row is
// not an error: an unconnected account is a normal outcome of a run.
func (r *Repository) GetByAccount(ctx context.Context, accountID string) (*models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.GetByAccount")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(connectionColumns...)
	sb.From(connectionTable)
	sb.Where(sb.Equal("account_id", accountID))

	query, args := sb.Build()
	var row connectionRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get connection by account")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get connection")
	}

	conn := row.toConnection()
	return &conn, nil
}

// ListByOrder retrieves every connection whose matched order list contains
// the given order id, using jsonb containment.
func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.ListByOrder")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(connectionColumns...)
	sb.From(connectionTable)
	sb.Where("matched_order_ids @> " + sb.Var(models.StringList{orderID}) + "::jsonb")
	sb.OrderBy("confidence DESC")

	query, args := sb.Build()
	var rows []connectionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list connections by order")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list connections by order")
	}

	return toConnections(rows), nil
}
