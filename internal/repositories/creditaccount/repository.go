// Package creditaccount persists imported credit accounts.
package creditaccount

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

const accountTable = "credit_accounts"

var accountColumns = []string{
	"id", "customer_name", "is_active", "total_consumption", "total_payments",
	"balance", "transaction_count", "last_activity_at", "created_at", "updated_at",
}

// Repository handles credit account persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new credit account repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// UpsertBatch writes a batch of accounts, replacing any existing rows with
// the same id. Re-importing the same export file is a no-op apart from
// updated_at.
func (r *Repository) UpsertBatch(ctx context.Context, accounts []models.CreditAccount) error {
	ctx, span := tracing.StartSpan(ctx, "creditaccount.Repository.UpsertBatch")
	defer span.End()

	if len(accounts) == 0 {
		return nil
	}

	now := time.Now().UTC()
	ib := database.NewInsertBuilder()
	ib.InsertInto(accountTable)
	ib.Cols(accountColumns...)

	for _, account := range accounts {
		if account.UpdatedAt.IsZero() {
			account.UpdatedAt = now
		}
		ib.Values(account.ID, account.CustomerName, account.IsActive, account.TotalConsumption,
			account.TotalPayments, account.Balance, account.TransactionCount,
			account.LastActivityAt, account.CreatedAt, account.UpdatedAt)
	}

	ub := ib.OnConflict("id")
	ub.Set(
		ub.Assign("customer_name", database.Excluded("customer_name")),
		ub.Assign("is_active", database.Excluded("is_active")),
		ub.Assign("total_consumption", database.Excluded("total_consumption")),
		ub.Assign("total_payments", database.Excluded("total_payments")),
		ub.Assign("balance", database.Excluded("balance")),
		ub.Assign("transaction_count", database.Excluded("transaction_count")),
		ub.Assign("last_activity_at", database.Excluded("last_activity_at")),
		ub.Assign("updated_at", now),
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert credit accounts")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert credit accounts")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(accounts)}).Debug("Upserted credit accounts")
	return nil
}

// Get retrieves a credit account by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.CreditAccount, error) {
	ctx, span := tracing.StartSpan(ctx, "creditaccount.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(accountColumns...)
	sb.From(accountTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var account models.CreditAccount
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("credit account %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get credit account")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get credit account")
	}

	return &account, nil
}

// List retrieves credit accounts, most recently created first. A limit
// of zero or less returns everything.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.CreditAccount, error) {
	ctx, span := tracing.StartSpan(ctx, "creditaccount.Repository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(accountColumns...)
	sb.From(accountTable)
	sb.OrderBy("created_at DESC", "id")
	if limit > 0 {
		sb.Limit(limit)
	}
	if offset > 0 {
		sb.Offset(offset)
	}

	query, args := sb.Build()
	var accounts []models.CreditAccount
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list credit accounts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list credit accounts")
	}

	return accounts, nil
}
