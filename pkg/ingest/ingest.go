// Package ingest loads dashboard JSON exports into storage. Exports come
// either as request bodies on the import endpoints or as files fed to the
// importer command.
package ingest

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// AccountWriter persists imported credit accounts.
type AccountWriter interface {
	UpsertBatch(ctx context.Context, accounts []models.CreditAccount) error
}

// OrderWriter persists imported orders.
type OrderWriter interface {
	UpsertBatch(ctx context.Context, orders []models.Order) error
}

// CacheInvalidator drops cached linking results that newly imported data
// makes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service converts raw export records and writes them to storage.
type Service struct {
	logger   ectologger.Logger
	accounts AccountWriter
	orders   OrderWriter
	cache    CacheInvalidator
}

// NewService creates a new ingest service
func NewService(logger ectologger.Logger, accounts AccountWriter, orders OrderWriter, cache CacheInvalidator) *Service {
	return &Service{
		logger:   logger,
		accounts: accounts,
		orders:   orders,
		cache:    cache,
	}
}

// ParseAccountExports decodes a JSON array of credit account export records.
func ParseAccountExports(r io.Reader) ([]models.CreditAccountExport, error) {
	var exports []models.CreditAccountExport
	if err := json.NewDecoder(r).Decode(&exports); err != nil {
		return nil, errors.Wrap(err, "failed to decode credit account export")
	}
	return exports, nil
}

// ParseOrderExports decodes a JSON array of order export records.
func ParseOrderExports(r io.Reader) ([]models.OrderExport, error) {
	var exports []models.OrderExport
	if err := json.NewDecoder(r).Decode(&exports); err != nil {
		return nil, errors.Wrap(err, "failed to decode order export")
	}
	return exports, nil
}

// ImportAccounts converts and upserts account export records. Records
// without an id are skipped; the export occasionally carries trailing
// placeholder rows.
func (s *Service) ImportAccounts(ctx context.Context, exports []models.CreditAccountExport) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Service.ImportAccounts")
	defer span.End()

	accounts := make([]models.CreditAccount, 0, len(exports))
	for _, export := range exports {
		if export.ID == "" {
			s.logger.WithContext(ctx).Warnf("Skipping account export record without an id")
			continue
		}
		accounts = append(accounts, export.ToCreditAccount())
	}

	if len(accounts) == 0 {
		return 0, nil
	}

	if err := s.accounts.UpsertBatch(ctx, accounts); err != nil {
		return 0, err
	}

	metrics.ImportedRecordsTotal.WithLabelValues("credit_account").Add(float64(len(accounts)))
	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"received": len(exports),
		"imported": len(accounts),
	}).Info("Imported credit accounts")

	s.invalidateCache(ctx)
	return len(accounts), nil
}

// ImportOrders converts and upserts order export records. Phone numbers
// are normalized to digits so the same customer exports consistently.
func (s *Service) ImportOrders(ctx context.Context, exports []models.OrderExport) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Service.ImportOrders")
	defer span.End()

	orders := make([]models.Order, 0, len(exports))
	for _, export := range exports {
		if export.ID == "" {
			s.logger.WithContext(ctx).Warnf("Skipping order export record without an id")
			continue
		}
		order := export.ToOrder()
		order.CustomerPhone = normalizers.ApplyChain(order.CustomerPhone, "trim", "nphone")
		orders = append(orders, order)
	}

	if len(orders) == 0 {
		return 0, nil
	}

	if err := s.orders.UpsertBatch(ctx, orders); err != nil {
		return 0, err
	}

	metrics.ImportedRecordsTotal.WithLabelValues("order").Add(float64(len(orders)))
	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"received": len(exports),
		"imported": len(orders),
	}).Info("Imported orders")

	s.invalidateCache(ctx)
	return len(orders), nil
}

// invalidateCache drops cached stats and insights after a successful
// import. A cache failure does not fail the import.
func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warnf("Failed to invalidate cached linking results")
	}
}

// ImportAccountFile loads a credit account export file from disk.
func (s *Service) ImportAccountFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open account export %s", path)
	}
	defer f.Close()

	exports, err := ParseAccountExports(f)
	if err != nil {
		return 0, err
	}
	return s.ImportAccounts(ctx, exports)
}

// ImportOrderFile loads an order export file from disk.
func (s *Service) ImportOrderFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open order export %s", path)
	}
	defer f.Close()

	exports, err := ParseOrderExports(f)
	if err != nil {
		return 0, err
	}
	return s.ImportOrders(ctx, exports)
}
