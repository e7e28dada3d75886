// Package linker orchestrates full linking runs: it loads the imported
// credit accounts and orders, matches them, persists the resulting
// connections, and publishes the run results downstream.
package linker

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/appcontext"
	"github.com/Ramsey-B/clover/pkg/connections"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// AccountRepository is the credit account storage the linker reads from.
type AccountRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.CreditAccount, error)
	Get(ctx context.Context, id string) (*models.CreditAccount, error)
}

// OrderRepository is the order storage the linker reads from.
type OrderRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
}

// ConnectionRepository persists and queries the computed connections.
type ConnectionRepository interface {
	ReplaceAll(ctx context.Context, runID string, conns []models.Connection) error
	List(ctx context.Context) ([]models.Connection, error)
	GetByAccount(ctx context.Context, accountID string) (*models.Connection, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.Connection, error)
}

// EventEmitter publishes run results to Kafka.
type EventEmitter interface {
	EmitRunCompleted(ctx context.Context, runID string, accountCount, orderCount int, conns []models.Connection, stats models.ConnectionStats) error
	EmitConnectionsCreated(ctx context.Context, runID string, conns []models.Connection) error
}

// ResultCache caches the derived results of the latest run.
type ResultCache interface {
	StoreRun(ctx context.Context, runID string, stats models.ConnectionStats, insights models.InsightReport) error
	GetStats(ctx context.Context) (models.ConnectionStats, bool)
	GetInsights(ctx context.Context) (models.InsightReport, bool)
	Invalidate(ctx context.Context) error
}

// RunResult summarizes a completed linking run.
type RunResult struct {
	RunID        string                 `json:"runId"`
	Trigger      string                 `json:"trigger"`
	AccountCount int                    `json:"accountCount"`
	OrderCount   int                    `json:"orderCount"`
	Connections  []models.Connection    `json:"connections"`
	Stats        models.ConnectionStats `json:"stats"`
	Insights     models.InsightReport   `json:"insights"`
	Duration     time.Duration          `json:"-"`
}

// Service runs the linking pipeline and answers queries about its output.
type Service struct {
	logger      ectologger.Logger
	accountRepo AccountRepository
	orderRepo   OrderRepository
	connRepo    ConnectionRepository
	engine      *matching.Engine
	emitter     EventEmitter
	cache       ResultCache
}

// NewService creates a new linker service
func NewService(
	logger ectologger.Logger,
	accountRepo AccountRepository,
	orderRepo OrderRepository,
	connRepo ConnectionRepository,
	engine *matching.Engine,
	emitter EventEmitter,
	cache ResultCache,
) *Service {
	return &Service{
		logger:      logger,
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		connRepo:    connRepo,
		engine:      engine,
		emitter:     emitter,
		cache:       cache,
	}
}

// Recompute executes a full linking run. It loads every account and order,
// matches them, replaces the stored connections atomically, refreshes the
// cache, and emits run events. Event and cache failures are logged but do
// not fail the run; the connections are already committed at that point.
func (s *Service) Recompute(ctx context.Context, trigger string) (*RunResult, error) {
	ctx, span := tracing.StartSpan(ctx, "linker.Service.Recompute")
	defer span.End()

	start := time.Now()
	runID := uuid.New().String()
	ctx = appcontext.SetRunID(ctx, runID)

	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"runId":   runID,
		"trigger": trigger,
	})
	log.Info("Starting linking run")

	accounts, err := s.accountRepo.List(ctx, 0, 0)
	if err != nil {
		metrics.LinkingRunsTotal.WithLabelValues(trigger, "error").Inc()
		log.WithError(err).Error("Failed to load credit accounts")
		return nil, err
	}

	orders, err := s.orderRepo.List(ctx, 0, 0)
	if err != nil {
		metrics.LinkingRunsTotal.WithLabelValues(trigger, "error").Inc()
		log.WithError(err).Error("Failed to load orders")
		return nil, err
	}

	conns := s.engine.Connect(accounts, orders)

	// Stamp identities before persisting so the stored rows, the emitted
	// events, and the returned result all agree.
	now := time.Now().UTC()
	for i := range conns {
		if conns[i].ID == "" {
			conns[i].ID = uuid.New().String()
		}
		conns[i].RunID = runID
		conns[i].CreatedAt = now
	}

	if err := s.connRepo.ReplaceAll(ctx, runID, conns); err != nil {
		metrics.LinkingRunsTotal.WithLabelValues(trigger, "error").Inc()
		log.WithError(err).Error("Failed to persist connections")
		return nil, err
	}

	stats := connections.Stats(conns)
	insights := connections.Insights(conns, accounts)

	if err := s.cache.StoreRun(ctx, runID, stats, insights); err != nil {
		log.WithError(err).Warnf("Failed to cache run results")
	}

	if err := s.emitter.EmitRunCompleted(ctx, runID, len(accounts), len(orders), conns, stats); err != nil {
		log.WithError(err).Warnf("Failed to emit run completed event")
	}
	if err := s.emitter.EmitConnectionsCreated(ctx, runID, conns); err != nil {
		log.WithError(err).Warnf("Failed to emit connection events")
	}

	duration := time.Since(start)
	metrics.LinkingRunsTotal.WithLabelValues(trigger, "success").Inc()
	metrics.LinkingRunDuration.Observe(duration.Seconds())
	metrics.ConnectionsPerRun.Observe(float64(len(conns)))
	metrics.RunConfidenceAverage.Set(stats.AvgConfidence)

	log.WithFields(map[string]interface{}{
		"accounts":    len(accounts),
		"orders":      len(orders),
		"connections": len(conns),
		"durationMs":  duration.Milliseconds(),
	}).Info("Linking run completed")

	return &RunResult{
		RunID:        runID,
		Trigger:      trigger,
		AccountCount: len(accounts),
		OrderCount:   len(orders),
		Connections:  conns,
		Stats:        stats,
		Insights:     insights,
		Duration:     duration,
	}, nil
}

// Connections returns every stored connection from the latest run.
func (s *Service) Connections(ctx context.Context) ([]models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "linker.Service.Connections")
	defer span.End()

	return s.connRepo.List(ctx)
}

// Stats returns aggregate statistics for the latest run, served from the
// cache when warm and recomputed from storage otherwise.
func (s *Service) Stats(ctx context.Context) (models.ConnectionStats, error) {
	ctx, span := tracing.StartSpan(ctx, "linker.Service.Stats")
	defer span.End()

	if stats, ok := s.cache.GetStats(ctx); ok {
		return stats, nil
	}

	conns, err := s.connRepo.List(ctx)
	if err != nil {
		return models.ConnectionStats{}, err
	}
	return connections.Stats(conns), nil
}

// Insights returns the insight report for the latest run, served from the
// cache when warm and recomputed from storage otherwise.
func (s *Service) Insights(ctx context.Context) (models.InsightReport, error) {
	ctx, span := tracing.StartSpan(ctx, "linker.Service.Insights")
	defer span.End()

	if report, ok := s.cache.GetInsights(ctx); ok {
		return report, nil
	}

	conns, err := s.connRepo.List(ctx)
	if err != nil {
		return models.InsightReport{}, err
	}
	accounts, err := s.accountRepo.List(ctx, 0, 0)
	if err != nil {
		return models.InsightReport{}, err
	}
	return connections.Insights(conns, accounts), nil
}

// OrdersForAccount resolves the orders connected to a credit account,
// best match first. Accounts without a connection resolve to no orders.
func (s *Service) OrdersForAccount(ctx context.Context, accountID string) ([]models.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "linker.Service.OrdersForAccount")
	defer span.End()

	if _, err := s.accountRepo.Get(ctx, accountID); err != nil {
		return nil, err
	}

	conn, err := s.connRepo.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return []models.Order{}, nil
	}

	orders := make([]models.Order, 0, len(conn.MatchedOrderIDs))
	for _, orderID := range conn.MatchedOrderIDs {
		order, err := s.orderRepo.Get(ctx, orderID)
		if err != nil {
			// The connection may reference an order that was removed by a
			// later import. Skip it rather than failing the lookup.
			s.logger.WithContext(ctx).WithFields(map[string]interface{}{
				"accountId": accountID,
				"orderId":   orderID,
			}).WithError(err).Warnf("Connected order not found")
			continue
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// AccountsForOrder resolves the credit accounts whose connections include
// the given order. More than one account can claim the same order.
func (s *Service) AccountsForOrder(ctx context.Context, orderID string) ([]models.CreditAccount, error) {
	ctx, span := tracing.StartSpan(ctx, "linker.Service.AccountsForOrder")
	defer span.End()

	if _, err := s.orderRepo.Get(ctx, orderID); err != nil {
		return nil, err
	}

	conns, err := s.connRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.CreditAccount, 0, len(conns))
	for _, conn := range conns {
		account, err := s.accountRepo.Get(ctx, conn.AccountID)
		if err != nil {
			s.logger.WithContext(ctx).WithFields(map[string]interface{}{
				"accountId": conn.AccountID,
				"orderId":   orderID,
			}).WithError(err).Warnf("Connected account not found")
			continue
		}
		accounts = append(accounts, *account)
	}
	return accounts, nil
}
