// Package events handles event emission for linking run lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for Clover
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// NopEmitter discards every event. Used when the Kafka producer is
// disabled.
type NopEmitter struct{}

func (NopEmitter) EmitRunCompleted(ctx context.Context, runID string, accountCount, orderCount int, conns []models.Connection, stats models.ConnectionStats) error {
	return nil
}

func (NopEmitter) EmitConnectionsCreated(ctx context.Context, runID string, conns []models.Connection) error {
	return nil
}

// EmitRunCompleted emits a connection.recomputed event summarizing the run.
func (e *Emitter) EmitRunCompleted(ctx context.Context, runID string, accountCount, orderCount int, conns []models.Connection, stats models.ConnectionStats) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	event := &kafka.RunEvent{
		EventType:       "connection.recomputed",
		RunID:           runID,
		AccountCount:    accountCount,
		OrderCount:      orderCount,
		ConnectionCount: len(conns),
		Stats:           stats,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit connection.recomputed event")
		return err
	}

	return nil
}

// EmitConnectionsCreated emits one connection.created event per persisted
// connection.
func (e *Emitter) EmitConnectionsCreated(ctx context.Context, runID string, conns []models.Connection) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitConnectionsCreated")
	defer span.End()

	if len(conns) == 0 {
		return nil
	}

	events := make([]*kafka.ConnectionEvent, 0, len(conns))
	for _, conn := range conns {
		events = append(events, &kafka.ConnectionEvent{
			EventType:       "connection.created",
			RunID:           runID,
			AccountID:       conn.AccountID,
			CustomerName:    conn.CustomerName,
			MatchedOrderIDs: conn.MatchedOrderIDs,
			Confidence:      conn.Confidence,
		})
	}

	if err := e.producer.PublishConnectionEvents(ctx, events); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit connection.created events")
		return err
	}

	return nil
}
