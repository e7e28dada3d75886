// Package kafka handles event publication and consumption for linking runs.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// ConnectionEvent announces one persisted connection.
type ConnectionEvent struct {
	EventType       string    `json:"event_type"` // connection.created
	RunID           string    `json:"run_id"`
	AccountID       string    `json:"account_id"`
	CustomerName    string    `json:"customer_name"`
	MatchedOrderIDs []string  `json:"matched_order_ids"`
	Confidence      float64   `json:"confidence"`
	Timestamp       time.Time `json:"timestamp"`
}

// RunEvent announces the completion of a whole linking run.
type RunEvent struct {
	EventType       string                 `json:"event_type"` // connection.recomputed
	RunID           string                 `json:"run_id"`
	AccountCount    int                    `json:"account_count"`
	OrderCount      int                    `json:"order_count"`
	ConnectionCount int                    `json:"connection_count"`
	Stats           models.ConnectionStats `json:"stats"`
	Timestamp       time.Time              `json:"timestamp"`
}

// PublishRunEvent publishes a run completion event to Kafka
func (p *Producer) PublishRunEvent(ctx context.Context, event *RunEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishRunEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.RunID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "run_id", Value: []byte(event.RunID)},
			{Key: "schema_version", Value: []byte("1.0")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish run event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type":       event.EventType,
		"run_id":           event.RunID,
		"connection_count": event.ConnectionCount,
	}).Debug("Published run event")

	return nil
}

// PublishRecomputeRequest asks the API's consumer to run a fresh linking
// pass. The importer publishes one after loading new export files.
func (p *Producer) PublishRecomputeRequest(ctx context.Context, topic string, req *RecomputeRequest) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishRecomputeRequest")
	defer span.End()

	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(req.RequestedBy),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("connection.recompute_requested")},
			{Key: "schema_version", Value: []byte("1.0")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish recompute request")
		return err
	}

	return nil
}

// PublishConnectionEvents publishes connection events in a batch
func (p *Producer) PublishConnectionEvents(ctx context.Context, events []*ConnectionEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishConnectionEvents")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}

		messages[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(event.AccountID),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "run_id", Value: []byte(event.RunID)},
				{Key: "schema_version", Value: []byte("1.0")},
			},
		}
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(events),
		}).Error("Failed to publish connection events batch")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": len(events),
	}).Debug("Published connection events batch")

	return nil
}
