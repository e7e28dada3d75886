package kafka

import (
	"encoding/json"
	"time"
)

// IncomingMessage is a fetched Kafka message with its headers flattened.
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string
}

// RecomputeRequest asks for a fresh linking run. Upstream importers emit
// one after loading new export files.
type RecomputeRequest struct {
	RequestedBy string    `json:"requested_by"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventType returns the event_type header, or an empty string.
func (m *IncomingMessage) EventType() string {
	return m.Headers["event_type"]
}

// IsRecomputeRequest reports whether this message requests a linking run.
func (m *IncomingMessage) IsRecomputeRequest() bool {
	return m.EventType() == "connection.recompute_requested"
}

// ParseRecomputeRequest decodes the message body as a RecomputeRequest.
func (m *IncomingMessage) ParseRecomputeRequest() (*RecomputeRequest, error) {
	var req RecomputeRequest
	if err := json.Unmarshal(m.Value, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
