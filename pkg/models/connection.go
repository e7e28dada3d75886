package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a JSON array in a jsonb column.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// SimilarityScores holds the per-dimension scores behind a connection's
// confidence. All values are in [0, 1].
type SimilarityScores struct {
	Name  float64 `json:"name_match" db:"name_match"`
	Value float64 `json:"value_match" db:"value_match"`
	Date  float64 `json:"date_match" db:"date_match"`
}

// Connection links one credit account to the orders it most likely belongs
// to. Confidence and MatchDetails come from the single best-scoring order;
// MatchedOrderIDs carries every order that cleared the threshold, best first.
type Connection struct {
	ID              string           `json:"id" db:"id"`
	RunID           string           `json:"run_id" db:"run_id"`
	AccountID       string           `json:"account_id" db:"account_id"`
	CustomerName    string           `json:"customer_name" db:"customer_name"`
	MatchedOrderIDs StringList       `json:"matched_order_ids" db:"matched_order_ids"`
	Confidence      float64          `json:"confidence" db:"confidence"`
	MatchDetails    SimilarityScores `json:"match_details"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// ConnectionStats summarizes a set of connections by confidence band.
type ConnectionStats struct {
	TotalConnections int     `json:"total_connections"`
	HighConfidence   int     `json:"high_confidence"`
	MediumConfidence int     `json:"medium_confidence"`
	LowConfidence    int     `json:"low_confidence"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

// InsightReport is the human-readable health summary for a linking run.
type InsightReport struct {
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}
