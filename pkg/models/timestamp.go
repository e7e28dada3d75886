package models

import (
	"encoding/json"
	"time"
)

// Timestamp accepts the timestamp shapes found in the dashboard's Firestore
// exports: the {"_seconds": N, "_nanoseconds": N} wrapper object, an RFC3339
// string, or a bare number of epoch seconds. Unparseable input leaves the
// zero time rather than failing the decode, so one bad record never aborts
// a whole import batch.
type Timestamp struct {
	time.Time
}

type exportTimestamp struct {
	Seconds     int64 `json:"_seconds"`
	Nanoseconds int64 `json:"_nanoseconds"`
}

// NewTimestamp wraps a time.Time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}

	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var wrapper exportTimestamp
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Seconds != 0 {
		t.Time = time.Unix(wrapper.Seconds, wrapper.Nanoseconds).UTC()
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if parsed, err := time.Parse(time.RFC3339, str); err == nil {
			t.Time = parsed.UTC()
		}
		return nil
	}

	var seconds int64
	if err := json.Unmarshal(data, &seconds); err == nil && seconds != 0 {
		t.Time = time.Unix(seconds, 0).UTC()
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
