package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "firestore wrapper",
			input:    `{"_seconds": 1700000000, "_nanoseconds": 0}`,
			expected: time.Unix(1700000000, 0).UTC(),
		},
		{
			name:     "rfc3339 string",
			input:    `"2024-01-15T10:30:00Z"`,
			expected: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "epoch seconds",
			input:    `1700000000`,
			expected: time.Unix(1700000000, 0).UTC(),
		},
		{
			name:     "null",
			input:    `null`,
			expected: time.Time{},
		},
		{
			name:     "garbage string stays zero",
			input:    `"not-a-date"`,
			expected: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			require.NoError(t, err)
			assert.True(t, ts.Equal(tt.expected), "got %v, want %v", ts.Time, tt.expected)
		})
	}
}

func TestCreditAccountExport_ToCreditAccount(t *testing.T) {
	active := true
	export := CreditAccountExport{
		ID:           "acc-1",
		CustomerName: "  João Silva  ",
		IsActive:     &active,
		History: []HistoryEntry{
			{Type: HistoryEntryConsumption, Amount: 100},
			{Type: HistoryEntryConsumption, Amount: 50},
			{Type: HistoryEntryPayment, Amount: 30},
			{Type: "adjustment", Amount: 999},
		},
	}

	account := export.ToCreditAccount()
	assert.Equal(t, "João Silva", account.CustomerName)
	assert.True(t, account.IsActive)
	assert.Equal(t, 150.0, account.TotalConsumption)
	assert.Equal(t, 30.0, account.TotalPayments)
	assert.Equal(t, 120.0, account.Balance)
	assert.Equal(t, 4, account.TransactionCount)
}

func TestCreditAccountExport_DefaultsToActive(t *testing.T) {
	account := CreditAccountExport{ID: "acc-2", CustomerName: "Maria"}.ToCreditAccount()
	assert.True(t, account.IsActive)
	assert.Zero(t, account.Balance)
}

func TestOrder_Amount(t *testing.T) {
	total := 45.5
	totalAmount := 60.0

	t.Run("total wins over totalAmount", func(t *testing.T) {
		order := Order{Total: &total, TotalAmount: &totalAmount}
		assert.Equal(t, 45.5, order.Amount())
	})

	t.Run("falls back to totalAmount", func(t *testing.T) {
		order := Order{TotalAmount: &totalAmount}
		assert.Equal(t, 60.0, order.Amount())
	})

	t.Run("missing both is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Order{}.Amount())
	})
}

func TestStringList_RoundTrip(t *testing.T) {
	list := StringList{"order-1", "order-2"}

	value, err := list.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan([]byte(value.(string))))
	assert.Equal(t, list, scanned)
}
