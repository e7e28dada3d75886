package models

import (
	"strings"
	"time"
)

const (
	// HistoryEntryConsumption marks a ledger entry that increases the balance.
	HistoryEntryConsumption = "consumption"
	// HistoryEntryPayment marks a ledger entry that reduces the balance.
	HistoryEntryPayment = "payment"
)

// CreditAccount is a store-credit account as persisted and matched.
type CreditAccount struct {
	ID               string    `json:"id" db:"id"`
	CustomerName     string    `json:"customer_name" db:"customer_name"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	TotalConsumption float64   `json:"total_consumption" db:"total_consumption"`
	TotalPayments    float64   `json:"total_payments" db:"total_payments"`
	Balance          float64   `json:"balance" db:"balance"`
	TransactionCount int       `json:"transaction_count" db:"transaction_count"`
	LastActivityAt   time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// HistoryEntry is a single ledger movement in an account export.
type HistoryEntry struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        Timestamp `json:"date"`
}

// CreditAccountExport is the raw account record as it appears in the
// dashboard's JSON export. Totals are not present on the record itself;
// they are derived from the history ledger.
type CreditAccountExport struct {
	ID           string         `json:"id"`
	CustomerName string         `json:"customerName"`
	IsActive     *bool          `json:"isActive"`
	History      []HistoryEntry `json:"history"`
	CreatedAt    Timestamp      `json:"createdAt"`
	UpdatedAt    Timestamp      `json:"updatedAt"`
}

// ToCreditAccount folds the history ledger into totals and returns the
// persistable account. Accounts without an explicit isActive flag are
// treated as active.
func (e CreditAccountExport) ToCreditAccount() CreditAccount {
	account := CreditAccount{
		ID:           e.ID,
		CustomerName: strings.TrimSpace(e.CustomerName),
		IsActive:     e.IsActive == nil || *e.IsActive,
		CreatedAt:    e.CreatedAt.Time,
		UpdatedAt:    e.UpdatedAt.Time,
	}

	for _, entry := range e.History {
		switch entry.Type {
		case HistoryEntryConsumption:
			account.TotalConsumption += entry.Amount
		case HistoryEntryPayment:
			account.TotalPayments += entry.Amount
		}
		account.TransactionCount++
		if entry.Date.After(account.LastActivityAt) {
			account.LastActivityAt = entry.Date.Time
		}
	}
	account.Balance = account.TotalConsumption - account.TotalPayments

	if account.LastActivityAt.IsZero() {
		account.LastActivityAt = account.UpdatedAt
	}

	return account
}
