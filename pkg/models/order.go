package models

import (
	"strings"
	"time"
)

// Order is a delivery-platform order as persisted and matched.
type Order struct {
	ID            string    `json:"id" db:"id"`
	OrderNumber   string    `json:"order_number" db:"order_number"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	CustomerPhone string    `json:"customer_phone" db:"customer_phone"`
	Total         *float64  `json:"total" db:"total"`
	TotalAmount   *float64  `json:"total_amount" db:"total_amount"`
	Status        string    `json:"status" db:"status"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	PlacedAt      time.Time `json:"placed_at" db:"placed_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Amount returns the order value used for matching. Exports carry the value
// under either "total" or "totalAmount" depending on the platform version;
// "total" wins when both are set, and a record with neither counts as zero.
func (o Order) Amount() float64 {
	if o.Total != nil && *o.Total != 0 {
		return *o.Total
	}
	if o.TotalAmount != nil {
		return *o.TotalAmount
	}
	return 0
}

// OrderExportData is the nested payload of an order export record.
type OrderExportData struct {
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	Total         *float64  `json:"total"`
	TotalAmount   *float64  `json:"totalAmount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	SentAt        Timestamp `json:"sentAt"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// OrderExport is the raw order record as it appears in the dashboard's
// JSON export.
type OrderExport struct {
	ID   string          `json:"id"`
	Data OrderExportData `json:"data"`
}

// ToOrder flattens the export record into a persistable order. PlacedAt
// prefers the platform's sentAt timestamp and falls back to createdAt for
// orders that never left the draft state.
func (e OrderExport) ToOrder() Order {
	placedAt := e.Data.SentAt.Time
	if placedAt.IsZero() {
		placedAt = e.Data.CreatedAt.Time
	}

	return Order{
		ID:            e.ID,
		OrderNumber:   e.ID,
		CustomerName:  strings.TrimSpace(e.Data.CustomerName),
		CustomerPhone: e.Data.CustomerPhone,
		Total:         e.Data.Total,
		TotalAmount:   e.Data.TotalAmount,
		Status:        e.Data.Status,
		PaymentMethod: e.Data.PaymentMethod,
		PlacedAt:      placedAt,
		CreatedAt:     e.Data.CreatedAt.Time,
		UpdatedAt:     e.Data.UpdatedAt.Time,
	}
}
