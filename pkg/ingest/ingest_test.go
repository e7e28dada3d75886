package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeAccountWriter struct {
	upserted []models.CreditAccount
	err      error
}

func (f *fakeAccountWriter) UpsertBatch(ctx context.Context, accounts []models.CreditAccount) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, accounts...)
	return nil
}

type fakeOrderWriter struct {
	upserted []models.Order
}

func (f *fakeOrderWriter) UpsertBatch(ctx context.Context, orders []models.Order) error {
	f.upserted = append(f.upserted, orders...)
	return nil
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.calls++
	return f.err
}

const accountExportJSON = `[
	{
		"id": "acc-1",
		"data": null,
		"customerName": "  João Silva  ",
		"isActive": true,
		"history": [
			{"type": "consumption", "amount": 80, "date": {"_seconds": 1710072000, "_nanoseconds": 0}},
			{"type": "payment", "amount": 30, "date": "2024-03-12T09:00:00Z"}
		],
		"createdAt": "2024-03-01T10:00:00Z",
		"updatedAt": "2024-03-12T09:00:00Z"
	},
	{
		"id": "",
		"customerName": "placeholder"
	}
]`

const orderExportJSON = `[
	{
		"id": "ord-1",
		"data": {
			"customerName": "Joao Silva",
			"customerPhone": "(11) 98888-7777",
			"total": 80.0,
			"status": "delivered",
			"sentAt": "2024-03-10T12:00:00Z",
			"createdAt": "2024-03-10T11:55:00Z"
		}
	}
]`

func TestParseAccountExports(t *testing.T) {
	exports, err := ParseAccountExports(strings.NewReader(accountExportJSON))
	require.NoError(t, err)
	require.Len(t, exports, 2)
	assert.Equal(t, "acc-1", exports[0].ID)
	assert.Len(t, exports[0].History, 2)

	_, err = ParseAccountExports(strings.NewReader("{not json"))
	require.Error(t, err)
}

func TestService_ImportAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("ConvertsAndSkipsRecordsWithoutID", func(t *testing.T) {
		writer := &fakeAccountWriter{}
		svc := NewService(logging.NewNop(), writer, &fakeOrderWriter{}, nil)

		exports, err := ParseAccountExports(strings.NewReader(accountExportJSON))
		require.NoError(t, err)

		count, err := svc.ImportAccounts(ctx, exports)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.Len(t, writer.upserted, 1)
		account := writer.upserted[0]
		assert.Equal(t, "acc-1", account.ID)
		assert.Equal(t, "João Silva", account.CustomerName)
		assert.Equal(t, 80.0, account.TotalConsumption)
		assert.Equal(t, 30.0, account.TotalPayments)
		assert.Equal(t, 50.0, account.Balance)
	})

	t.Run("EmptyExportIsANoop", func(t *testing.T) {
		writer := &fakeAccountWriter{}
		svc := NewService(logging.NewNop(), writer, &fakeOrderWriter{}, nil)

		count, err := svc.ImportAccounts(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Empty(t, writer.upserted)
	})

	t.Run("UpsertFailurePropagates", func(t *testing.T) {
		writer := &fakeAccountWriter{err: errors.New("db down")}
		svc := NewService(logging.NewNop(), writer, &fakeOrderWriter{}, nil)

		exports := []models.CreditAccountExport{{ID: "acc-1", CustomerName: "X"}}
		_, err := svc.ImportAccounts(ctx, exports)
		require.Error(t, err)
	})

	t.Run("InvalidatesCacheAfterImport", func(t *testing.T) {
		invalidator := &fakeInvalidator{}
		svc := NewService(logging.NewNop(), &fakeAccountWriter{}, &fakeOrderWriter{}, invalidator)

		exports := []models.CreditAccountExport{{ID: "acc-1", CustomerName: "X"}}
		count, err := svc.ImportAccounts(ctx, exports)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, invalidator.calls)
	})

	t.Run("CacheFailureDoesNotFailImport", func(t *testing.T) {
		invalidator := &fakeInvalidator{err: errors.New("redis down")}
		svc := NewService(logging.NewNop(), &fakeAccountWriter{}, &fakeOrderWriter{}, invalidator)

		exports := []models.CreditAccountExport{{ID: "acc-1", CustomerName: "X"}}
		count, err := svc.ImportAccounts(ctx, exports)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestService_ImportOrders(t *testing.T) {
	ctx := context.Background()

	writer := &fakeOrderWriter{}
	svc := NewService(logging.NewNop(), &fakeAccountWriter{}, writer, nil)

	exports, err := ParseOrderExports(strings.NewReader(orderExportJSON))
	require.NoError(t, err)

	count, err := svc.ImportOrders(ctx, exports)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, writer.upserted, 1)
	order := writer.upserted[0]
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, "ord-1", order.OrderNumber)
	assert.Equal(t, "Joao Silva", order.CustomerName)
	assert.Equal(t, "11988887777", order.CustomerPhone)
	assert.Equal(t, 80.0, order.Amount())
	assert.Equal(t, "2024-03-10T12:00:00Z", order.PlacedAt.Format("2006-01-02T15:04:05Z07:00"))
}
