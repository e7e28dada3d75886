package connections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testConnections() []models.Connection {
	return []models.Connection{
		{AccountID: "acc-1", MatchedOrderIDs: models.StringList{"ord-1", "ord-2"}, Confidence: 0.95},
		{AccountID: "acc-2", MatchedOrderIDs: models.StringList{"ord-3"}, Confidence: 0.65},
		{AccountID: "acc-3", MatchedOrderIDs: models.StringList{"ord-4"}, Confidence: 0.40},
	}
}

func TestOrdersForAccount(t *testing.T) {
	orders := []models.Order{
		{ID: "ord-1"}, {ID: "ord-2"}, {ID: "ord-3"},
	}

	t.Run("resolves matched orders in collection order", func(t *testing.T) {
		result := OrdersForAccount("acc-1", testConnections(), orders)
		require.Len(t, result, 2)
		assert.Equal(t, "ord-1", result[0].ID)
		assert.Equal(t, "ord-2", result[1].ID)
	})

	t.Run("unknown account resolves to empty", func(t *testing.T) {
		assert.Empty(t, OrdersForAccount("acc-404", testConnections(), orders))
	})

	t.Run("matched ids missing from the collection are skipped", func(t *testing.T) {
		result := OrdersForAccount("acc-3", testConnections(), orders)
		assert.Empty(t, result)
	})
}

func TestAccountsForOrder(t *testing.T) {
	accounts := []models.CreditAccount{
		{ID: "acc-1", CustomerName: "Ana"},
		{ID: "acc-2", CustomerName: "Bruno"},
	}

	t.Run("finds the owning account", func(t *testing.T) {
		result := AccountsForOrder("ord-3", testConnections(), accounts)
		require.Len(t, result, 1)
		assert.Equal(t, "acc-2", result[0].ID)
	})

	t.Run("unmatched order resolves to empty", func(t *testing.T) {
		assert.Empty(t, AccountsForOrder("ord-404", testConnections(), accounts))
	})

	t.Run("an order claimed by two accounts returns both", func(t *testing.T) {
		conns := []models.Connection{
			{AccountID: "acc-1", MatchedOrderIDs: models.StringList{"ord-9"}},
			{AccountID: "acc-2", MatchedOrderIDs: models.StringList{"ord-9"}},
		}
		result := AccountsForOrder("ord-9", conns, accounts)
		assert.Len(t, result, 2)
	})
}

func TestStats(t *testing.T) {
	t.Run("partitions by confidence band", func(t *testing.T) {
		stats := Stats(testConnections())
		assert.Equal(t, 3, stats.TotalConnections)
		assert.Equal(t, 1, stats.HighConfidence)
		assert.Equal(t, 1, stats.MediumConfidence)
		assert.Equal(t, 1, stats.LowConfidence)
		// (0.95 + 0.65 + 0.40) / 3 = 0.666..., rounded to 2 places.
		assert.Equal(t, 0.67, stats.AvgConfidence)
	})

	t.Run("band boundaries", func(t *testing.T) {
		stats := Stats([]models.Connection{
			{Confidence: 0.8},
			{Confidence: 0.6},
		})
		assert.Equal(t, 1, stats.HighConfidence)
		assert.Equal(t, 1, stats.MediumConfidence)
		assert.Equal(t, 0, stats.LowConfidence)
	})

	t.Run("empty set is all zeroes", func(t *testing.T) {
		stats := Stats(nil)
		assert.Equal(t, 0, stats.TotalConnections)
		assert.Equal(t, 0.0, stats.AvgConfidence)
	})
}

func TestInsights(t *testing.T) {
	accounts := []models.CreditAccount{
		{ID: "acc-1"}, {ID: "acc-2"}, {ID: "acc-3"}, {ID: "acc-4"},
	}

	t.Run("full report", func(t *testing.T) {
		report := Insights(testConnections(), accounts)

		require.Len(t, report.Insights, 4)
		assert.Contains(t, report.Insights[0], "3 credit accounts automatically connected")
		assert.Contains(t, report.Insights[1], "1 high confidence")
		assert.Contains(t, report.Insights[2], "67.0%")
		assert.Contains(t, report.Insights[3], "1 credit accounts without")

		require.Len(t, report.Recommendations, 3)
		assert.Contains(t, report.Recommendations[0], "Review 1 low confidence")
		assert.Contains(t, report.Recommendations[1], "Manually verify")
		assert.Contains(t, report.Recommendations[2], "tuning the matching criteria")
	})

	t.Run("no connections yields only the tuning recommendation", func(t *testing.T) {
		report := Insights(nil, nil)
		assert.Empty(t, report.Insights)
		require.Len(t, report.Recommendations, 1)
		assert.Contains(t, report.Recommendations[0], "tuning the matching criteria")
	})

	t.Run("healthy run has no recommendations", func(t *testing.T) {
		conns := []models.Connection{
			{AccountID: "acc-1", Confidence: 0.9},
			{AccountID: "acc-2", Confidence: 0.85},
			{AccountID: "acc-3", Confidence: 0.8},
			{AccountID: "acc-4", Confidence: 0.95},
		}
		report := Insights(conns, accounts)
		assert.Empty(t, report.Recommendations)
	})
}
