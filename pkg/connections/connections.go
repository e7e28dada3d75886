// Package connections provides pure query functions over a set of
// account-to-order connections. Nothing here touches storage; callers
// hand in the connection list together with the source collections.
package connections

import (
	"fmt"
	"math"

	"github.com/Ramsey-B/clover/pkg/models"
)

// OrdersForAccount resolves an account's connection to the actual order
// records, keeping the order collection's own ordering. Accounts without
// a connection resolve to an empty slice.
func OrdersForAccount(accountID string, conns []models.Connection, orders []models.Order) []models.Order {
	var connection *models.Connection
	for i := range conns {
		if conns[i].AccountID == accountID {
			connection = &conns[i]
			break
		}
	}
	if connection == nil {
		return []models.Order{}
	}

	matched := make(map[string]struct{}, len(connection.MatchedOrderIDs))
	for _, id := range connection.MatchedOrderIDs {
		matched[id] = struct{}{}
	}

	result := make([]models.Order, 0, len(matched))
	for _, order := range orders {
		if _, ok := matched[order.ID]; ok {
			result = append(result, order)
		}
	}
	return result
}

// AccountsForOrder is the reverse lookup: every account whose connection
// lists the given order. The matcher does not prevent one order from
// landing in several accounts' match lists, so this can return more than
// one account even though a single owner is the overwhelmingly common
// case.
func AccountsForOrder(orderID string, conns []models.Connection, accounts []models.CreditAccount) []models.CreditAccount {
	owners := make(map[string]struct{})
	for _, conn := range conns {
		for _, id := range conn.MatchedOrderIDs {
			if id == orderID {
				owners[conn.AccountID] = struct{}{}
				break
			}
		}
	}

	result := make([]models.CreditAccount, 0, len(owners))
	for _, account := range accounts {
		if _, ok := owners[account.ID]; ok {
			result = append(result, account)
		}
	}
	return result
}

// Stats folds a connection set into per-band counts and the average
// confidence rounded to two decimal places. An empty set yields all
// zeroes.
func Stats(conns []models.Connection) models.ConnectionStats {
	stats := models.ConnectionStats{TotalConnections: len(conns)}

	var sum float64
	for _, conn := range conns {
		sum += conn.Confidence
		switch {
		case conn.Confidence >= 0.8:
			stats.HighConfidence++
		case conn.Confidence >= 0.6:
			stats.MediumConfidence++
		default:
			stats.LowConfidence++
		}
	}

	if stats.TotalConnections > 0 {
		avg := sum / float64(stats.TotalConnections)
		stats.AvgConfidence = math.Round(avg*100) / 100
	}

	return stats
}

// Insights turns a connection set into a human-readable health summary:
// what got linked, how confident the links are, and what deserves a
// manual look.
func Insights(conns []models.Connection, accounts []models.CreditAccount) models.InsightReport {
	report := models.InsightReport{
		Insights:        []string{},
		Recommendations: []string{},
	}

	stats := Stats(conns)

	if stats.TotalConnections > 0 {
		report.Insights = append(report.Insights,
			fmt.Sprintf("%d credit accounts automatically connected to orders", stats.TotalConnections),
			fmt.Sprintf("%d high confidence connections (>=80%%)", stats.HighConfidence),
			fmt.Sprintf("Average confidence: %.1f%%", stats.AvgConfidence*100),
		)
	}

	connected := make(map[string]struct{}, len(conns))
	for _, conn := range conns {
		connected[conn.AccountID] = struct{}{}
	}
	unconnected := 0
	for _, account := range accounts {
		if _, ok := connected[account.ID]; !ok {
			unconnected++
		}
	}
	if unconnected > 0 {
		report.Insights = append(report.Insights,
			fmt.Sprintf("%d credit accounts without an automatic connection", unconnected))
	}

	if stats.LowConfidence > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Review %d low confidence connections", stats.LowConfidence))
	}
	if unconnected > 0 {
		report.Recommendations = append(report.Recommendations,
			"Manually verify accounts without a connection")
	}
	if stats.AvgConfidence < 0.7 {
		report.Recommendations = append(report.Recommendations,
			"Consider tuning the matching criteria")
	}

	return report
}
