// Package matching implements the account-to-order linking algorithms
package matching

import (
	"sort"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Config contains the tunable knobs of the linking engine. The three
// weights should sum to 1.0 so combined scores stay in [0, 1].
type Config struct {
	NameWeight    float64 // Weight of the customer name score (default: 0.5)
	ValueWeight   float64 // Weight of the monetary value score (default: 0.3)
	DateWeight    float64 // Weight of the date proximity score (default: 0.2)
	MinConfidence float64 // Minimum combined score to keep a match, inclusive (default: 0.6)
	MaxMatches    int     // Maximum orders linked per account (default: 5)
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		NameWeight:    0.5,
		ValueWeight:   0.3,
		DateWeight:    0.2,
		MinConfidence: 0.6,
		MaxMatches:    5,
	}
}

// Engine links credit accounts to the orders that most likely belong to
// the same customer. It holds no external state and never returns an
// error: records it cannot score simply score low.
type Engine struct {
	scorer *Scorer
	config Config
}

// NewEngine creates a new linking engine
func NewEngine(config Config) *Engine {
	return &Engine{
		scorer: NewScorer(),
		config: config,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// OrderMatch is one scored account/order pairing.
type OrderMatch struct {
	Order    models.Order
	Scores   models.SimilarityScores
	Combined float64
}

// Connect scores every account against every order and returns one
// connection per account that has at least one match at or above the
// confidence threshold. Matches are ordered best first; ties keep the
// input order of the orders slice. Empty input yields an empty result.
func (e *Engine) Connect(accounts []models.CreditAccount, orders []models.Order) []models.Connection {
	connections := make([]models.Connection, 0, len(accounts))

	for _, account := range accounts {
		matches := e.MatchOrders(account, orders)
		if len(matches) == 0 {
			continue
		}

		best := matches[0]
		orderIDs := make(models.StringList, 0, len(matches))
		for _, match := range matches {
			orderIDs = append(orderIDs, match.Order.ID)
		}

		connections = append(connections, models.Connection{
			AccountID:       account.ID,
			CustomerName:    account.CustomerName,
			MatchedOrderIDs: orderIDs,
			Confidence:      best.Combined,
			MatchDetails:    best.Scores,
		})
	}

	return connections
}

// MatchOrders scores one account against every order and returns the
// matches that clear the threshold, sorted by combined score descending
// and capped at MaxMatches.
func (e *Engine) MatchOrders(account models.CreditAccount, orders []models.Order) []OrderMatch {
	matches := make([]OrderMatch, 0)

	for _, order := range orders {
		scores := models.SimilarityScores{
			Name:  e.scorer.NameSimilarity(account.CustomerName, order.CustomerName),
			Value: e.scorer.ValueSimilarity(account.TotalConsumption, order.Amount()),
			Date:  e.scorer.DateSimilarity(account.CreatedAt, order.PlacedAt),
		}

		combined := scores.Name*e.config.NameWeight +
			scores.Value*e.config.ValueWeight +
			scores.Date*e.config.DateWeight

		if combined >= e.config.MinConfidence {
			matches = append(matches, OrderMatch{
				Order:    order,
				Scores:   scores,
				Combined: combined,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Combined > matches[j].Combined
	})

	if len(matches) > e.config.MaxMatches {
		matches = matches[:e.config.MaxMatches]
	}

	return matches
}
