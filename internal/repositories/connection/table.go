package connection

import (
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

const connectionTable = "connections"

var connectionColumns = []string{
	"id", "run_id", "account_id", "customer_name", "matched_order_ids",
	"confidence", "name_match", "value_match", "date_match", "created_at",
}

// connectionRow is the flat database shape of a connection. The per-score
// columns fold back into MatchDetails when read.
type connectionRow struct {
	ID              string            `db:"id"`
	RunID           string            `db:"run_id"`
	AccountID       string            `db:"account_id"`
	CustomerName    string            `db:"customer_name"`
	MatchedOrderIDs models.StringList `db:"matched_order_ids"`
	Confidence      float64           `db:"confidence"`
	NameMatch       float64           `db:"name_match"`
	ValueMatch      float64           `db:"value_match"`
	DateMatch       float64           `db:"date_match"`
	CreatedAt       time.Time         `db:"created_at"`
}

func fromConnection(conn models.Connection) connectionRow {
	return connectionRow{
		ID:              conn.ID,
		RunID:           conn.RunID,
		AccountID:       conn.AccountID,
		CustomerName:    conn.CustomerName,
		MatchedOrderIDs: conn.MatchedOrderIDs,
		Confidence:      conn.Confidence,
		NameMatch:       conn.MatchDetails.Name,
		ValueMatch:      conn.MatchDetails.Value,
		DateMatch:       conn.MatchDetails.Date,
		CreatedAt:       conn.CreatedAt,
	}
}

func (r connectionRow) toConnection() models.Connection {
	return models.Connection{
		ID:              r.ID,
		RunID:           r.RunID,
		AccountID:       r.AccountID,
		CustomerName:    r.CustomerName,
		MatchedOrderIDs: r.MatchedOrderIDs,
		Confidence:      r.Confidence,
		MatchDetails: models.SimilarityScores{
			Name:  r.NameMatch,
			Value: r.ValueMatch,
			Date:  r.DateMatch,
		},
		CreatedAt: r.CreatedAt,
	}
}

func toConnections(rows []connectionRow) []models.Connection {
	conns := make([]models.Connection, 0, len(rows))
	for _, row := range rows {
		conns = append(conns, row.toConnection())
	}
	return conns
}
