package repository

import (
	"database/sql"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// AnonymousAnalyst is shown when a thesis has no linked user or the user
// has no display name.
const AnonymousAnalyst = "Anonymous analyst"

// CommunityRepository builds the community feed: theses joined with
// aggregated trade PnL and an optional user display name.
type CommunityRepository struct {
	db *sql.DB
}

// NewCommunityRepository creates a community repository over db.
func NewCommunityRepository(db *sql.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// GetTop returns the newest theses with their trade aggregates. A thesis
// without trades reports a total PnL of zero, not NULL.
func (r *CommunityRepository) GetTop(limit int) ([]domain.CommunityThesis, error) {
	query := `
		SELECT t.id, t.text, COALESCE(t.summary, ''), COALESCE(t.confidence_level, ''), t.created_at,
		       COALESCE(SUM(p.pnl), 0) AS total_pnl,
		       COUNT(p.id) AS trade_count,
		       COALESCE(u.name, $1) AS user_name
		FROM theses t
		LEFT JOIN paper_trades p ON p.thesis_id = t.id
		LEFT JOIN users u ON u.id = t.user_id
		GROUP BY t.id, t.text, t.summary, t.confidence_level, t.created_at, u.name
		ORDER BY t.created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(query, AnonymousAnalyst, limit)
	if err != nil {
		return nil, domain.WrapError(domain.KindStorage, "failed to load community theses", err)
	}
	defer rows.Close()

	var theses []domain.CommunityThesis
	for rows.Next() {
		var (
			thesis   domain.CommunityThesis
			totalPnL numericColumn
		)
		err := rows.Scan(
			&thesis.ID,
			&thesis.Text,
			&thesis.Summary,
			&thesis.ConfidenceLevel,
			&thesis.CreatedAt,
			&totalPnL,
			&thesis.TradeCount,
			&thesis.UserName,
		)
		if err != nil {
			return nil, domain.WrapError(domain.KindStorage, "failed to scan community row", err)
		}

		thesis.TotalPnL = totalPnL.Float()
		theses = append(theses, thesis)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindStorage, "failed to read community rows", err)
	}
	return theses, nil
}
