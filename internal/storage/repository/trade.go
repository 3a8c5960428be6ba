package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// PaperTradeRepository implements storage access for paper trades.
type PaperTradeRepository struct {
	db *sql.DB
}

// NewPaperTradeRepository creates a paper-trade repository over db.
func NewPaperTradeRepository(db *sql.DB) *PaperTradeRepository {
	return &PaperTradeRepository{db: db}
}

// Create inserts a new paper trade. Input validation (positive quantity and
// entry price, valid direction, existing thesis) happens upstream; the
// foreign key and CHECK constraints back it up.
func (r *PaperTradeRepository) Create(trade *domain.PaperTrade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO paper_trades (id, thesis_id, ticker, direction, quantity, entry_price, current_price, pnl, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(
		query,
		trade.ID,
		trade.ThesisID,
		trade.Ticker,
		trade.Direction,
		trade.Quantity,
		trade.EntryPrice,
		trade.CurrentPrice,
		trade.PnL,
		trade.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return domain.WrapError(domain.KindValidation, "referenced thesis does not exist", err)
		}
		return domain.WrapError(domain.KindStorage, "failed to save paper trade", err)
	}

	return nil
}

// GetByThesis returns the newest trades for a thesis, numeric columns
// coerced at the scan boundary.
func (r *PaperTradeRepository) GetByThesis(thesisID string, limit int) ([]domain.PaperTrade, error) {
	query := `
		SELECT id, thesis_id, ticker, direction, quantity, entry_price, current_price, pnl, created_at
		FROM paper_trades
		WHERE thesis_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(query, thesisID, limit)
	if err != nil {
		return nil, domain.WrapError(domain.KindStorage, "failed to list paper trades", err)
	}
	defer rows.Close()

	var trades []domain.PaperTrade
	for rows.Next() {
		var (
			trade        domain.PaperTrade
			quantity     numericColumn
			entryPrice   numericColumn
			currentPrice numericColumn
			pnl          numericColumn
		)
		err := rows.Scan(
			&trade.ID,
			&trade.ThesisID,
			&trade.Ticker,
			&trade.Direction,
			&quantity,
			&entryPrice,
			&currentPrice,
			&pnl,
			&trade.CreatedAt,
		)
		if err != nil {
			return nil, domain.WrapError(domain.KindStorage, "failed to scan paper trade row", err)
		}

		trade.Quantity = quantity.Float()
		trade.EntryPrice = entryPrice.Float()
		trade.CurrentPrice = currentPrice.Float()
		trade.PnL = pnl.Float()
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindStorage, "failed to read paper trade rows", err)
	}
	return trades, nil
}
