package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// ThesisRepository implements storage access for theses.
type ThesisRepository struct {
	db *sql.DB
}

// NewThesisRepository creates a thesis repository over db.
func NewThesisRepository(db *sql.DB) *ThesisRepository {
	return &ThesisRepository{db: db}
}

// Create inserts a new thesis. The ID and creation timestamp are assigned
// here; suggestion lists are stored as textual JSON.
func (r *ThesisRepository) Create(thesis *domain.Thesis) error {
	if thesis.ID == "" {
		thesis.ID = uuid.NewString()
	}
	if thesis.CreatedAt.IsZero() {
		thesis.CreatedAt = time.Now().UTC()
	}

	tickersLong, err := encodeSuggestions(thesis.TickersLong)
	if err != nil {
		return err
	}
	tickersShort, err := encodeSuggestions(thesis.TickersShort)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO theses (id, user_id, text, summary, tickers_long, tickers_short, rationale, confidence_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Exec(
		query,
		thesis.ID,
		thesis.UserID,
		thesis.Text,
		nullable(thesis.Summary),
		tickersLong,
		tickersShort,
		nullable(thesis.Rationale),
		nullable(thesis.ConfidenceLevel),
		thesis.CreatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.KindStorage, "failed to save thesis", err)
	}

	return nil
}

// GetRecent returns the newest theses with their suggestion lists
// deserialized, newest first.
func (r *ThesisRepository) GetRecent(limit int) ([]domain.Thesis, error) {
	query := `
		SELECT id, user_id, text, COALESCE(summary, ''), tickers_long, tickers_short,
		       COALESCE(rationale, ''), COALESCE(confidence_level, ''), created_at
		FROM theses
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, domain.WrapError(domain.KindStorage, "failed to list theses", err)
	}
	defer rows.Close()

	var theses []domain.Thesis
	for rows.Next() {
		var (
			thesis       domain.Thesis
			tickersLong  sql.NullString
			tickersShort sql.NullString
		)
		err := rows.Scan(
			&thesis.ID,
			&thesis.UserID,
			&thesis.Text,
			&thesis.Summary,
			&tickersLong,
			&tickersShort,
			&thesis.Rationale,
			&thesis.ConfidenceLevel,
			&thesis.CreatedAt,
		)
		if err != nil {
			return nil, domain.WrapError(domain.KindStorage, "failed to scan thesis row", err)
		}

		if thesis.TickersLong, err = decodeSuggestions(tickersLong); err != nil {
			return nil, err
		}
		if thesis.TickersShort, err = decodeSuggestions(tickersShort); err != nil {
			return nil, err
		}

		theses = append(theses, thesis)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindStorage, "failed to read thesis rows", err)
	}
	return theses, nil
}

// GetSummary returns the stored summary for a thesis, which may be empty.
func (r *ThesisRepository) GetSummary(id string) (string, error) {
	var summary sql.NullString
	err := r.db.QueryRow(`SELECT summary FROM theses WHERE id = $1 LIMIT 1`, id).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NewError(domain.KindNotFound, "thesis not found")
	}
	if err != nil {
		return "", domain.WrapError(domain.KindStorage, "failed to load thesis summary", err)
	}

	return summary.String, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
