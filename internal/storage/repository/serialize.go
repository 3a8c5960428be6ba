package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// encodeSuggestions serializes a suggestion list to its textual JSON form
// for storage. Empty lists store as NULL.
func encodeSuggestions(suggestions []domain.TickerSuggestion) (sql.NullString, error) {
	if len(suggestions) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(suggestions)
	if err != nil {
		return sql.NullString{}, domain.WrapError(domain.KindStorage, "failed to serialize ticker suggestions", err)
	}

	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeSuggestions reverses encodeSuggestions.
func decodeSuggestions(column sql.NullString) ([]domain.TickerSuggestion, error) {
	if !column.Valid || column.String == "" {
		return nil, nil
	}

	var suggestions []domain.TickerSuggestion
	if err := json.Unmarshal([]byte(column.String), &suggestions); err != nil {
		return nil, domain.WrapError(domain.KindStorage, "failed to parse stored ticker suggestions", err)
	}

	return suggestions, nil
}
