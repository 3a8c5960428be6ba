package ai

import (
	"encoding/json"
	"fmt"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// decodeAlignment parses the raw model output and applies the local schema
// pass: required strings must be present, enum values must be valid, and
// optional arrays default to empty rather than nil.
func decodeAlignment(raw []byte) (*domain.ThesisAlignment, error) {
	var alignment domain.ThesisAlignment
	if err := json.Unmarshal(raw, &alignment); err != nil {
		return nil, domain.WrapError(domain.KindSchema, "invalid response format from alignment call", err)
	}

	if alignment.ThesisSummary == "" {
		return nil, domain.NewError(domain.KindSchema, "alignment output missing thesis_summary")
	}

	for i, sector := range alignment.SectorsAffected {
		if sector.Name == "" {
			return nil, domain.NewError(domain.KindSchema,
				fmt.Sprintf("alignment sector %d missing name", i))
		}
		if !domain.ValidImpact(sector.Direction) {
			return nil, domain.NewError(domain.KindSchema,
				fmt.Sprintf("alignment sector %q has invalid direction %q", sector.Name, sector.Direction))
		}
	}

	if err := validateTickers("tickers_long", alignment.TickersLong); err != nil {
		return nil, err
	}
	if err := validateTickers("tickers_short", alignment.TickersShort); err != nil {
		return nil, err
	}

	if alignment.SectorsAffected == nil {
		alignment.SectorsAffected = []domain.SectorImpact{}
	}
	if alignment.TickersLong == nil {
		alignment.TickersLong = []domain.TickerSuggestion{}
	}
	if alignment.TickersShort == nil {
		alignment.TickersShort = []domain.TickerSuggestion{}
	}
	if alignment.ConfidenceNotes == nil {
		alignment.ConfidenceNotes = []string{}
	}
	if alignment.MacroSignals == nil {
		alignment.MacroSignals = []string{}
	}

	return &alignment, nil
}

// decodeReview parses the raw model output for the review call. All list
// fields default to empty and confidence_level falls back to "medium".
func decodeReview(raw []byte) (*domain.ThesisReview, error) {
	var review domain.ThesisReview
	if err := json.Unmarshal(raw, &review); err != nil {
		return nil, domain.WrapError(domain.KindSchema, "invalid response format from review call", err)
	}

	if review.ConfidenceLevel == "" {
		review.ConfidenceLevel = domain.LevelMedium
	} else if !domain.ValidLevel(review.ConfidenceLevel) {
		return nil, domain.NewError(domain.KindSchema,
			fmt.Sprintf("review output has invalid confidence_level %q", review.ConfidenceLevel))
	}

	if review.Pros == nil {
		review.Pros = []string{}
	}
	if review.Cons == nil {
		review.Cons = []string{}
	}
	if review.RelatedThemes == nil {
		review.RelatedThemes = []string{}
	}
	if review.HistoricalAnalogs == nil {
		review.HistoricalAnalogs = []string{}
	}
	if review.CounterTheses == nil {
		review.CounterTheses = []string{}
	}

	return &review, nil
}

func validateTickers(field string, tickers []domain.TickerSuggestion) error {
	for i, ticker := range tickers {
		if ticker.Symbol == "" {
			return domain.NewError(domain.KindSchema,
				fmt.Sprintf("alignment %s[%d] missing symbol", field, i))
		}
		if !domain.ValidLevel(ticker.Conviction) {
			return domain.NewError(domain.KindSchema,
				fmt.Sprintf("alignment %s[%d] has invalid conviction %q", field, i, ticker.Conviction))
		}
		if ticker.Confidence != "" && !domain.ValidLevel(ticker.Confidence) {
			return domain.NewError(domain.KindSchema,
				fmt.Sprintf("alignment %s[%d] has invalid confidence %q", field, i, ticker.Confidence))
		}
	}
	return nil
}
