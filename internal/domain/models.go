package domain

import "time"

// Thesis is a user's market belief plus the AI-derived analysis
// attached to it. Immutable once created.
type Thesis struct {
	ID              string             `json:"id" db:"id"`
	UserID          *string            `json:"user_id,omitempty" db:"user_id"`
	Text            string             `json:"text" db:"text"`
	Summary         string             `json:"summary,omitempty" db:"summary"`
	TickersLong     []TickerSuggestion `json:"tickers_long,omitempty" db:"tickers_long"`
	TickersShort    []TickerSuggestion `json:"tickers_short,omitempty" db:"tickers_short"`
	Rationale       string             `json:"rationale,omitempty" db:"rationale"`
	ConfidenceLevel string             `json:"confidence_level,omitempty" db:"confidence_level"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
}

// PaperTrade is a simulated position linked to a thesis. CurrentPrice
// defaults to the entry price and PnL to zero; neither is refreshed after
// creation.
type PaperTrade struct {
	ID           string    `json:"id" db:"id"`
	ThesisID     string    `json:"thesis_id" db:"thesis_id"`
	Ticker       string    `json:"ticker" db:"ticker"`
	Direction    string    `json:"direction" db:"direction"` // "long" or "short"
	Quantity     float64   `json:"quantity" db:"quantity"`
	EntryPrice   float64   `json:"entry_price" db:"entry_price"`
	CurrentPrice float64   `json:"current_price" db:"current_price"`
	PnL          float64   `json:"pnl" db:"pnl"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// User is referenced weakly by theses. This service never creates users.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Name      *string   `json:"name,omitempty" db:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TickerSuggestion is a single long or short idea produced by the
// alignment call.
type TickerSuggestion struct {
	Symbol          string   `json:"symbol"`
	Conviction      string   `json:"conviction"` // "low", "medium", "high"
	Rationale       string   `json:"rationale"`
	SuggestedWeight *float64 `json:"suggested_weight,omitempty"`
	Confidence      string   `json:"confidence,omitempty"`
}

// SectorImpact describes how one sector is affected by a thesis.
type SectorImpact struct {
	Name      string `json:"name"`
	Direction string `json:"direction"` // "positive", "negative", "neutral"
	Notes     string `json:"notes,omitempty"`
}

// ThesisAlignment is the structured output of the alignment call.
type ThesisAlignment struct {
	ThesisSummary   string             `json:"thesis_summary"`
	SectorsAffected []SectorImpact     `json:"sectors_affected"`
	TickersLong     []TickerSuggestion `json:"tickers_long"`
	TickersShort    []TickerSuggestion `json:"tickers_short"`
	Rationale       string             `json:"rationale"`
	ConfidenceNotes []string           `json:"confidence_notes"`
	MacroSignals    []string           `json:"macro_signals"`
}

// ThesisReview is the structured pros/cons research brief for a thesis.
type ThesisReview struct {
	Pros              []string `json:"pros"`
	Cons              []string `json:"cons"`
	RelatedThemes     []string `json:"related_themes"`
	HistoricalAnalogs []string `json:"historical_analogs"`
	CounterTheses     []string `json:"counter_theses"`
	ConfidenceLevel   string   `json:"confidence_level"`
}

// Quote is a normalized market quote. ChangePercent is nil when the
// provider cannot supply a reference price.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent *float64  `json:"changePercent"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CommunityThesis is a thesis enriched with aggregated paper-trade results
// for the community feed.
type CommunityThesis struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Summary         string    `json:"summary,omitempty"`
	ConfidenceLevel string    `json:"confidence_level,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	TotalPnL        float64   `json:"total_pnl"`
	TradeCount      int       `json:"trade_count"`
	UserName        string    `json:"user_name"`
}
