package api

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kirillm/thesis-desk/internal/domain"
	"github.com/kirillm/thesis-desk/internal/guard"
)

// minThesisLength is the floor for a thesis worth analyzing, in characters.
const minThesisLength = 10

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().Unix()})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// handleAnalyzeThesis runs the guarded pipeline: sanitize, rate limit,
// align, then quotes for the suggested tickers. The guard rejects before
// any external call is made.
func (s *Server) handleAnalyzeThesis(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, "thesis", domain.NewError(domain.KindValidation, "Invalid request body."))
		return
	}

	if utf8.RuneCountInString(strings.TrimSpace(req.Text)) < minThesisLength {
		s.sendError(c, "thesis", domain.NewError(domain.KindValidation,
			"Please provide a bit more detail so we can analyze your thesis."))
		return
	}

	sanitized, err := guard.Sanitize(req.Text)
	if err != nil {
		s.sendError(c, "thesis", err)
		return
	}

	if res := s.limiter.Allow(clientKey(c)); !res.OK {
		s.sendError(c, "thesis", &domain.Error{
			Kind:       domain.KindRateLimit,
			Message:    "Too many requests.",
			RetryAfter: res.RetryAfter,
		})
		return
	}

	alignment, err := s.generator.Align(sanitized)
	if err != nil {
		s.sendError(c, "thesis", err)
		return
	}

	symbols := make([]string, 0, len(alignment.TickersLong)+len(alignment.TickersShort))
	for _, ticker := range alignment.TickersLong {
		symbols = append(symbols, ticker.Symbol)
	}
	for _, ticker := range alignment.TickersShort {
		symbols = append(symbols, ticker.Symbol)
	}

	quotes := []domain.Quote{}
	if len(symbols) > 0 {
		quotes = s.quotes.FetchQuotes(symbols)
	}

	c.JSON(http.StatusOK, gin.H{"thesis": alignment, "quotes": quotes})
}

type createThesisRequest struct {
	Text            string                    `json:"text"`
	Summary         string                    `json:"summary"`
	TickersLong     []domain.TickerSuggestion `json:"tickers_long"`
	TickersShort    []domain.TickerSuggestion `json:"tickers_short"`
	Rationale       string                    `json:"rationale"`
	ConfidenceLevel string                    `json:"confidence_level"`
}

func (s *Server) handleCreateThesis(c *gin.Context) {
	var req createThesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, "theses", domain.NewError(domain.KindValidation, "Invalid request body."))
		return
	}

	if utf8.RuneCountInString(strings.TrimSpace(req.Text)) < minThesisLength {
		s.sendError(c, "theses", domain.NewError(domain.KindValidation,
			"Thesis text must be at least 10 characters."))
		return
	}
	if req.ConfidenceLevel != "" && !domain.ValidLevel(req.ConfidenceLevel) {
		s.sendError(c, "theses", domain.NewError(domain.KindValidation,
			"confidence_level must be low, medium, or high."))
		return
	}
	if err := validateSuggestions(req.TickersLong); err != nil {
		s.sendError(c, "theses", err)
		return
	}
	if err := validateSuggestions(req.TickersShort); err != nil {
		s.sendError(c, "theses", err)
		return
	}

	thesis := &domain.Thesis{
		Text:            strings.TrimSpace(req.Text),
		Summary:         req.Summary,
		TickersLong:     req.TickersLong,
		TickersShort:    req.TickersShort,
		Rationale:       req.Rationale,
		ConfidenceLevel: req.ConfidenceLevel,
	}

	if err := s.theses.Create(thesis); err != nil {
		s.sendError(c, "theses", err)
		return
	}

	if s.notifier != nil {
		go s.notifier.ThesisPublished(thesis)
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":         thesis.ID,
		"created_at": thesis.CreatedAt,
	}})
}

// thesisListItem is the compact listing shape: suggestion payloads stay out
// of the feed.
type thesisListItem struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Summary         string    `json:"summary,omitempty"`
	ConfidenceLevel string    `json:"confidence_level,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (s *Server) handleListTheses(c *gin.Context) {
	theses, err := s.theses.GetRecent(thesisListLimit)
	if err != nil {
		s.sendError(c, "theses", err)
		return
	}

	items := make([]thesisListItem, 0, len(theses))
	for _, thesis := range theses {
		items = append(items, thesisListItem{
			ID:              thesis.ID,
			Text:            thesis.Text,
			Summary:         thesis.Summary,
			ConfidenceLevel: thesis.ConfidenceLevel,
			CreatedAt:       thesis.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) handleListTrades(c *gin.Context) {
	thesisID := c.Query("thesis_id")
	if thesisID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thesis_id query parameter is required."})
		return
	}
	if _, err := uuid.Parse(thesisID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thesis_id must be a valid UUID."})
		return
	}

	trades, err := s.trades.GetByThesis(thesisID, tradeListLimit)
	if err != nil {
		s.sendError(c, "paper-trades", err)
		return
	}

	if trades == nil {
		trades = []domain.PaperTrade{}
	}
	c.JSON(http.StatusOK, gin.H{"data": trades})
}

type createTradeRequest struct {
	ThesisID     string   `json:"thesis_id"`
	Ticker       string   `json:"ticker"`
	Direction    string   `json:"direction"`
	Quantity     float64  `json:"quantity"`
	EntryPrice   float64  `json:"entry_price"`
	CurrentPrice *float64 `json:"current_price"`
	PnL          *float64 `json:"pnl"`
}

func (s *Server) handleCreateTrade(c *gin.Context) {
	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, "paper-trades", domain.NewError(domain.KindValidation, "Invalid request body."))
		return
	}

	if _, err := uuid.Parse(req.ThesisID); err != nil {
		s.sendError(c, "paper-trades", domain.NewError(domain.KindValidation, "thesis_id must be a valid UUID."))
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		s.sendError(c, "paper-trades", domain.NewError(domain.KindValidation, "ticker is required."))
		return
	}
	if !domain.ValidDirection(req.Direction) {
		s.sendError(c, "paper-trades", domain.NewError(domain.KindValidation, "direction must be long or short."))
		return
	}
	if req.Quantity <= 0 {
		s.sendError(c, "paper-trades", domain.NewError(domain.KindValidation, "quantity must be positive."))
		return
	}
	if req.EntryPrice <= 0 {
		s.sendError(c, "paper-trades", domain.NewError(domain.KindValidation, "entry_price must be positive."))
		return
	}
	if req.CurrentPrice != nil && *req.CurrentPrice <= 0 {
		s.sendError(c, "paper-trades", domain.NewError(domain.KindValidation, "current_price must be positive."))
		return
	}

	trade := &domain.PaperTrade{
		ThesisID:   req.ThesisID,
		Ticker:     strings.ToUpper(strings.TrimSpace(req.Ticker)),
		Direction:  req.Direction,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
	}

	// Defaults: an open position marks at its entry with flat PnL.
	trade.CurrentPrice = req.EntryPrice
	if req.CurrentPrice != nil {
		trade.CurrentPrice = *req.CurrentPrice
	}
	if req.PnL != nil {
		trade.PnL = *req.PnL
	}

	if err := s.trades.Create(trade); err != nil {
		s.sendError(c, "paper-trades", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": trade})
}

type reviewRequest struct {
	ThesisID string `json:"thesis_id"`
	Summary  string `json:"summary"`
}

// handleReview resolves a summary from the request or from storage and
// produces the pros/cons brief.
func (s *Server) handleReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, "review", domain.NewError(domain.KindValidation, "Invalid request body."))
		return
	}

	if req.ThesisID != "" {
		if _, err := uuid.Parse(req.ThesisID); err != nil {
			s.sendError(c, "review", domain.NewError(domain.KindValidation, "thesis_id must be a valid UUID."))
			return
		}
	}

	summary := strings.TrimSpace(req.Summary)
	if summary == "" && req.ThesisID != "" {
		stored, err := s.theses.GetSummary(req.ThesisID)
		if err != nil && domain.KindOf(err) != domain.KindNotFound {
			s.sendError(c, "review", err)
			return
		}
		summary = strings.TrimSpace(stored)
	}

	if summary == "" {
		s.sendError(c, "review", domain.NewError(domain.KindValidation, "Provide a thesis summary to analyze."))
		return
	}

	thesisID := req.ThesisID
	if thesisID == "" {
		thesisID = "ad-hoc"
	}

	review, err := s.generator.Review(thesisID, summary)
	if err != nil {
		s.sendError(c, "review", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (s *Server) handleCommunity(c *gin.Context) {
	theses, err := s.community.GetTop(communityListLimit)
	if err != nil {
		s.sendError(c, "community", err)
		return
	}

	if theses == nil {
		theses = []domain.CommunityThesis{}
	}
	c.JSON(http.StatusOK, gin.H{"data": theses})
}

func validateSuggestions(suggestions []domain.TickerSuggestion) error {
	for _, suggestion := range suggestions {
		if strings.TrimSpace(suggestion.Symbol) == "" {
			return domain.NewError(domain.KindValidation, "ticker suggestions require a symbol.")
		}
		if suggestion.Conviction != "" && !domain.ValidLevel(suggestion.Conviction) {
			return domain.NewError(domain.KindValidation, "conviction must be low, medium, or high.")
		}
		if suggestion.Confidence != "" && !domain.ValidLevel(suggestion.Confidence) {
			return domain.NewError(domain.KindValidation, "confidence must be low, medium, or high.")
		}
	}
	return nil
}
