// Package api exposes the thesis pipeline over HTTP. Every error is caught
// at this boundary, logged with a component tag, and mapped to a generic
// user-safe message plus a status code.
package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kirillm/thesis-desk/internal/domain"
	"github.com/kirillm/thesis-desk/internal/ratelimit"
	"github.com/kirillm/thesis-desk/pkg/utils"
)

// Generator produces structured analyses from an external language model.
type Generator interface {
	Align(thesisText string) (*domain.ThesisAlignment, error)
	Review(thesisID, summary string) (*domain.ThesisReview, error)
}

// QuoteFetcher resolves quotes for a set of symbols, partial results
// allowed.
type QuoteFetcher interface {
	FetchQuotes(symbols []string) []domain.Quote
}

// Notifier announces newly published theses to an out-of-band channel.
// Implementations must swallow their own failures.
type Notifier interface {
	ThesisPublished(thesis *domain.Thesis)
}

// Listing caps.
const (
	thesisListLimit    = 20
	tradeListLimit     = 10
	communityListLimit = 20
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	logger    *utils.Logger
	generator Generator
	quotes    QuoteFetcher
	theses    domain.ThesisRepository
	trades    domain.PaperTradeRepository
	community domain.CommunityRepository
	limiter   ratelimit.Limiter
	notifier  Notifier
	port      int
}

// NewServer wires the handlers. notifier may be nil.
func NewServer(
	logger *utils.Logger,
	generator Generator,
	quotes QuoteFetcher,
	theses domain.ThesisRepository,
	trades domain.PaperTradeRepository,
	community domain.CommunityRepository,
	limiter ratelimit.Limiter,
	notifier Notifier,
	port int,
) *Server {
	return &Server{
		logger:    logger,
		generator: generator,
		quotes:    quotes,
		theses:    theses,
		trades:    trades,
		community: community,
		limiter:   limiter,
		notifier:  notifier,
		port:      port,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", s.handleHealth)

	router.POST("/thesis", s.handleAnalyzeThesis)
	router.GET("/theses", s.handleListTheses)
	router.POST("/theses", s.handleCreateThesis)
	router.GET("/paper-trades", s.handleListTrades)
	router.POST("/paper-trades", s.handleCreateTrade)
	router.POST("/review", s.handleReview)
	router.GET("/community", s.handleCommunity)

	return router
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting HTTP server on %s", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// clientKey derives the rate-limit identity for a request.
func clientKey(c *gin.Context) string {
	return ratelimit.ClientKey(
		c.GetHeader("X-Forwarded-For"),
		c.GetHeader("User-Agent"),
		c.GetHeader("Referer"),
	)
}

// sendError maps a tagged error to its status code. Internal failures are
// logged verbatim; the client only ever sees the user-safe message.
func (s *Server) sendError(c *gin.Context, component string, err error) {
	switch kind := domain.KindOf(err); kind {
	case domain.KindValidation, domain.KindInjection:
		message := "Invalid request."
		var e *domain.Error
		if errors.As(err, &e) && e.Message != "" {
			message = e.Message
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": message})

	case domain.KindRateLimit:
		retryAfter := retryAfterSeconds(domain.RetryAfterOf(err))
		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many requests. Please slow down.",
			"retry_after": retryAfter,
		})

	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})

	default:
		s.logger.Error("%s failed: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericMessage(kind)})
	}
}

func genericMessage(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindGeneration, domain.KindSchema:
		return "Failed to analyze thesis. Please try again shortly."
	case domain.KindConfig:
		return "Service is not fully configured."
	default:
		return "Something went wrong. Please try again."
	}
}

// retryAfterSeconds rounds up so a client honoring the header never retries
// inside the window.
func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
