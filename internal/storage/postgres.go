// Package storage wires PostgreSQL access behind the domain repository
// interfaces. Numeric columns come back from the driver as text and are
// coerced to numbers at this boundary, before any arithmetic or
// serialization.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kirillm/thesis-desk/internal/domain"
	"github.com/kirillm/thesis-desk/internal/storage/repository"
)

// PostgresStorage is a facade over the per-entity repositories.
type PostgresStorage struct {
	db        *sql.DB
	theses    *repository.ThesisRepository
	trades    *repository.PaperTradeRepository
	community *repository.CommunityRepository
}

// NewPostgresStorage connects using a libpq connection string and tunes the
// pool.
func NewPostgresStorage(connString string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return &PostgresStorage{
		db:        db,
		theses:    repository.NewThesisRepository(db),
		trades:    repository.NewPaperTradeRepository(db),
		community: repository.NewCommunityRepository(db),
	}, nil
}

// InitSchema applies idempotent migrations. Safe to run on every start.
func (s *PostgresStorage) InitSchema() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT,
			name TEXT,
			avatar_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS theses (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id),
			text TEXT NOT NULL,
			summary TEXT,
			tickers_long TEXT,
			tickers_short TEXT,
			rationale TEXT,
			confidence_level VARCHAR(10),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS paper_trades (
			id UUID PRIMARY KEY,
			thesis_id UUID NOT NULL REFERENCES theses(id),
			ticker VARCHAR(16) NOT NULL,
			direction VARCHAR(5) NOT NULL,
			quantity NUMERIC NOT NULL CHECK (quantity > 0),
			entry_price NUMERIC NOT NULL CHECK (entry_price > 0),
			current_price NUMERIC NOT NULL,
			pnl NUMERIC NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_theses_created_at ON theses(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_trades_thesis_id ON paper_trades(thesis_id)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_trades_created_at ON paper_trades(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// ==================== THESES ====================

func (s *PostgresStorage) CreateThesis(thesis *domain.Thesis) error {
	return s.theses.Create(thesis)
}

func (s *PostgresStorage) GetRecentTheses(limit int) ([]domain.Thesis, error) {
	return s.theses.GetRecent(limit)
}

func (s *PostgresStorage) GetThesisSummary(id string) (string, error) {
	return s.theses.GetSummary(id)
}

// ==================== PAPER TRADES ====================

func (s *PostgresStorage) CreatePaperTrade(trade *domain.PaperTrade) error {
	return s.trades.Create(trade)
}

func (s *PostgresStorage) GetTradesByThesis(thesisID string, limit int) ([]domain.PaperTrade, error) {
	return s.trades.GetByThesis(thesisID, limit)
}

// ==================== COMMUNITY ====================

func (s *PostgresStorage) GetCommunityTheses(limit int) ([]domain.CommunityThesis, error) {
	return s.community.GetTop(limit)
}

// Theses exposes the thesis repository as its domain interface.
func (s *PostgresStorage) Theses() domain.ThesisRepository { return s.theses }

// Trades exposes the paper-trade repository as its domain interface.
func (s *PostgresStorage) Trades() domain.PaperTradeRepository { return s.trades }

// Community exposes the community repository as its domain interface.
func (s *PostgresStorage) Community() domain.CommunityRepository { return s.community }

// Close closes the underlying connection pool.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
