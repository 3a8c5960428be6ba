package domain

// ThesisRepository defines storage access for theses.
type ThesisRepository interface {
	Create(thesis *Thesis) error
	GetRecent(limit int) ([]Thesis, error)
	GetSummary(id string) (string, error)
}

// PaperTradeRepository defines storage access for paper trades.
type PaperTradeRepository interface {
	Create(trade *PaperTrade) error
	GetByThesis(thesisID string, limit int) ([]PaperTrade, error)
}

// CommunityRepository builds the community feed joining theses with
// aggregated trade results.
type CommunityRepository interface {
	GetTop(limit int) ([]CommunityThesis, error)
}
