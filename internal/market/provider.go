// Package market fetches last-price and change-percent quotes from a
// configurable external provider. Per-symbol failures are swallowed so a
// batch always yields a partial result rather than an error.
package market

import (
	"strings"
	"sync"

	"github.com/kirillm/thesis-desk/internal/domain"
	"github.com/kirillm/thesis-desk/pkg/utils"
)

// Provider is a narrow adapter over one quote source. Implementations
// normalize the provider's response shape into a domain.Quote.
type Provider interface {
	Name() string
	Quote(symbol string) (*domain.Quote, error)
}

// Fetcher fans quote requests out across symbols against one provider.
type Fetcher struct {
	provider Provider
	logger   *utils.Logger
}

// NewFetcher creates a Fetcher over the given provider.
func NewFetcher(provider Provider, logger *utils.Logger) *Fetcher {
	return &Fetcher{provider: provider, logger: logger}
}

// FetchQuotes requests one quote per unique symbol in parallel. Symbols the
// provider cannot serve are omitted; the call itself never fails.
func (f *Fetcher) FetchQuotes(symbols []string) []domain.Quote {
	unique := dedupe(symbols)
	if len(unique) == 0 {
		return []domain.Quote{}
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		quotes = make([]domain.Quote, 0, len(unique))
	)

	for _, symbol := range unique {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			quote, err := f.provider.Quote(symbol)
			if err != nil {
				f.logger.Warn("%s quote for %s skipped: %v", f.provider.Name(), symbol, err)
				return
			}

			mu.Lock()
			quotes = append(quotes, *quote)
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return quotes
}

// dedupe upper-cases symbols and drops duplicates, preserving first-seen
// order.
func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	unique := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		upper := strings.ToUpper(strings.TrimSpace(symbol))
		if upper == "" || seen[upper] {
			continue
		}
		seen[upper] = true
		unique = append(unique, upper)
	}

	return unique
}
