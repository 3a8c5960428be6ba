package market

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kirillm/thesis-desk/internal/domain"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubProvider reads real-time quotes from Finnhub.
type FinnhubProvider struct {
	client *resty.Client
	apiKey string
}

type finnhubQuoteResponse struct {
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
}

// NewFinnhubProvider creates a Finnhub adapter. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewFinnhubProvider(apiKey, baseURL string) *FinnhubProvider {
	if baseURL == "" {
		baseURL = finnhubBaseURL
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)

	return &FinnhubProvider{client: client, apiKey: apiKey}
}

func (p *FinnhubProvider) Name() string { return "finnhub" }

// Quote fetches the current quote. Finnhub reports zeros for symbols it
// does not cover, which is treated as no data.
func (p *FinnhubProvider) Quote(symbol string) (*domain.Quote, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("finnhub API key not configured")
	}

	resp, err := p.client.R().
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  p.apiKey,
		}).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("finnhub request for %s failed: %w", symbol, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
	}

	var quote finnhubQuoteResponse
	if err := json.Unmarshal(resp.Body(), &quote); err != nil {
		return nil, fmt.Errorf("failed to parse finnhub response for %s: %w", symbol, err)
	}

	if quote.Current == 0 {
		return nil, fmt.Errorf("finnhub has no data for %s", symbol)
	}

	var changePercent *float64
	if quote.PreviousClose != 0 {
		change := (quote.Current - quote.PreviousClose) / quote.PreviousClose * 100
		changePercent = &change
	}

	return &domain.Quote{
		Symbol:        symbol,
		Price:         quote.Current,
		ChangePercent: changePercent,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}
