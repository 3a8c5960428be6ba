package market

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kirillm/thesis-desk/internal/domain"
)

const polygonBaseURL = "https://api.polygon.io"

// PolygonProvider reads previous-day aggregates from Polygon.io.
type PolygonProvider struct {
	client *resty.Client
	apiKey string
}

type polygonAggsResponse struct {
	Results []struct {
		Close float64 `json:"c"`
		Open  float64 `json:"o"`
		Time  int64   `json:"t"`
	} `json:"results"`
}

// NewPolygonProvider creates a Polygon adapter. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewPolygonProvider(apiKey, baseURL string) *PolygonProvider {
	if baseURL == "" {
		baseURL = polygonBaseURL
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)

	return &PolygonProvider{client: client, apiKey: apiKey}
}

func (p *PolygonProvider) Name() string { return "polygon" }

// Quote fetches the previous-day bar and derives change-percent from the
// open/close spread.
func (p *PolygonProvider) Quote(symbol string) (*domain.Quote, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("polygon API key not configured")
	}

	resp, err := p.client.R().
		SetQueryParams(map[string]string{
			"adjusted": "true",
			"apiKey":   p.apiKey,
		}).
		Get(fmt.Sprintf("/v2/aggs/ticker/%s/prev", symbol))
	if err != nil {
		return nil, fmt.Errorf("polygon request for %s failed: %w", symbol, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("polygon API error %d: %s", resp.StatusCode(), resp.String())
	}

	var aggs polygonAggsResponse
	if err := json.Unmarshal(resp.Body(), &aggs); err != nil {
		return nil, fmt.Errorf("failed to parse polygon response for %s: %w", symbol, err)
	}

	if len(aggs.Results) == 0 {
		return nil, fmt.Errorf("polygon has no data for %s", symbol)
	}

	bar := aggs.Results[0]

	var changePercent *float64
	if bar.Open != 0 {
		change := (bar.Close - bar.Open) / bar.Open * 100
		changePercent = &change
	}

	return &domain.Quote{
		Symbol:        symbol,
		Price:         bar.Close,
		ChangePercent: changePercent,
		UpdatedAt:     time.UnixMilli(bar.Time).UTC(),
	}, nil
}
