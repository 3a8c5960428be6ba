// Package ai calls an OpenAI-compatible chat-completions endpoint with a
// JSON schema constraint and re-validates the output against a local pass
// before it is trusted. The external service is the sole source of semantic
// analysis; the local pass is a contract boundary against provider drift.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillm/thesis-desk/internal/domain"
)

// Client talks to an OpenAI-compatible text-generation service.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema namedSchema `json:"json_schema"`
}

type namedSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a generation client. baseURL may or may not include the
// /v1 segment; model defaults are handled by config.
func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Align translates a sanitized thesis text into a structured alignment.
// A single attempt; failures surface to the caller without retry.
func (c *Client) Align(thesisText string) (*domain.ThesisAlignment, error) {
	content := fmt.Sprintf("The user believes: %q. Analyze it.", thesisText)

	raw, err := c.generate(alignmentSystemPrompt, content, alignmentSchema(), 0.4, 0.9)
	if err != nil {
		return nil, err
	}

	return decodeAlignment(raw)
}

// Review produces a balanced pros/cons brief for a thesis summary.
// thesisID is informational only; callers without one pass "ad-hoc".
func (c *Client) Review(thesisID, summary string) (*domain.ThesisReview, error) {
	content := fmt.Sprintf("Provide a balanced review for the thesis (%s): %q", thesisID, summary)

	raw, err := c.generate(reviewSystemPrompt, content, reviewSchema(), 0.3, 0)
	if err != nil {
		return nil, err
	}

	return decodeReview(raw)
}

// generate runs one schema-constrained chat completion and returns the raw
// textual output.
func (c *Client) generate(systemPrompt, userContent string, schema namedSchema, temperature, topP float64) ([]byte, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		Temperature:    temperature,
		TopP:           topP,
		ResponseFormat: &responseFormat{Type: "json_schema", JSONSchema: schema},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "failed to encode generation request", err)
	}

	// Avoid a double /v1 when the base URL already carries it.
	endpoint := c.baseURL
	if !strings.HasSuffix(endpoint, "/v1") {
		endpoint += "/v1"
	}
	endpoint += "/chat/completions"

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "failed to build generation request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "generation request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "failed to read generation response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.WrapError(domain.KindGeneration, "generation API error",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "malformed generation response", err)
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return nil, domain.NewError(domain.KindGeneration, "generation service returned no usable text")
	}

	return []byte(chatResp.Choices[0].Message.Content), nil
}
