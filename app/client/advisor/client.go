package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cardadvisor/app/config"
	"cardadvisor/app/service/conversation"

	"github.com/samber/do"
)

var (
	_ conversation.Asker     = (*Client)(nil)
	_ conversation.Suggester = (*Client)(nil)
)

// Client talks to the recommendation backend over HTTP JSON. It implements
// both the ask and the suggest collaborator boundaries.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Backend.Timeout(),
		},
	}, nil
}

func (c *Client) Ask(ctx context.Context, question string, history []conversation.Message) (*conversation.AskResult, error) {
	var response askResponse

	err := c.post(ctx, "/api/ask", askRequest{
		Question: question,
		History:  history,
	}, &response)
	if err != nil {
		return nil, err
	}

	if response.Error != "" {
		return nil, backendError(response.Error, response.Details)
	}

	return &conversation.AskResult{
		Title:           response.Title,
		Summary:         response.Summary,
		Recommendations: decodeRecommendations(response.Recommendations),
	}, nil
}

func (c *Client) Suggest(ctx context.Context, question string, history []conversation.Message, recommendations []conversation.Recommendation, summary string) ([]string, error) {
	var response suggestResponse

	err := c.post(ctx, "/api/suggestions", suggestRequest{
		Question:        question,
		History:         history,
		Recommendations: recommendations,
		Summary:         summary,
	}, &response)
	if err != nil {
		return nil, err
	}

	if response.Error != "" {
		return nil, backendError(response.Error, response.Details)
	}

	return response.Suggestions, nil
}

func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Backend.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Backend.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Backend.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(respBody, &failure) == nil && failure.Error != "" {
			return fmt.Errorf("backend returned status %d: %w", resp.StatusCode, backendError(failure.Error, failure.Details))
		}

		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if err = json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// decodeRecommendations tolerates a missing or malformed recommendations
// field, treating it as an empty list for that turn.
func decodeRecommendations(raw json.RawMessage) []conversation.Recommendation {
	if len(raw) == 0 {
		return nil
	}

	var recommendations []conversation.Recommendation
	if err := json.Unmarshal(raw, &recommendations); err != nil {
		slog.Warn("Malformed recommendations field, treating as empty", "error", err)
		return nil
	}

	return recommendations
}

func backendError(message, details string) error {
	if details != "" {
		return fmt.Errorf("%s: %s", message, details)
	}

	return fmt.Errorf("%s", message)
}
