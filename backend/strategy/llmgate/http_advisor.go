package llmgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAdvisor asks a remote completion endpoint (OpenAI-compatible chat
// completions) whether a symbol's setup is currently favorable, the way
// data providers call a remote REST API for market data.
type HTTPAdvisor struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHTTPAdvisor creates an HTTPAdvisor against baseURL (an
// OpenAI-compatible /chat/completions endpoint) using model and apiKey.
func NewHTTPAdvisor(baseURL, apiKey, model string) *HTTPAdvisor {
	return &HTTPAdvisor{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Open asks the advisory endpoint a yes/no question about symbol and
// interprets the first word of the reply as the answer. Any response
// that doesn't clearly start with "yes" is treated as closed.
func (a *HTTPAdvisor) Open(ctx context.Context, symbol string) (bool, error) {
	reqBody := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: "Reply with exactly one word, yes or no."},
			{Role: "user", Content: fmt.Sprintf("Is now a favorable time to open a long position in %s? Answer yes or no.", symbol)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("llmgate: advisor returned status %d: %s", resp.StatusCode, string(body))
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return false, err
	}
	if len(decoded.Choices) == 0 {
		return false, fmt.Errorf("llmgate: advisor returned no choices")
	}

	answer := strings.ToLower(strings.TrimSpace(decoded.Choices[0].Message.Content))
	return strings.HasPrefix(answer, "yes"), nil
}
