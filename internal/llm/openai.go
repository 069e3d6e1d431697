package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joestump/title-optimizer/internal/config"
	"github.com/joestump/title-optimizer/internal/logger"
)

// Fixed sampling parameters and attribution headers sent with every call.
const (
	MaxTokens   = 512
	Temperature = 0.7
	TopP        = 0.9

	RefererHeader = "https://replit.com"
	TitleHeader   = "Replit SEO Title Generator"
)

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ Completer = (*Client)(nil)

// New creates a Client from cfg. The API key is captured here and never
// re-read from the environment.
func New(cfg *config.Config) *Client {
	model := cfg.LLM.Model
	if model == "" {
		model = config.DefaultModel
	}
	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	return &Client{
		apiKey:  cfg.LLM.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: cfg.LLM.Timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	// Error is only read from non-2xx responses.
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete renders the prompt for req and makes one chat-completion call.
// Non-2xx responses come back as *APIError; any 2xx body without content
// yields NoResponseText.
func (c *Client) Complete(ctx context.Context, req TitleRequest) (*Completion, error) {
	log := logger.FromContext(ctx)

	prompt, err := RenderPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		TopP:        TopP,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", RefererHeader)
	httpReq.Header.Set("X-Title", TitleHeader)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	log.Debug("completion API response",
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(respBody)),
	)

	var apiResp chatResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && apiResp.Error != nil {
			apiErr.Message = apiResp.Error.Message
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message == nil || apiResp.Choices[0].Message.Content == "" {
		return &Completion{Text: NoResponseText, Empty: true}, nil
	}
	return &Completion{Text: apiResp.Choices[0].Message.Content}, nil
}
