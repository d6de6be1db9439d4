package client

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/bz888/parley/internal/logger"
)

var ErrMalformedResponse = errors.New("upstream returned malformed JSON")

// OpenAIClient talks to any OpenAI compatible chat-completions API.
type OpenAIClient struct {
	http       *resty.Client
	model      string
	configured bool
	log        *logger.Logger
}

// NewOpenAIClient creates a resty-backed client for cfg.BaseURL.
func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 75 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &OpenAIClient{
		http:       httpClient,
		model:      cfg.Model,
		configured: cfg.APIKey != "",
		log:        logger.NewLogger("upstream"),
	}
}

func (c *OpenAIClient) Configured() bool {
	return c.configured
}

func (c *OpenAIClient) Model() string {
	return c.model
}

// Chat posts a single user message and returns the upstream body unchanged.
func (c *OpenAIClient) Chat(ctx context.Context, message string) ([]byte, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		c.log.Error("chat completion request failed", "error", err.Error())
		return nil, err
	}

	body := resp.Body()
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Message: errorMessage(body)}
		c.log.Warn("upstream rejected chat completion", "status", apiErr.Status, "message", apiErr.Message)
		return nil, apiErr
	}
	if !json.Valid(body) {
		return nil, ErrMalformedResponse
	}
	return body, nil
}

// Models returns the ids of the models the provider lists.
func (c *OpenAIClient) Models(ctx context.Context) ([]string, error) {
	var list openai.ModelsList
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&list).
		Get("/models")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Message: errorMessage(resp.Body())}
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}
