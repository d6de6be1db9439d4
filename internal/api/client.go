package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/bz888/parley/internal/chat"
	"github.com/bz888/parley/internal/logger"
)

const (
	reasonUnreachable = "Failed to reach the chat server."
	reasonEmptyBody   = "Empty response from server. Ensure the proxy server is running on port 3000."
	reasonMalformed   = "Server returned malformed JSON. Check the proxy server logs for details."
	upstreamFallback  = "Upstream API request failed."
)

// Client talks to the chat proxy. It implements chat.Gateway.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

var _ chat.Gateway = (*Client)(nil)

// NewClient returns a client for the proxy at baseURL.
func NewClient(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)

	return &Client{
		http: httpClient,
		log:  logger.NewLogger("api client"),
	}
}

// Complete posts req to /api/chat and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req chat.Request) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/chat")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return "", fmt.Errorf("chat request: %w", context.Canceled)
		}
		c.log.Error("Failed to send chat request", "error", err.Error())
		return "", &chat.TransportError{Reason: reasonUnreachable, Err: err}
	}

	body := resp.Body()
	if len(body) == 0 {
		return "", &chat.TransportError{Reason: reasonEmptyBody}
	}
	if !json.Valid(body) {
		c.log.Warn("Malformed chat response", "status", resp.StatusCode())
		return "", &chat.TransportError{Reason: reasonMalformed}
	}

	if resp.IsError() {
		return "", &chat.UpstreamError{Status: resp.StatusCode(), Message: upstreamMessage(body)}
	}

	var completion openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", &chat.TransportError{Reason: reasonMalformed, Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// ListModels asks the proxy which upstream models are available.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var models []string
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&models).
		Get("/api/models")
	if err != nil {
		c.log.Error("Failed to perform models request", "error", err.Error())
		return nil, &chat.TransportError{Reason: reasonUnreachable, Err: err}
	}
	if resp.IsError() {
		return nil, &chat.UpstreamError{Status: resp.StatusCode(), Message: upstreamMessage(resp.Body())}
	}
	return models, nil
}

func upstreamMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
		return upstreamFallback
	}
	return envelope.Error.Message
}
