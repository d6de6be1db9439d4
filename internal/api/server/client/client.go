package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const defaultUpstreamMessage = "Upstream API request failed."

// CompletionClient is the upstream chat-completion provider used by the proxy.
type CompletionClient interface {
	// Configured reports whether a server-side credential is available.
	Configured() bool
	// Chat sends one user message and returns the raw completion body.
	Chat(ctx context.Context, message string) ([]byte, error)
	// Models lists the ids of the models the provider serves.
	Models(ctx context.Context) ([]string, error)
}

// ClientConfig holds the configuration for an upstream client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// APIError is a non-2xx answer from the upstream provider.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// errorMessage extracts error.message from an upstream error body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil || envelope.Error.Message == "" {
		return defaultUpstreamMessage
	}
	return envelope.Error.Message
}
