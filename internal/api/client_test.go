package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bz888/parley/internal/chat"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestCompleteSendsPayload(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"It is a cat."}}]}`)(w, r)
	})

	text, err := c.Complete(context.Background(), chat.Request{
		Message: "What's in this image?",
		File:    &chat.FilePayload{Data: "iVBORw0KGgo=", MimeType: "image/png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "It is a cat.", text)
	assert.Equal(t, "What's in this image?", got["message"])
	assert.Equal(t, map[string]any{"data": "iVBORw0KGgo=", "mimeType": "image/png"}, got["file"])
}

func TestCompleteSendsNullFile(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		respond(http.StatusOK, `{"choices":[]}`)(w, r)
	})

	text, err := c.Complete(context.Background(), chat.Request{Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "", text)
	assert.Equal(t, "null", string(raw["file"]))
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name         string
		handler      http.HandlerFunc
		wantUpstream *chat.UpstreamError
		wantReason   string
	}{
		{
			name:       "empty body",
			handler:    respond(http.StatusOK, ""),
			wantReason: reasonEmptyBody,
		},
		{
			name:       "malformed json",
			handler:    respond(http.StatusOK, "<html>"),
			wantReason: reasonMalformed,
		},
		{
			name:       "malformed json on error status",
			handler:    respond(http.StatusBadGateway, "Bad Gateway"),
			wantReason: reasonMalformed,
		},
		{
			name:         "upstream message",
			handler:      respond(http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`),
			wantUpstream: &chat.UpstreamError{Status: http.StatusTooManyRequests, Message: "Rate limit reached"},
		},
		{
			name:         "upstream without message",
			handler:      respond(http.StatusInternalServerError, `{}`),
			wantUpstream: &chat.UpstreamError{Status: http.StatusInternalServerError, Message: upstreamFallback},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			_, err := c.Complete(context.Background(), chat.Request{Message: "hi"})
			require.Error(t, err)

			if tt.wantUpstream != nil {
				var upstream *chat.UpstreamError
				require.True(t, errors.As(err, &upstream))
				assert.Equal(t, tt.wantUpstream, upstream)
				return
			}
			var transport *chat.TransportError
			require.True(t, errors.As(err, &transport))
			assert.Equal(t, tt.wantReason, transport.Reason)
		})
	}
}

func TestCompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Complete(context.Background(), chat.Request{Message: "hi"})

	var transport *chat.TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, reasonUnreachable, transport.Reason)
	assert.False(t, chat.IsCancellation(err))
}

func TestCompleteCancelled(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.Complete(ctx, chat.Request{Message: "hi"})
	assert.True(t, chat.IsCancellation(err))
}

func TestListModels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/models", r.URL.Path)
		respond(http.StatusOK, `["llama-3.3-70b-versatile","gemma2-9b-it"]`)(w, r)
	})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama-3.3-70b-versatile", "gemma2-9b-it"}, models)
}

func TestListModelsUpstreamError(t *testing.T) {
	c := newTestClient(t, respond(http.StatusInternalServerError, `{"error":{"message":"Server is not configured with an API key."}}`))

	_, err := c.ListModels(context.Background())
	assert.EqualError(t, err, "Server is not configured with an API key.")
}
