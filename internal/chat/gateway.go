package chat

import (
	"context"
	"errors"
	"fmt"
)

// Request is the body sent to the completion gateway.
type Request struct {
	Message string       `json:"message"`
	File    *FilePayload `json:"file"`
}

// Gateway performs one chat completion. Implementations must return an error
// matching context.Canceled when ctx is cancelled before they settle.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyResponse is reported when a completion has no visible text.
var ErrEmptyResponse = errors.New("empty response")

// TransportError covers network failures and unusable response bodies.
type TransportError struct {
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError carries an {error:{message}} body returned by the gateway.
// Its message is shown to the user verbatim.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// IsCancellation reports whether err is the result of an explicit cancel.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// ErrorText is the text shown in the reply slot for err.
func ErrorText(err error) string {
	var upstream *UpstreamError
	var transport *TransportError
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return "Groq API returned an empty response."
	case errors.As(err, &upstream):
		return upstream.Message
	case errors.As(err, &transport):
		return transport.Reason
	default:
		return err.Error()
	}
}
