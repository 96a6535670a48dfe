package client

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// AuthError indicates the API rejected the credentials. It is never
// retried and aborts the whole run.
type AuthError struct {
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.Status, e.Msg)
}

// ErrBadResponse marks a response the parser could not align with the
// request. The batch retries it like a transient failure; the model
// usually produces valid output on the next attempt.
var ErrBadResponse = errors.New("unparseable model response")

// classifyAPIError converts auth failures into AuthError and passes
// everything else through.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403 {
			return &AuthError{Status: apiErr.HTTPStatusCode, Msg: apiErr.Message}
		}
	}
	return err
}

// IsRetryable reports whether a failed attempt is worth repeating:
// rate limits, server errors, timeouts, and malformed responses.
// Auth failures and caller cancellation are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrBadResponse) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Unknown failures get the benefit of the doubt.
	return true
}
