package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/lexintake/internal/domain/docModel"
)

// Provider is the single seam to the chat backends. The summary pool,
// synthesis, verification and image description all speak through it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Name() string
}

type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	// Image, when set, makes this a vision request. Backends without
	// vision support must return an error rather than silently dropping
	// the attachment.
	Image *ImageInput
}

type ImageInput struct {
	Data     []byte
	MIMEType string
}

type Response struct {
	Text  string
	Usage docModel.TokenUsage
}

// transientError marks failures worth retrying: rate limits and timeouts.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func markTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether an error should be retried. Besides the
// explicit marker, it matches the provider failure modes seen in practice:
// rate limiting, 429 responses and deadline expiry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded")
}
