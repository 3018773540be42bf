package llm

import (
	"context"
	"errors"
	"fmt"

	"bodygoal/internal/shared"
)

// ErrUnavailable indicates the generation service could not be reached or
// returned a service-level error.
var ErrUnavailable = errors.New("generation service unavailable")

// ErrTimeout indicates the generation call exceeded its deadline. Callers
// recover from it the same way as ErrUnavailable; the two are kept apart
// for observability only.
var ErrTimeout = errors.New("generation timed out")

// Prompt is a structured generation request: system instructions plus the
// user payload. Both are opaque text to the client.
type Prompt struct {
	System string
	User   string
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt Prompt) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// classify maps a transport error to the package's failure kinds so that
// callers can branch with errors.Is. Deadline overruns become ErrTimeout,
// everything else ErrUnavailable.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
