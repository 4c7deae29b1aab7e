package gemini

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.Judge = (*Judge)(nil)

// DefaultJudgeTimeout is the default timeout for a single judge call.
const DefaultJudgeTimeout = 60 * time.Second

// Judge implements ragjudge.Judge using Google Gemini.
type Judge struct {
	client  TextGenerator
	timeout time.Duration
}

// JudgeOption configures a Judge.
type JudgeOption func(*Judge)

// WithTimeout sets the timeout for API calls.
func WithTimeout(d time.Duration) JudgeOption {
	return func(j *Judge) {
		j.timeout = d
	}
}

// NewJudge creates a new Judge.
func NewJudge(client TextGenerator, opts ...JudgeOption) *Judge {
	j := &Judge{
		client:  client,
		timeout: DefaultJudgeTimeout,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Judge sends the prompt as a single user message and returns the reply text.
func (j *Judge) Judge(ctx context.Context, req ragjudge.JudgeRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	reply, err := j.client.GenerateText(ctx, req.Model, req.Prompt, Sampling{
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
	})
	if err != nil {
		return "", classifyError(err)
	}
	if reply == "" {
		return "", errors.New("gemini: empty reply")
	}
	return reply, nil
}

// classifyError maps API status codes to the ragjudge error taxonomy.
func classifyError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ragjudge.AuthError{StatusCode: apiErr.StatusCode, Err: err}
	case http.StatusTooManyRequests:
		return &ragjudge.RateLimitError{Err: err}
	}
	return err
}
