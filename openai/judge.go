// Package openai implements ragjudge.Judge against OpenAI-compatible chat
// completion endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/ragjudge"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface verification.
var _ ragjudge.Judge = (*Judge)(nil)

// Environment variables read by the command line tools.
const (
	APIKeyEnv  = "RAGJUDGE_API_KEY"
	BaseURLEnv = "RAGJUDGE_BASE_URL"
)

// Judge sends prompts as a single user message to a chat completions
// endpoint. The SDK's own retries are disabled so the caller controls
// retry policy.
type Judge struct {
	client openaisdk.Client
}

// NewJudge creates a Judge for baseURL. The API key is sent verbatim in the
// Authorization header, without a "Bearer" prefix, as the evaluation
// gateway expects. Extra options are applied after the defaults.
func NewJudge(apiKey, baseURL string, opts ...option.RequestOption) (*Judge, error) {
	if apiKey == "" {
		return nil, &ragjudge.ConfigError{Field: APIKeyEnv, Reason: "not set"}
	}
	if baseURL == "" {
		return nil, &ragjudge.ConfigError{Field: BaseURLEnv, Reason: "not set"}
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	reqOpts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithHeader("Authorization", apiKey),
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)

	return &Judge{client: openaisdk.NewClient(reqOpts...)}, nil
}

// Judge implements ragjudge.Judge.
func (j *Judge) Judge(ctx context.Context, req ragjudge.JudgeRequest) (string, error) {
	resp, err := j.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(req.Model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(req.Prompt),
		},
		Temperature: openaisdk.Float(req.Temperature),
		TopP:        openaisdk.Float(req.TopP),
	})
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapError maps HTTP failures to the ragjudge error taxonomy.
func wrapError(err error) error {
	var apiErr *openaisdk.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ragjudge.AuthError{StatusCode: apiErr.StatusCode, Err: err}
	case http.StatusTooManyRequests:
		var retryAfter time.Duration
		if apiErr.Response != nil {
			retryAfter = ragjudge.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"), time.Now())
		}
		return &ragjudge.RateLimitError{RetryAfter: retryAfter, Err: err}
	}
	return fmt.Errorf("openai: %w", err)
}
