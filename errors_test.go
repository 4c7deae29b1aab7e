package ragjudge_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/ragjudge"
	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{" 60 ", time.Minute},
		{"-3", 0},
		{"soon", 0},
		{"Sat, 01 Mar 2025 12:00:30 GMT", 30 * time.Second},
		{"Sat, 01 Mar 2025 11:59:00 GMT", 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ragjudge.ParseRetryAfter(tc.value, now), "value: %q", tc.value)
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	assert.True(t, ragjudge.IsFatal(&ragjudge.AuthError{StatusCode: 401, Err: cause}))
	assert.True(t, ragjudge.IsFatal(fmt.Errorf("wrapped: %w", &ragjudge.ConfigError{Field: "api key", Reason: "not set"})))
	assert.False(t, ragjudge.IsFatal(&ragjudge.RateLimitError{Err: cause}))
	assert.False(t, ragjudge.IsFatal(cause))
}

func TestErrorsUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	assert.ErrorIs(t, &ragjudge.AuthError{Err: cause}, cause)
	assert.ErrorIs(t, &ragjudge.RateLimitError{Err: cause}, cause)
	assert.ErrorIs(t, &ragjudge.RequestError{Attempts: 3, Err: cause}, cause)
	assert.Equal(t, "request failed after 3 attempts: boom", (&ragjudge.RequestError{Attempts: 3, Err: cause}).Error())
	assert.Equal(t, "authentication failed (HTTP 401): boom", (&ragjudge.AuthError{StatusCode: 401, Err: cause}).Error())
}

func TestJudgeConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults sampling settings", func(t *testing.T) {
		t.Parallel()

		cfg := ragjudge.DefaultJudgeConfig()

		assert.InDelta(t, 0.1, cfg.Temperature, 0)
		assert.InDelta(t, 0.1, cfg.TopP, 0)
	})

	t.Run("requires a model", func(t *testing.T) {
		t.Parallel()

		err := ragjudge.DefaultJudgeConfig().Validate()

		var cfgErr *ragjudge.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "eval_retrieval_model", cfgErr.Field)
	})

	t.Run("builds request", func(t *testing.T) {
		t.Parallel()

		cfg := ragjudge.JudgeConfig{Model: "m", Temperature: 0.2, TopP: 0.9}

		assert.NoError(t, cfg.Validate())
		assert.Equal(t, ragjudge.JudgeRequest{Prompt: "p", Model: "m", Temperature: 0.2, TopP: 0.9}, cfg.Request("p"))
	})
}

func TestActiveModels(t *testing.T) {
	t.Parallel()

	models := []ragjudge.FoundationModel{
		{ID: "a", Status: "ACTIVE"},
		{ID: "b", Status: "LEGACY"},
		{ID: "c", Status: "ACTIVE"},
	}

	active := ragjudge.ActiveModels(models)

	assert.Equal(t, []ragjudge.FoundationModel{models[0], models[2]}, active)
}
