package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/eval"
	"github.com/fwojciec/ragjudge/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "judge-model",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "{\"score\": 1, \"explanation\": \"ok\"}"}
	}]
}`

type chatRequest struct {
	Model    string  `json:"model"`
	Temp     float64 `json:"temperature"`
	TopP     float64 `json:"top_p"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestJudge_Judge(t *testing.T) {
	t.Parallel()

	req := ragjudge.JudgeRequest{Prompt: "Q: who?", Model: "judge-model", Temperature: 0.1, TopP: 0.1}

	t.Run("sends prompt and returns reply", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotAuth string
		var body chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(completion))
		}))
		defer srv.Close()

		judge, err := openai.NewJudge("secret-key", srv.URL+"/api/v1")
		require.NoError(t, err)

		reply, err := judge.Judge(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, `{"score": 1, "explanation": "ok"}`, reply)
		assert.Equal(t, "/api/v1/chat/completions", gotPath)
		assert.Equal(t, "secret-key", gotAuth)
		assert.Equal(t, "judge-model", body.Model)
		assert.InDelta(t, 0.1, body.Temp, 1e-9)
		assert.InDelta(t, 0.1, body.TopP, 1e-9)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)
		assert.Equal(t, "Q: who?", body.Messages[0].Content)
	})

	t.Run("maps 401 to auth error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": {"message": "invalid key"}}`))
		}))
		defer srv.Close()

		judge, err := openai.NewJudge("bad", srv.URL)
		require.NoError(t, err)

		_, err = judge.Judge(context.Background(), req)

		var authErr *ragjudge.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	})

	t.Run("maps 429 to rate limit error with retry after", func(t *testing.T) {
		t.Parallel()

		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "slow down"}}`))
		}))
		defer srv.Close()

		judge, err := openai.NewJudge("key", srv.URL)
		require.NoError(t, err)

		_, err = judge.Judge(context.Background(), req)

		var rateErr *ragjudge.RateLimitError
		require.ErrorAs(t, err, &rateErr)
		assert.Equal(t, 7*time.Second, rateErr.RetryAfter)
		assert.Equal(t, 1, calls, "sdk retries must be disabled")
	})

	t.Run("leaves server errors retryable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		judge, err := openai.NewJudge("key", srv.URL)
		require.NoError(t, err)

		_, err = judge.Judge(context.Background(), req)

		require.Error(t, err)
		assert.False(t, ragjudge.IsFatal(err))
		var rateErr *ragjudge.RateLimitError
		assert.False(t, errors.As(err, &rateErr))
	})

	t.Run("works with dispatcher retries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(completion))
		}))
		defer srv.Close()

		judge, err := openai.NewJudge("key", srv.URL)
		require.NoError(t, err)
		d := eval.NewDispatcher(judge, eval.WithSleep(func(ctx context.Context, _ time.Duration) error { return nil }))

		reply, err := d.Dispatch(context.Background(), req)

		require.NoError(t, err)
		assert.Contains(t, reply, `"score": 1`)
		assert.Equal(t, 2, calls)
	})
}

func TestNewJudge_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := openai.NewJudge("", "http://localhost")
	var cfgErr *ragjudge.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, openai.APIKeyEnv, cfgErr.Field)

	_, err = openai.NewJudge("key", "")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, openai.BaseURLEnv, cfgErr.Field)
}

func TestJudge_Live(t *testing.T) {
	eval.SkipUnlessLive(t)

	judge, err := openai.NewJudge(os.Getenv(openai.APIKeyEnv), os.Getenv(openai.BaseURLEnv))
	require.NoError(t, err)

	reply, err := judge.Judge(t.Context(), ragjudge.JudgeRequest{
		Prompt:      `Reply with exactly {"score": 1, "explanation": "ok"}`,
		Model:       os.Getenv("RAGJUDGE_MODEL"),
		Temperature: ragjudge.DefaultTemperature,
		TopP:        ragjudge.DefaultTopP,
	})

	require.NoError(t, err)
	assert.Equal(t, ragjudge.ScoreCorrect, ragjudge.ParseVerdict(reply).Score)
}
