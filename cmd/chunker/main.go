// Command chunker is the knowledge base custom transformation Lambda. It
// splits every ingested content batch into fixed-size word chunks.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/chunker"
	"github.com/fwojciec/ragjudge/s3"
	"go.uber.org/zap"
)

// Environment variables read at cold start.
const (
	envChunkWords   = "CHUNK_WORDS"
	envOutputPrefix = "OUTPUT_PREFIX"
)

// NewHandler builds the Lambda handler from environment settings.
func NewHandler(ctx context.Context, logger *zap.Logger, getenv func(string) string) (*chunker.Handler, error) {
	opts := []chunker.Option{chunker.WithLogger(logger)}
	if v := getenv(envChunkWords); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, &ragjudge.ConfigError{Field: envChunkWords, Reason: "must be a positive integer"}
		}
		opts = append(opts, chunker.WithChunker(ragjudge.NewWordChunker(n)))
	}
	if v := getenv(envOutputPrefix); v != "" {
		opts = append(opts, chunker.WithOutputPrefix(v))
	}

	store, err := s3.NewStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create s3 store: %w", err)
	}
	return chunker.NewHandler(store, opts...), nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	handler, err := NewHandler(context.Background(), logger, os.Getenv)
	if err != nil {
		logger.Fatal("init failed", zap.Error(err))
	}
	lambda.Start(handler.Handle)
}
