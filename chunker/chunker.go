// Package chunker implements a knowledge base custom transformation that
// splits ingested content into fixed-size word chunks.
package chunker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/fwojciec/ragjudge"
	"go.uber.org/zap"
)

// DefaultOutputPrefix is prepended to each batch key to form its output key.
const DefaultOutputPrefix = "Output/"

// Sentinel errors.
var (
	ErrMissingInput = errors.New("missing required input parameters")
	ErrMissingKey   = errors.New("missing key in content batch")
)

// Handler reads content batches from the intermediate bucket, chunks them
// and writes the result back for the knowledge base to index.
type Handler struct {
	store   ragjudge.ObjectStore
	chunker ragjudge.Chunker
	prefix  string
	logger  *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithChunker sets the chunking strategy. The default splits content into
// windows of ragjudge.DefaultChunkWords words.
func WithChunker(c ragjudge.Chunker) Option {
	return func(h *Handler) {
		h.chunker = c
	}
}

// WithOutputPrefix sets the prefix of output batch keys.
func WithOutputPrefix(prefix string) Option {
	return func(h *Handler) {
		h.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a Handler that reads and writes batches through store.
func NewHandler(store ragjudge.ObjectStore, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		chunker: ragjudge.NewWordChunker(ragjudge.DefaultChunkWords),
		prefix:  DefaultOutputPrefix,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes every batch of every input file. Each batch is written
// to the output prefix under its original key, and the result lists the
// output keys per file. Any failure aborts the invocation.
func (h *Handler) Handle(ctx context.Context, event ragjudge.TransformEvent) (ragjudge.TransformResult, error) {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With(zap.String("request_id", lc.AwsRequestID))
	}

	if event.BucketName == "" || len(event.InputFiles) == 0 {
		return ragjudge.TransformResult{}, ErrMissingInput
	}
	logger.Debug("transformation started",
		zap.String("bucket", event.BucketName),
		zap.String("knowledge_base_id", event.KnowledgeBaseID),
		zap.String("ingestion_job_id", event.IngestionJobID),
		zap.Int("input_files", len(event.InputFiles)),
	)

	result := ragjudge.TransformResult{OutputFiles: make([]ragjudge.TransformFile, 0, len(event.InputFiles))}
	for _, file := range event.InputFiles {
		out := ragjudge.TransformFile{
			OriginalFileLocation: nonNil(file.OriginalFileLocation),
			FileMetadata:         nonNil(file.FileMetadata),
			ContentBatches:       make([]ragjudge.ContentBatch, 0, len(file.ContentBatches)),
		}
		for _, batch := range file.ContentBatches {
			if batch.Key == "" {
				return ragjudge.TransformResult{}, ErrMissingKey
			}
			key, err := h.processBatch(ctx, logger, event.BucketName, batch.Key)
			if err != nil {
				return ragjudge.TransformResult{}, err
			}
			out.ContentBatches = append(out.ContentBatches, ragjudge.ContentBatch{Key: key})
		}
		result.OutputFiles = append(result.OutputFiles, out)
	}
	return result, nil
}

func (h *Handler) processBatch(ctx context.Context, logger *zap.Logger, bucket, key string) (string, error) {
	data, err := h.store.GetObject(ctx, bucket, key)
	if err != nil {
		return "", err
	}

	var in ragjudge.FileContents
	if err := json.Unmarshal(data, &in); err != nil {
		return "", fmt.Errorf("decode batch %s: %w", key, err)
	}

	out := ragjudge.ChunkContents(in, h.chunker)
	body, err := json.Marshal(out)
	if err != nil {
		return "", err
	}

	outKey := h.prefix + key
	if err := h.store.PutObject(ctx, bucket, outKey, body); err != nil {
		return "", err
	}

	logger.Info("batch chunked",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("output_key", outKey),
		zap.Int("contents", len(in.FileContents)),
		zap.Int("chunks", len(out.FileContents)),
	)
	return outKey, nil
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
