package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/ragjudge"
	"go.uber.org/zap"
)

var _ ragjudge.Judge = (*Judge)(nil)

// Judge remembers replies of an inner judge in a directory, one JSON file
// per distinct request.
type Judge struct {
	inner   ragjudge.Judge
	backend string
	dir     string
	logger  *zap.Logger
}

// JudgeOption configures a Judge.
type JudgeOption func(*Judge)

// WithLogger sets the logger that reports cache write failures.
func WithLogger(logger *zap.Logger) JudgeOption {
	return func(j *Judge) {
		j.logger = logger
	}
}

// NewJudge wraps inner with a reply cache in dir. Entries are keyed by
// backend and the full request, so switching backends never returns a
// stale reply.
func NewJudge(inner ragjudge.Judge, backend, dir string, opts ...JudgeOption) *Judge {
	j := &Judge{
		inner:   inner,
		backend: backend,
		dir:     dir,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

type cacheEntry struct {
	Reply string `json:"reply"`
}

// Judge returns the remembered reply for req, asking the inner judge on a
// miss. Failed calls are never remembered.
func (j *Judge) Judge(ctx context.Context, req ragjudge.JudgeRequest) (string, error) {
	path := j.entryPath(req)
	if reply, ok := readEntry(path); ok {
		return reply, nil
	}

	reply, err := j.inner.Judge(ctx, req)
	if err != nil {
		return "", err
	}
	if err := writeEntry(path, reply); err != nil {
		j.logger.Debug("judge reply not cached", zap.String("path", path), zap.Error(err))
	}
	return reply, nil
}

func (j *Judge) entryPath(req ragjudge.JudgeRequest) string {
	key, _ := json.Marshal(struct {
		Backend string `json:"backend"`
		ragjudge.JudgeRequest
	}{j.backend, req})
	sum := sha256.Sum256(key)
	return filepath.Join(j.dir, hex.EncodeToString(sum[:])+".json")
}

// readEntry reports false for a missing or unreadable entry.
func readEntry(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var e cacheEntry
	if json.Unmarshal(data, &e) != nil {
		return "", false
	}
	return e.Reply, true
}

func writeEntry(path, reply string) error {
	data, err := json.Marshal(cacheEntry{Reply: reply})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
