package jsonl

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/ragjudge"
)

// Saver appends records to JSONL files. It is safe for concurrent use.
type Saver struct {
	mu sync.Mutex
}

// NewSaver creates a new Saver.
func NewSaver() *Saver {
	return &Saver{}
}

// Save appends r to the file at path, creating it and its parent
// directories if needed.
func (s *Saver) Save(path string, r ragjudge.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := openFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY)
	if err != nil {
		return err
	}
	if err := writeRecords(f, []ragjudge.Record{r}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func openFile(path string, flag int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, flag, 0o644)
}

// writeRecords writes one JSON document per line. HTML escaping is off so
// answers keep their literal <, > and &.
func writeRecords(w io.Writer, records []ragjudge.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
