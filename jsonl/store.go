package jsonl

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.RecordStore = (*Store)(nil)

// Store persists and retrieves evaluated records as JSONL.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads records from a JSONL file. A missing file holds no records.
func (s *Store) Load(path string) ([]ragjudge.Record, error) {
	var records []ragjudge.Record
	err := scanLines(path, func(_ int, line []byte) error {
		var r ragjudge.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Save writes records to a JSONL file, replacing its contents and creating
// parent directories if needed.
func (s *Store) Save(path string, records []ragjudge.Record) error {
	f, err := openFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
	if err != nil {
		return err
	}
	if err := writeRecords(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
