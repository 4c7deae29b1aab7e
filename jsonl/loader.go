// Package jsonl reads and writes evaluation records as JSON Lines.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/ragjudge"
)

// Loader loads input records and questions from JSONL files.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// maxLineSize is the maximum size for a single JSONL line (4MB).
// This accommodates records with many long retrieved contexts.
const maxLineSize = 4 * 1024 * 1024

// LoadDataset reads one record per line and groups them by their "group"
// field. Records missing a required field are skipped and reported with
// their 0-based line index. Malformed JSON fails the whole load.
func (l *Loader) LoadDataset(path string) (ragjudge.Dataset, []ragjudge.SkippedRecord, error) {
	var records []ragjudge.Record
	var skipped []ragjudge.SkippedRecord

	err := scanLines(path, func(lineNum int, line []byte) error {
		r, err := ragjudge.DecodeRecord(line)
		if errors.Is(err, ragjudge.ErrIncompleteRecord) {
			var g struct {
				Group string `json:"group"`
			}
			_ = json.Unmarshal(line, &g)
			if g.Group == "" {
				g.Group = ragjudge.DefaultGroup
			}
			skipped = append(skipped, ragjudge.SkippedRecord{Group: g.Group, Index: lineNum - 1, Err: err})
			return nil
		}
		if err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return ragjudge.GroupRecords(records), skipped, nil
}

// LoadQuestions reads one {"question", "answer"} object per line. Lines
// without a question are rejected.
func (l *Loader) LoadQuestions(path string) ([]ragjudge.Question, error) {
	var questions []ragjudge.Question
	err := scanLines(path, func(lineNum int, line []byte) error {
		var q ragjudge.Question
		if err := json.Unmarshal(line, &q); err != nil {
			return err
		}
		if q.Question == "" {
			return errors.New("missing question")
		}
		questions = append(questions, q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// scanLines calls fn for every non-blank line of path. Errors from fn are
// annotated with the 1-based line number.
func scanLines(path string, fn func(lineNum int, line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(lineNum, []byte(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}
