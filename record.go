package ragjudge

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultGroup is the group assigned to records that do not name one.
const DefaultGroup = "default"

// MetadataError is the metadata key holding a generation failure.
const MetadataError = "error"

// MetadataRunID is the metadata key holding the evaluation run identifier.
const MetadataRunID = "run_id"

// RetrievedContext is a passage the RAG pipeline retrieved for a question.
type RetrievedContext struct {
	Text     string         `json:"text"`
	Location string         `json:"location,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Record is one question with its generated answer, and the judge verdict
// once evaluated.
type Record struct {
	Group             string             `json:"group,omitempty"`
	Question          string             `json:"question"`
	ExpectedAnswer    string             `json:"expected_answer"`
	GeneratedAnswer   string             `json:"generated_answer"`
	RetrievedContexts []RetrievedContext `json:"retrieved_contexts"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
	Response          *Verdict           `json:"response,omitempty"`
}

// Item returns the evaluation item for the record.
func (r Record) Item() EvaluationItem {
	var contexts []string
	for _, c := range r.RetrievedContexts {
		contexts = append(contexts, c.Text)
	}
	return EvaluationItem{
		Question:        r.Question,
		ExpectedAnswer:  r.ExpectedAnswer,
		GeneratedAnswer: r.GeneratedAnswer,
		Context:         contexts,
	}
}

// GenerationError returns the failure recorded while generating the
// answer, or "" if generation succeeded.
func (r Record) GenerationError() string {
	if r.Metadata == nil {
		return ""
	}
	msg, _ := r.Metadata[MetadataError].(string)
	return msg
}

var requiredRecordKeys = []string{
	"question",
	"expected_answer",
	"generated_answer",
	"retrieved_contexts",
}

// DecodeRecord decodes a JSON record. It returns an error wrapping
// ErrIncompleteRecord if any of question, expected_answer,
// generated_answer or retrieved_contexts is absent.
func DecodeRecord(data []byte) (Record, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Record{}, err
	}
	for _, k := range requiredRecordKeys {
		if _, ok := keys[k]; !ok {
			return Record{}, fmt.Errorf("%w: %s", ErrIncompleteRecord, k)
		}
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Dataset holds records keyed by group, such as a knowledge base variant.
type Dataset map[string][]Record

// Groups returns the group names in sorted order.
func (d Dataset) Groups() []string {
	groups := make([]string, 0, len(d))
	for g := range d {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Len returns the total number of records.
func (d Dataset) Len() int {
	n := 0
	for _, records := range d {
		n += len(records)
	}
	return n
}

// Records flattens the dataset in group order, setting each record's Group.
func (d Dataset) Records() []Record {
	records := make([]Record, 0, d.Len())
	for _, g := range d.Groups() {
		for _, r := range d[g] {
			r.Group = g
			records = append(records, r)
		}
	}
	return records
}

// GroupRecords builds a dataset from records, using DefaultGroup for
// records without a group.
func GroupRecords(records []Record) Dataset {
	d := make(Dataset)
	for _, r := range records {
		g := r.Group
		if g == "" {
			g = DefaultGroup
		}
		r.Group = g
		d[g] = append(d[g], r)
	}
	return d
}

// SkippedRecord identifies an input record that was left out of a dataset.
type SkippedRecord struct {
	Group string
	Index int
	Err   error
}

// DecodeDataset decodes a JSON object mapping group names to lists of
// records. Incomplete records are skipped and reported; values that are
// not lists are ignored.
func DecodeDataset(data []byte) (Dataset, []SkippedRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode dataset: %w", err)
	}

	d := make(Dataset)
	var skipped []SkippedRecord
	for group, value := range raw {
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			continue
		}
		for i, item := range items {
			r, err := DecodeRecord(item)
			if err != nil {
				skipped = append(skipped, SkippedRecord{Group: group, Index: i, Err: err})
				continue
			}
			r.Group = group
			d[group] = append(d[group], r)
		}
	}

	sort.Slice(skipped, func(i, j int) bool {
		if skipped[i].Group != skipped[j].Group {
			return skipped[i].Group < skipped[j].Group
		}
		return skipped[i].Index < skipped[j].Index
	})

	return d, skipped, nil
}
