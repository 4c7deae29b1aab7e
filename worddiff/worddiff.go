// Package worddiff compares expected and generated answers word by word.
package worddiff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.WordDiffer = (*Differ)(nil)

// similarityThreshold is the minimum ratio for word-level diffing.
// Below this threshold, answers are treated as complete replacements.
const similarityThreshold = 0.4

// Differ tokenizes prose and computes word-level diffs.
type Differ struct {
	foldCase bool
}

// Option configures a Differ.
type Option func(*Differ)

// WithCaseSensitive makes words that differ only in case count as changed.
func WithCaseSensitive() Option {
	return func(d *Differ) {
		d.foldCase = false
	}
}

// NewDiffer creates a new Differ. Words are compared case-insensitively
// unless WithCaseSensitive is given.
func NewDiffer(opts ...Option) *Differ {
	d := &Differ{foldCase: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tokenize splits prose into words, numbers, whitespace runs and single
// punctuation characters. Apostrophes and hyphens inside a word belong to
// it, so "don't" and "well-known" are one token each. Concatenating the
// tokens yields s.
func (d *Differ) Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, len(s)/4+1)
	i := 0
	for i < len(s) {
		start := i
		r, size := utf8.DecodeRuneInString(s[i:])

		switch {
		case unicode.IsLetter(r):
			i += size
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					i += size
					continue
				}
				if (r == '\'' || r == '-' || r == '’') && i+size < len(s) {
					next, _ := utf8.DecodeRuneInString(s[i+size:])
					if unicode.IsLetter(next) {
						i += size
						continue
					}
				}
				break
			}

		case unicode.IsDigit(r):
			// Number with optional decimal or thousands separators: 1,234.5
			i += size
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if unicode.IsDigit(r) {
					i += size
					continue
				}
				if (r == '.' || r == ',') && i+size < len(s) {
					next, _ := utf8.DecodeRuneInString(s[i+size:])
					if unicode.IsDigit(next) {
						i += size
						continue
					}
				}
				break
			}

		case unicode.IsSpace(r):
			i += size
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if !unicode.IsSpace(r) {
					break
				}
				i += size
			}

		default:
			i += size
		}

		tokens = append(tokens, s[start:i])
	}

	return tokens
}

// Diff returns segments for both the old and new strings,
// marking which portions changed between them.
func (d *Differ) Diff(old, new string) (oldSegs, newSegs []ragjudge.Segment) {
	if old == "" && new == "" {
		return nil, nil
	}
	if old == "" {
		return nil, []ragjudge.Segment{{Text: new, Changed: true}}
	}
	if new == "" {
		return []ragjudge.Segment{{Text: old, Changed: true}}, nil
	}

	if old == new {
		seg := ragjudge.Segment{Text: old, Changed: false}
		return []ragjudge.Segment{seg}, []ragjudge.Segment{seg}
	}

	oldTokens := d.Tokenize(old)
	newTokens := d.Tokenize(new)
	oldKeys := d.keys(oldTokens)
	newKeys := d.keys(newTokens)

	if !hasSufficientSimilarity(oldKeys, newKeys) {
		return []ragjudge.Segment{{Text: old, Changed: true}},
			[]ragjudge.Segment{{Text: new, Changed: true}}
	}

	return lcsSegments(oldTokens, newTokens, oldKeys, newKeys)
}

// keys returns the comparison key of each token. Any whitespace run
// compares equal to any other, so reflowed text is not reported as changed.
func (d *Differ) keys(tokens []string) []string {
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		r, _ := utf8.DecodeRuneInString(t)
		switch {
		case unicode.IsSpace(r):
			keys[i] = " "
		case d.foldCase:
			keys[i] = strings.ToLower(t)
		default:
			keys[i] = t
		}
	}
	return keys
}

// hasSufficientSimilarity reports whether the non-whitespace tokens overlap
// enough to warrant a word-level diff.
func hasSufficientSimilarity(oldKeys, newKeys []string) bool {
	counts := make(map[string]int, len(oldKeys))
	oldLen := 0
	for _, k := range oldKeys {
		if k == " " {
			continue
		}
		counts[k]++
		oldLen++
	}

	common, newLen := 0, 0
	for _, k := range newKeys {
		if k == " " {
			continue
		}
		newLen++
		if counts[k] > 0 {
			counts[k]--
			common++
		}
	}

	if oldLen == 0 || newLen == 0 {
		return false
	}
	return float64(2*common)/float64(oldLen+newLen) >= similarityThreshold
}

// lcsSegments computes the LCS of two key sequences and returns merged diff
// segments built from the original token text.
func lcsSegments(oldTokens, newTokens, oldKeys, newKeys []string) (oldSegs, newSegs []ragjudge.Segment) {
	m, n := len(oldKeys), len(newKeys)

	// table[i*stride+j] is the LCS length of oldKeys[:i] and newKeys[:j].
	stride := n + 1
	table := make([]int, (m+1)*stride)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			switch {
			case oldKeys[i-1] == newKeys[j-1]:
				table[i*stride+j] = table[(i-1)*stride+j-1] + 1
			case table[(i-1)*stride+j] > table[i*stride+j-1]:
				table[i*stride+j] = table[(i-1)*stride+j]
			default:
				table[i*stride+j] = table[i*stride+j-1]
			}
		}
	}

	oldMatched := make([]bool, m)
	newMatched := make([]bool, n)
	for i, j := m, n; i > 0 && j > 0; {
		switch {
		case oldKeys[i-1] == newKeys[j-1]:
			oldMatched[i-1] = true
			newMatched[j-1] = true
			i--
			j--
		case table[(i-1)*stride+j] > table[i*stride+j-1]:
			i--
		default:
			j--
		}
	}

	return buildSegments(oldTokens, oldMatched), buildSegments(newTokens, newMatched)
}

// buildSegments merges adjacent tokens with the same status. Whitespace
// between two changed words is shown as changed so the highlight reads as
// one phrase.
func buildSegments(tokens []string, matched []bool) []ragjudge.Segment {
	changed := make([]bool, len(tokens))
	for i := range tokens {
		changed[i] = !matched[i]
	}
	for i := 1; i < len(tokens)-1; i++ {
		r, _ := utf8.DecodeRuneInString(tokens[i])
		if unicode.IsSpace(r) && changed[i-1] && changed[i+1] {
			changed[i] = true
		}
	}

	var segs []ragjudge.Segment
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 && changed[i] != changed[i-1] {
			segs = append(segs, ragjudge.Segment{Text: b.String(), Changed: changed[i-1]})
			b.Reset()
		}
		b.WriteString(t)
	}
	segs = append(segs, ragjudge.Segment{Text: b.String(), Changed: changed[len(tokens)-1]})
	return segs
}
