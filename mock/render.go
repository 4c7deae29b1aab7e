package mock

import "github.com/fwojciec/ragjudge"

// Compile-time interface verification.
var (
	_ ragjudge.Tokenizer  = (*Tokenizer)(nil)
	_ ragjudge.WordDiffer = (*WordDiffer)(nil)
	_ ragjudge.Chunker    = (*Chunker)(nil)
	_ ragjudge.Clipboard  = (*Clipboard)(nil)
)

// Tokenizer is a mock implementation of ragjudge.Tokenizer.
type Tokenizer struct {
	TokenizeFn func(language, source string) []ragjudge.Token
}

func (t *Tokenizer) Tokenize(language, source string) []ragjudge.Token {
	return t.TokenizeFn(language, source)
}

// WordDiffer is a mock implementation of ragjudge.WordDiffer.
type WordDiffer struct {
	DiffFn func(old, new string) (oldSegs, newSegs []ragjudge.Segment)
}

func (d *WordDiffer) Diff(old, new string) (oldSegs, newSegs []ragjudge.Segment) {
	return d.DiffFn(old, new)
}

// Chunker is a mock implementation of ragjudge.Chunker.
type Chunker struct {
	ChunkFn func(text string) []string
}

func (c *Chunker) Chunk(text string) []string {
	return c.ChunkFn(text)
}

// Clipboard is a mock implementation of ragjudge.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
