// Package chroma provides syntax highlighting using the chroma library.
package chroma

import (
	"errors"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.Tokenizer = (*Tokenizer)(nil)

// StyleFunc maps chroma token types to ragjudge styles.
type StyleFunc func(chromalib.TokenType) ragjudge.Style

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer creates a new chroma-based tokenizer with the given style function.
// Use StyleFromPalette to create a style function from a ragjudge.Palette.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// Tokenize splits source into styled tokens. It returns nil for an unknown
// language and an empty slice for empty source.
func (t *Tokenizer) Tokenize(language, source string) []ragjudge.Token {
	if source == "" {
		return []ragjudge.Token{}
	}
	return t.tokenize(language, source)
}

func (t *Tokenizer) tokenize(language, source string) []ragjudge.Token {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}

	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	tokens := []ragjudge.Token{}
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		tokens = append(tokens, ragjudge.Token{
			Text:  token.Value,
			Style: t.styleFunc(token.Type),
		})
	}
	return tokens
}
