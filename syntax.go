package ragjudge

// Token is a run of highlighted text.
type Token struct {
	Text  string
	Style Style
}

// Style is how a token is drawn. An empty Foreground keeps the terminal
// default.
type Style struct {
	Foreground string
	Bold       bool
}

// Tokenizer highlights source text such as a judge's raw JSON reply.
type Tokenizer interface {
	// Tokenize returns nil if language is not supported.
	Tokenize(language, source string) []Token
}

// Segment is a run of text that either appears in both compared strings
// or only in one of them.
type Segment struct {
	Text    string
	Changed bool
}

// WordDiffer compares two strings word by word.
type WordDiffer interface {
	Diff(old, new string) (oldSegs, newSegs []Segment)
}
