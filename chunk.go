package ragjudge

import "strings"

// DefaultChunkWords is the window size used when none is given.
const DefaultChunkWords = 100

// Chunker splits text into chunks for indexing.
type Chunker interface {
	Chunk(text string) []string
}

// Compile-time interface verification.
var _ Chunker = (*WordChunker)(nil)

// WordChunker splits text into fixed windows of whitespace-separated
// words, joined by single spaces. The last chunk may be shorter.
type WordChunker struct {
	Size int
}

// NewWordChunker returns a WordChunker with the given window size.
// A size below 1 selects DefaultChunkWords.
func NewWordChunker(size int) *WordChunker {
	if size < 1 {
		size = DefaultChunkWords
	}
	return &WordChunker{Size: size}
}

// Chunk splits text into windows of c.Size words.
func (c *WordChunker) Chunk(text string) []string {
	size := c.Size
	if size < 1 {
		size = DefaultChunkWords
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
