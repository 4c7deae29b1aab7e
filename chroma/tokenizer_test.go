package chroma_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/chroma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = ragjudge.Palette{
	Foreground:  "#ffffff",
	Key:         "#0000ff",
	String:      "#00ff00",
	Number:      "#ff8800",
	Keyword:     "#ff00ff",
	Punctuation: "#aaaaaa",
}

func newTokenizer(t *testing.T) *chroma.Tokenizer {
	t.Helper()
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(testPalette))
	require.NoError(t, err)
	return tokenizer
}

func joinTokens(tokens []ragjudge.Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

func TestNewTokenizer_RequiresStyleFunc(t *testing.T) {
	t.Parallel()

	_, err := chroma.NewTokenizer(nil)

	assert.Error(t, err)
}

func TestTokenizer_Tokenize(t *testing.T) {
	t.Parallel()

	t.Run("tokenizes judge reply JSON", func(t *testing.T) {
		t.Parallel()

		source := `{"score": 1, "explanation": "matches", "sure": true}`
		tokens := newTokenizer(t).Tokenize("json", source)

		require.NotEmpty(t, tokens)
		assert.Equal(t, source, joinTokens(tokens))

		styles := map[string]ragjudge.Style{}
		for _, tok := range tokens {
			styles[tok.Text] = tok.Style
		}
		assert.Equal(t, "#ff8800", styles["1"].Foreground, "number")
		assert.Equal(t, "#00ff00", styles[`"matches"`].Foreground, "string value")
		assert.Equal(t, "#ff00ff", styles["true"].Foreground, "keyword constant")
	})

	t.Run("returns nil for unsupported language", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, newTokenizer(t).Tokenize("nonexistent-language-xyz", "some text"))
	})

	t.Run("handles empty source", func(t *testing.T) {
		t.Parallel()

		tokens := newTokenizer(t).Tokenize("json", "")

		assert.NotNil(t, tokens)
		assert.Empty(t, tokens)
	})
}
