package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/ragjudge"
)

// StyleFromPalette returns a function that maps chroma token types to ragjudge
// styles based on the provided palette colors. Object keys are bold so the
// verdict fields stand out in a judge reply.
func StyleFromPalette(p ragjudge.Palette) StyleFunc {
	return func(tt chromalib.TokenType) ragjudge.Style {
		switch tt {
		// JSON object keys
		case chromalib.NameTag, chromalib.NameAttribute, chromalib.NameProperty:
			return ragjudge.Style{Foreground: string(p.Key), Bold: true}

		// true, false, null
		case chromalib.Keyword, chromalib.KeywordConstant, chromalib.KeywordPseudo:
			return ragjudge.Style{Foreground: string(p.Keyword)}

		case chromalib.String, chromalib.StringDouble, chromalib.StringSingle,
			chromalib.StringEscape, chromalib.StringChar:
			return ragjudge.Style{Foreground: string(p.String)}

		case chromalib.Number, chromalib.NumberFloat, chromalib.NumberInteger,
			chromalib.NumberIntegerLong:
			return ragjudge.Style{Foreground: string(p.Number)}

		case chromalib.Punctuation, chromalib.Operator:
			return ragjudge.Style{Foreground: string(p.Punctuation)}

		case chromalib.Text, chromalib.TextWhitespace:
			return ragjudge.Style{}

		default:
			return ragjudge.Style{Foreground: string(p.Foreground)}
		}
	}
}
