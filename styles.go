package ragjudge

// ColorPair is a foreground and background color, each a "#RRGGBB" hex
// string. An empty color keeps the terminal default.
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for the elements of judged record output.
type Styles struct {
	Correct   ColorPair // Verdict badge for score 1
	Incorrect ColorPair // Verdict badge for score 0
	Unscored  ColorPair // Verdict badge for score -1
	Header    ColorPair // Record and table headers
	Border    ColorPair // Table borders
	Muted     ColorPair // Labels and secondary text
	Expected  ColorPair // Words only in the expected answer
	Generated ColorPair // Words only in the generated answer
}

// Color is a hex color string such as "#a6e3a1".
type Color string

// Palette holds the colors used for syntax highlighting.
type Palette struct {
	Foreground  Color
	Key         Color
	String      Color
	Number      Color
	Keyword     Color
	Punctuation Color
}

// Theme provides the colors used to render judged records.
type Theme interface {
	Styles() Styles
	Palette() Palette
}
