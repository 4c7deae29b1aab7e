// Package lipgloss renders summaries, model lists and judged records for
// the terminal using the Lipgloss styling library.
package lipgloss

import "github.com/fwojciec/ragjudge"

// Compile-time interface verification.
var _ ragjudge.Theme = (*Theme)(nil)

// Theme implements ragjudge.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles  ragjudge.Styles
	palette ragjudge.Palette
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() ragjudge.Styles {
	return t.styles
}

// Palette returns the syntax color palette for this theme.
func (t *Theme) Palette() ragjudge.Palette {
	return t.palette
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds
// (Catppuccin Mocha).
func DarkTheme() *Theme {
	return &Theme{
		styles: ragjudge.Styles{
			Correct: ragjudge.ColorPair{
				Foreground: "#1e1e2e", // Dark text on bright background
				Background: "#a6e3a1", // Green
			},
			Incorrect: ragjudge.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#f38ba8", // Red
			},
			Unscored: ragjudge.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#f9e2af", // Yellow
			},
			Header: ragjudge.ColorPair{
				Foreground: "#89b4fa", // Blue
			},
			Border: ragjudge.ColorPair{
				Foreground: "#45475a",
			},
			Muted: ragjudge.ColorPair{
				Foreground: "#6c7086",
			},
			Expected: ragjudge.ColorPair{
				Foreground: "#a6e3a1",
				Background: "#004000", // Very dark green
			},
			Generated: ragjudge.ColorPair{
				Foreground: "#f38ba8",
				Background: "#3f0001", // Very dark red
			},
		},
		palette: ragjudge.Palette{
			Foreground:  "#cdd6f4",
			Key:         "#89b4fa",
			String:      "#a6e3a1",
			Number:      "#fab387",
			Keyword:     "#cba6f7",
			Punctuation: "#9399b2",
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds
// (Catppuccin Latte).
func LightTheme() *Theme {
	return &Theme{
		styles: ragjudge.Styles{
			Correct: ragjudge.ColorPair{
				Foreground: "#ffffff", // White text on dark background
				Background: "#40a02b",
			},
			Incorrect: ragjudge.ColorPair{
				Foreground: "#ffffff",
				Background: "#d20f39",
			},
			Unscored: ragjudge.ColorPair{
				Foreground: "#ffffff",
				Background: "#df8e1d",
			},
			Header: ragjudge.ColorPair{
				Foreground: "#1e66f5",
			},
			Border: ragjudge.ColorPair{
				Foreground: "#bcc0cc",
			},
			Muted: ragjudge.ColorPair{
				Foreground: "#9ca0b0",
			},
			Expected: ragjudge.ColorPair{
				Foreground: "#40a02b",
				Background: "#d4f4d4",
			},
			Generated: ragjudge.ColorPair{
				Foreground: "#d20f39",
				Background: "#f4d4d4",
			},
		},
		palette: ragjudge.Palette{
			Foreground:  "#4c4f69",
			Key:         "#1e66f5",
			String:      "#40a02b",
			Number:      "#fe640b",
			Keyword:     "#8839ef",
			Punctuation: "#6c6f85",
		},
	}
}
