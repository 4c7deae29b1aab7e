package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ragjudge/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_HasExpectedBindings(t *testing.T) {
	t.Parallel()

	km := bubbletea.DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"n is next record", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, km.NextRecord},
		{"right is next record", tea.KeyMsg{Type: tea.KeyRight}, km.NextRecord},
		{"N is previous record", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'N'}}, km.PrevRecord},
		{"f is next failing", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}}, km.NextFailing},
		{"F is previous failing", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'F'}}, km.PrevFailing},
		{"k is up", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, km.Up},
		{"arrow down is down", tea.KeyMsg{Type: tea.KeyDown}, km.Down},
		{"ctrl+u is half page up", tea.KeyMsg{Type: tea.KeyCtrlU}, km.HalfPageUp},
		{"ctrl+d is half page down", tea.KeyMsg{Type: tea.KeyCtrlD}, km.HalfPageDown},
		{"g is top", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}, km.GotoTop},
		{"G is bottom", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}, km.GotoBottom},
		{"y copies", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}, km.Copy},
		{"q quits", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, km.Quit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}
