package bubbletea_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/bubbletea"
	"github.com/fwojciec/ragjudge/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainRender(index int, r ragjudge.Record) string {
	return fmt.Sprintf("record %d: %s", index+1, r.Question)
}

func reviewRecords() []ragjudge.Record {
	correct := &ragjudge.Verdict{Score: ragjudge.ScoreCorrect}
	return []ragjudge.Record{
		{Question: "first question", Response: correct},
		{Question: "second question", Response: correct},
		{Question: "third question", Response: &ragjudge.Verdict{Score: ragjudge.ScoreIncorrect}},
		{Question: "fourth question"},
	}
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestReviewModel_ShowsFirstRecord(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewReviewModel(reviewRecords(), plainRender)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("record 1: first question")) && bytes.Contains(out, []byte("1/4"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyRunes('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestReviewModel_NextRecord(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewReviewModel(reviewRecords(), plainRender)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	tm.Send(keyRunes('n'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("record 2: second question"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, ok := tm.FinalModel(t).(bubbletea.ReviewModel)
	require.True(t, ok)
	assert.Equal(t, 1, final.Current())
}

func TestReviewModel_Navigation(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewReviewModel(reviewRecords(), plainRender)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	current := func() int { return m.(bubbletea.ReviewModel).Current() }

	m, _ = m.Update(keyRunes('N'))
	assert.Equal(t, 0, current(), "previous stops at the first record")

	m, _ = m.Update(keyRunes('f'))
	assert.Equal(t, 2, current(), "f jumps to the next record that is not correct")

	m, _ = m.Update(keyRunes('f'))
	assert.Equal(t, 3, current(), "records without a verdict are not correct")

	m, _ = m.Update(keyRunes('n'))
	assert.Equal(t, 3, current(), "next stops at the last record")

	m, _ = m.Update(keyRunes('F'))
	assert.Equal(t, 2, current())

	m, _ = m.Update(keyRunes('F'))
	assert.Equal(t, 2, current(), "no earlier record is failing")

	assert.Contains(t, m.View(), "record 3: third question")
	assert.Contains(t, m.View(), "3/4")
}

func TestReviewModel_Empty(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewReviewModel(nil, plainRender)
	assert.Equal(t, "Loading...", m.View())

	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Contains(t, m.View(), "No records.")
	assert.Contains(t, m.View(), "0/0")
}

func TestReviewModel_CopiesCurrentRecord(t *testing.T) {
	t.Parallel()

	var copied string
	cb := &mock.Clipboard{CopyFn: func(content string) error {
		copied = content
		return nil
	}}
	var m tea.Model = bubbletea.NewReviewModel(reviewRecords(), plainRender, bubbletea.WithClipboard(cb))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = m.Update(keyRunes('n'))

	m, cmd := m.Update(keyRunes('y'))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	var rec ragjudge.Record
	require.NoError(t, json.Unmarshal([]byte(copied), &rec))
	assert.Equal(t, "second question", rec.Question)
	assert.Contains(t, m.View(), "copied")

	m, _ = m.Update(keyRunes('n'))
	assert.NotContains(t, m.View(), "copied")
}

func TestReviewModel_CopyFailure(t *testing.T) {
	t.Parallel()

	cb := &mock.Clipboard{CopyFn: func(string) error { return errors.New("no clipboard command found") }}
	var m tea.Model = bubbletea.NewReviewModel(reviewRecords(), plainRender, bubbletea.WithClipboard(cb))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 24})

	m, cmd := m.Update(keyRunes('y'))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Contains(t, m.View(), "copy failed: no clipboard command found")
}

func TestReviewModel_CopyWithoutClipboard(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewReviewModel(reviewRecords(), plainRender)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	_, cmd := m.Update(keyRunes('y'))

	assert.Nil(t, cmd)
}
