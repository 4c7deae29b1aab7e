package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressModel_CountsVerdicts(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewProgressModel(4, nil)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	tm.Send(bubbletea.ProgressMsg{Group: "kb", Done: 1, Total: 4, Verdict: ragjudge.Verdict{Score: ragjudge.ScoreCorrect}})
	tm.Send(bubbletea.ProgressMsg{Group: "kb", Done: 2, Total: 4, Verdict: ragjudge.Verdict{Score: ragjudge.ScoreIncorrect}})
	tm.Send(bubbletea.ProgressMsg{Group: "kb", Done: 3, Total: 4, Verdict: ragjudge.UnknownVerdict("no json")})
	tm.Send(bubbletea.ProgressMsg{Group: "kb", Done: 4, Total: 4, Verdict: ragjudge.UnknownVerdict("evaluation failed"), Err: errors.New("boom")})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("4/4")) &&
			bytes.Contains(out, []byte("correct 1  incorrect 1  unscored 1  failed 1"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(bubbletea.DoneMsg{})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, ok := tm.FinalModel(t).(bubbletea.ProgressModel)
	require.True(t, ok)
	assert.Equal(t, 4, final.Done())
	assert.Equal(t, 1, final.Failed())
	assert.Equal(t, ragjudge.Summary{Correct: 1, Incorrect: 1, Unscored: 1, Total: 3}, final.Summary())
	assert.False(t, final.Interrupted())
}

func TestProgressModel_QuitCancels(t *testing.T) {
	t.Parallel()

	cancelled := false
	m := bubbletea.NewProgressModel(10, func() { cancelled = true })
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, ok := tm.FinalModel(t).(bubbletea.ProgressModel)
	require.True(t, ok)
	assert.True(t, final.Interrupted())
	assert.True(t, cancelled)
}

func TestProgressModel_QuitAfterDoneDoesNotCancel(t *testing.T) {
	t.Parallel()

	cancelled := false
	var m tea.Model = bubbletea.NewProgressModel(1, func() { cancelled = true })

	m, cmd := m.Update(bubbletea.DoneMsg{})
	require.NotNil(t, cmd)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.False(t, cancelled)
	assert.False(t, m.(bubbletea.ProgressModel).Interrupted())
	assert.Contains(t, m.View(), "Done")
}

func TestProgressModel_ViewShowsError(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewProgressModel(2, nil)
	m, _ = m.Update(bubbletea.DoneMsg{Err: errors.New("judge rejected credentials")})

	assert.Contains(t, m.View(), "Stopped: judge rejected credentials")
}

func TestRunProgress_ReturnsEvaluateError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var out bytes.Buffer

	err := bubbletea.RunProgress(context.Background(), 2, func(ctx context.Context, report func(ragjudge.Progress)) error {
		report(ragjudge.Progress{Done: 1, Total: 2, Verdict: ragjudge.Verdict{Score: ragjudge.ScoreCorrect}})
		report(ragjudge.Progress{Done: 2, Total: 2, Verdict: ragjudge.Verdict{Score: ragjudge.ScoreCorrect}})
		return boom
	}, tea.WithInput(nil), tea.WithOutput(&out))

	assert.ErrorIs(t, err, boom)
}

func TestRunProgress_Success(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	calls := 0

	err := bubbletea.RunProgress(context.Background(), 1, func(ctx context.Context, report func(ragjudge.Progress)) error {
		calls++
		report(ragjudge.Progress{Done: 1, Total: 1, Verdict: ragjudge.Verdict{Score: ragjudge.ScoreCorrect}})
		return nil
	}, tea.WithInput(nil), tea.WithOutput(&out))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
