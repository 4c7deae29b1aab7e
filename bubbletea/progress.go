package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragjudge"
)

// maxBarWidth caps the progress bar on wide terminals.
const maxBarWidth = 60

// ProgressMsg reports one judged record to a ProgressModel.
type ProgressMsg ragjudge.Progress

// DoneMsg tells a ProgressModel that the evaluation has returned.
type DoneMsg struct {
	Err error
}

// ProgressModel is the Bubble Tea model shown while an evaluation runs.
type ProgressModel struct {
	bar         progress.Model
	quit        key.Binding
	cancel      context.CancelFunc
	total       int
	done        int
	failed      int
	summary     ragjudge.Summary
	group       string
	err         error
	finished    bool
	interrupted bool
}

// NewProgressModel creates a ProgressModel for total records. cancel is
// called when the user quits before the evaluation finishes.
func NewProgressModel(total int, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		quit:   DefaultKeyMap().Quit,
		cancel: cancel,
		total:  total,
	}
}

// Done returns how many records have been judged.
func (m ProgressModel) Done() int {
	return m.done
}

// Failed returns how many records could not be judged.
func (m ProgressModel) Failed() int {
	return m.failed
}

// Summary returns the verdict counts of the records judged without error.
func (m ProgressModel) Summary() ragjudge.Summary {
	return m.summary
}

// Interrupted reports whether the user quit before the evaluation finished.
func (m ProgressModel) Interrupted() bool {
	return m.interrupted
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			if !m.finished {
				m.interrupted = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)

	case ProgressMsg:
		m.done = msg.Done
		if msg.Total > 0 {
			m.total = msg.Total
		}
		m.group = msg.Group
		if msg.Err != nil {
			m.failed++
		} else {
			v := msg.Verdict
			m.summary.Add(&v)
		}

	case DoneMsg:
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var sb strings.Builder
	muted := lipgloss.NewStyle().Faint(true)

	status := "Judging records"
	switch {
	case m.interrupted:
		status = "Cancelled"
	case m.finished && m.err != nil:
		status = "Stopped: " + m.err.Error()
	case m.finished:
		status = "Done"
	}
	fmt.Fprintf(&sb, "%s  %d/%d", status, m.done, m.total)
	if m.group != "" && !m.finished {
		sb.WriteString(muted.Render("  " + m.group))
	}
	sb.WriteString("\n")
	sb.WriteString(m.bar.ViewAs(m.percent()))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "correct %d  incorrect %d  unscored %d  failed %d\n",
		m.summary.Correct, m.summary.Incorrect, m.summary.Unscored, m.failed)
	if !m.finished && !m.interrupted {
		sb.WriteString(muted.Render("q to cancel"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RunProgress runs evaluate while a progress bar follows it. evaluate
// receives a context that is cancelled when the user quits, and a report
// function to pass each record's progress to. RunProgress returns the
// error evaluate returned.
func RunProgress(ctx context.Context, total int, evaluate func(ctx context.Context, report func(ragjudge.Progress)) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(total, cancel), opts...)
	errc := make(chan error, 1)
	go func() {
		err := evaluate(ctx, func(pr ragjudge.Progress) {
			p.Send(ProgressMsg(pr))
		})
		p.Send(DoneMsg{Err: err})
		errc <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return err
	}
	return <-errc
}
