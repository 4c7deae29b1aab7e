// Package bubbletea provides terminal UIs for reviewing judged records and
// following a running evaluation, using the Bubble Tea framework.
package bubbletea

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragjudge"
)

// RenderFunc renders the record at index for display.
type RenderFunc func(index int, r ragjudge.Record) string

// ReviewModel is the Bubble Tea model for paging through judged records.
type ReviewModel struct {
	records  []ragjudge.Record
	render   RenderFunc
	keymap   KeyMap
	viewport viewport.Model
	current  int
	ready    bool

	clipboard ragjudge.Clipboard
	status    string
}

// ReviewOption configures a ReviewModel.
type ReviewOption func(*ReviewModel)

// WithClipboard enables copying the current record as JSON.
func WithClipboard(c ragjudge.Clipboard) ReviewOption {
	return func(m *ReviewModel) {
		m.clipboard = c
	}
}

// copiedMsg reports the outcome of a clipboard copy.
type copiedMsg struct {
	err error
}

// NewReviewModel creates a ReviewModel showing records one at a time.
func NewReviewModel(records []ragjudge.Record, render RenderFunc, opts ...ReviewOption) ReviewModel {
	m := ReviewModel{
		records: records,
		render:  render,
		keymap:  DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Current returns the index of the record on screen.
func (m ReviewModel) Current() int {
	return m.current
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeys(msg)

	case copiedMsg:
		m.status = "copied"
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		// Reserve one line for the status bar.
		height := max(msg.Height-1, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
			m.updateViewportContent()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ReviewModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.NextRecord):
		m.show(m.current + 1)

	case key.Matches(msg, m.keymap.PrevRecord):
		m.show(m.current - 1)

	case key.Matches(msg, m.keymap.NextFailing):
		if idx := m.findFailing(1); idx != -1 {
			m.show(idx)
		}

	case key.Matches(msg, m.keymap.PrevFailing):
		if idx := m.findFailing(-1); idx != -1 {
			m.show(idx)
		}

	case key.Matches(msg, m.keymap.Up):
		m.viewport.ScrollUp(1)

	case key.Matches(msg, m.keymap.Down):
		m.viewport.ScrollDown(1)

	case key.Matches(msg, m.keymap.HalfPageUp):
		m.viewport.HalfPageUp()

	case key.Matches(msg, m.keymap.HalfPageDown):
		m.viewport.HalfPageDown()

	case key.Matches(msg, m.keymap.GotoTop):
		m.viewport.GotoTop()

	case key.Matches(msg, m.keymap.GotoBottom):
		m.viewport.GotoBottom()

	case key.Matches(msg, m.keymap.Copy):
		return m, m.copyCurrent()
	}
	return m, nil
}

// copyCurrent returns a command copying the current record as indented
// JSON, or nil when there is nothing to copy to.
func (m ReviewModel) copyCurrent() tea.Cmd {
	if m.clipboard == nil || len(m.records) == 0 {
		return nil
	}
	rec, cb := m.records[m.current], m.clipboard
	return func() tea.Msg {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err == nil {
			err = cb.Copy(string(data))
		}
		return copiedMsg{err: err}
	}
}

// show moves to record idx if it exists.
func (m *ReviewModel) show(idx int) {
	if idx < 0 || idx >= len(m.records) || idx == m.current {
		return
	}
	m.current = idx
	m.status = ""
	m.updateViewportContent()
}

// findFailing returns the nearest record in direction dir whose verdict is
// not correct, or -1 if there is none.
func (m ReviewModel) findFailing(dir int) int {
	for i := m.current + dir; i >= 0 && i < len(m.records); i += dir {
		v := m.records[i].Response
		if v == nil || v.Score != ragjudge.ScoreCorrect {
			return i
		}
	}
	return -1
}

func (m *ReviewModel) updateViewportContent() {
	if !m.ready {
		return
	}
	if len(m.records) == 0 {
		m.viewport.SetContent("No records.")
		return
	}
	content := m.render(m.current, m.records[m.current])
	m.viewport.SetContent(strings.ReplaceAll(content, "\t", "    "))
	m.viewport.GotoTop()
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar()
}

func (m ReviewModel) renderStatusBar() string {
	position := "0/0"
	if len(m.records) > 0 {
		position = fmt.Sprintf("%d/%d", m.current+1, len(m.records))
	}
	help := "n/N next/prev · f/F not correct · j/k scroll · q quit"
	if m.clipboard != nil {
		help = "n/N next/prev · f/F not correct · j/k scroll · y copy · q quit"
	}
	if m.status != "" {
		position += "  " + m.status
	}
	return lipgloss.NewStyle().Faint(true).Render(position + "  " + help)
}

// Reviewer pages through judged records in a Bubble Tea TUI.
type Reviewer struct {
	render RenderFunc
	opts   []ReviewOption
}

// NewReviewer creates a new Reviewer that displays records with render.
func NewReviewer(render RenderFunc, opts ...ReviewOption) *Reviewer {
	return &Reviewer{render: render, opts: opts}
}

// Review displays the records and blocks until the user exits.
func (r *Reviewer) Review(ctx context.Context, records []ragjudge.Record) error {
	p := tea.NewProgram(NewReviewModel(records, r.render, r.opts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
