package lipgloss

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	lipglosslib "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/ragjudge"
)

// AllGroups labels the total row of a summary table.
const AllGroups = "all"

// maxContextWidth bounds how much of each retrieved context a record shows.
const maxContextWidth = 120

// Renderer renders ragjudge values as styled terminal text.
type Renderer struct {
	renderer  *lipglosslib.Renderer
	styles    ragjudge.Styles
	tokenizer ragjudge.Tokenizer
	differ    ragjudge.WordDiffer
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTokenizer highlights the raw judge response with tokenizer.
func WithTokenizer(tokenizer ragjudge.Tokenizer) RendererOption {
	return func(r *Renderer) {
		r.tokenizer = tokenizer
	}
}

// WithWordDiffer highlights words that differ between the expected and
// generated answers.
func WithWordDiffer(differ ragjudge.WordDiffer) RendererOption {
	return func(r *Renderer) {
		r.differ = differ
	}
}

// NewRenderer creates a Renderer. If renderer is nil, the default Lipgloss
// renderer is used.
func NewRenderer(renderer *lipglosslib.Renderer, theme ragjudge.Theme, opts ...RendererOption) *Renderer {
	if renderer == nil {
		renderer = lipglosslib.DefaultRenderer()
	}
	r := &Renderer{
		renderer: renderer,
		styles:   theme.Styles(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) style(colors ragjudge.ColorPair) lipglosslib.Style {
	style := r.renderer.NewStyle()
	if colors.Foreground != "" {
		style = style.Foreground(lipglosslib.Color(colors.Foreground))
	}
	if colors.Background != "" {
		style = style.Background(lipglosslib.Color(colors.Background))
	}
	return style
}

// table returns a bordered table. Columns after the first are right
// aligned when numeric is set.
func (r *Renderer) table(numeric bool, headers ...string) *table.Table {
	header := r.style(r.styles.Header).Bold(true).Padding(0, 1)
	cell := r.renderer.NewStyle().Padding(0, 1)
	right := cell.Align(lipglosslib.Right)
	return table.New().
		Border(lipglosslib.RoundedBorder()).
		BorderStyle(r.style(r.styles.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipglosslib.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case numeric && col > 0:
				return right
			default:
				return cell
			}
		})
}

// Summary renders per-group verdict counts as a table, with groups sorted
// by name and a final row totalling every group.
func (r *Renderer) Summary(summaries map[string]ragjudge.Summary) string {
	groups := make([]string, 0, len(summaries))
	for g := range summaries {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	t := r.table(true, "Group", "Correct", "Incorrect", "Unscored", "Total", "Accuracy")
	row := func(name string, s ragjudge.Summary) []string {
		return []string{
			name,
			strconv.Itoa(s.Correct),
			strconv.Itoa(s.Incorrect),
			strconv.Itoa(s.Unscored),
			strconv.Itoa(s.Total),
			fmt.Sprintf("%.1f%%", s.Accuracy()*100),
		}
	}
	for _, g := range groups {
		t.Row(row(g, summaries[g])...)
	}
	if len(groups) > 1 {
		t.Row(row(AllGroups, ragjudge.Total(summaries))...)
	}
	return t.Render()
}

// Models renders foundation models as a table in the given order.
func (r *Renderer) Models(models []ragjudge.FoundationModel) string {
	t := r.table(false, "Model ID", "Name", "Provider", "Input", "Output")
	for _, m := range models {
		t.Row(
			m.ID,
			m.Name,
			m.Provider,
			strings.Join(m.InputModalities, ", "),
			strings.Join(m.OutputModalities, ", "),
		)
	}
	return t.Render()
}

// Policies renders provisioning outcomes as a table. The last column holds
// the ARN of a usable resource or the failure reason.
func (r *Renderer) Policies(results []ragjudge.PolicyResult) string {
	t := r.table(false, "Kind", "Name", "Status", "Detail")
	for _, res := range results {
		colors := r.styles.Correct
		switch res.Status {
		case ragjudge.PolicyAlreadyExists:
			colors = r.styles.Unscored
		case ragjudge.PolicyFailed:
			colors = r.styles.Incorrect
		}
		detail := res.ARN
		if !res.OK() {
			detail = res.Reason()
		}
		t.Row(res.Kind, res.Name, r.style(colors).Render(res.Status.String()), detail)
	}
	return t.Render()
}

// Badge renders the verdict label for a score.
func (r *Renderer) Badge(v *ragjudge.Verdict) string {
	label, colors := "UNSCORED", r.styles.Unscored
	if v != nil {
		switch v.Score {
		case ragjudge.ScoreCorrect:
			label, colors = "CORRECT", r.styles.Correct
		case ragjudge.ScoreIncorrect:
			label, colors = "INCORRECT", r.styles.Incorrect
		}
	}
	return r.style(colors).Bold(true).Padding(0, 1).Render(label)
}

// Record renders one judged record for review: the question, both answers
// with their differing words highlighted, the retrieved contexts and the
// judge's verdict.
func (r *Renderer) Record(index int, rec ragjudge.Record) string {
	var sb strings.Builder
	header := r.style(r.styles.Header).Bold(true)
	muted := r.style(r.styles.Muted)
	label := func(s string) string {
		return muted.Render(fmt.Sprintf("%-10s", s))
	}

	group := rec.Group
	if group == "" {
		group = ragjudge.DefaultGroup
	}
	fmt.Fprintf(&sb, "%s %s %s\n", header.Render(fmt.Sprintf("#%d", index+1)), muted.Render(group), r.Badge(rec.Response))

	fmt.Fprintf(&sb, "%s %s\n", label("Question"), rec.Question)
	expected, generated := r.answers(rec.ExpectedAnswer, rec.GeneratedAnswer)
	fmt.Fprintf(&sb, "%s %s\n", label("Expected"), expected)
	fmt.Fprintf(&sb, "%s %s\n", label("Generated"), generated)

	if msg := rec.GenerationError(); msg != "" {
		fmt.Fprintf(&sb, "%s %s\n", label("Error"), r.style(r.styles.Incorrect).Render(msg))
	}

	for i, c := range rec.RetrievedContexts {
		text := truncate(strings.Join(strings.Fields(c.Text), " "), maxContextWidth)
		name := "Context"
		if i > 0 {
			name = ""
		}
		line := fmt.Sprintf("[%d] %s", i+1, text)
		if c.Location != "" {
			line += " " + muted.Render("("+c.Location+")")
		}
		fmt.Fprintf(&sb, "%s %s\n", label(name), line)
	}

	if rec.Response != nil {
		fmt.Fprintf(&sb, "%s\n%s\n", label("Response"), r.response(rec.Response))
	}
	return sb.String()
}

// answers renders the expected and generated answers, highlighting the
// words only one of them contains.
func (r *Renderer) answers(expected, generated string) (string, string) {
	if r.differ == nil {
		return expected, generated
	}
	oldSegs, newSegs := r.differ.Diff(expected, generated)
	return r.segments(oldSegs, r.styles.Expected), r.segments(newSegs, r.styles.Generated)
}

func (r *Renderer) segments(segs []ragjudge.Segment, colors ragjudge.ColorPair) string {
	changed := r.style(colors)
	var sb strings.Builder
	for _, s := range segs {
		if s.Changed {
			sb.WriteString(changed.Render(s.Text))
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// response renders the stored verdict as indented JSON, highlighted when a
// tokenizer is configured.
func (r *Renderer) response(v *ragjudge.Verdict) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return v.Message
	}
	source := string(data)
	if r.tokenizer == nil {
		return source
	}
	tokens := r.tokenizer.Tokenize("json", source)
	if tokens == nil {
		return source
	}

	var sb strings.Builder
	for _, tok := range tokens {
		style := r.renderer.NewStyle()
		if tok.Style.Foreground != "" {
			style = style.Foreground(lipglosslib.Color(tok.Style.Foreground))
		}
		if tok.Style.Bold {
			style = style.Bold(true)
		}
		// Render line by line so styles never span a newline.
		lines := strings.Split(tok.Text, "\n")
		for i, line := range lines {
			if i > 0 {
				sb.WriteString("\n")
			}
			if line != "" {
				sb.WriteString(style.Render(line))
			}
		}
	}
	return sb.String()
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
