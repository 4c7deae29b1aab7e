package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/bubbletea"
	"github.com/fwojciec/ragjudge/chroma"
	"github.com/fwojciec/ragjudge/clipboard"
	"github.com/fwojciec/ragjudge/jsonl"
	"github.com/fwojciec/ragjudge/lipgloss"
	"github.com/fwojciec/ragjudge/worddiff"
)

// summaryJSON is a summary with its accuracy, as printed by summary -json.
type summaryJSON struct {
	ragjudge.Summary
	Accuracy float64 `json:"accuracy"`
}

// WriteSummaryJSON writes per-group summaries, plus a total under
// lipgloss.AllGroups when there is more than one group.
func WriteSummaryJSON(w io.Writer, summaries map[string]ragjudge.Summary) error {
	out := make(map[string]summaryJSON, len(summaries)+1)
	for g, s := range summaries {
		out[g] = summaryJSON{Summary: s, Accuracy: s.Accuracy()}
	}
	if len(summaries) > 1 {
		total := ragjudge.Total(summaries)
		out[lipgloss.AllGroups] = summaryJSON{Summary: total, Accuracy: total.Accuracy()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func loadResults(path string) ([]ragjudge.Record, error) {
	records, err := jsonl.NewStore().Load(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ragjudge.ErrNoRecords)
	}
	return records, nil
}

func runSummary(args []string, stdout io.Writer) error {
	set := flag.NewFlagSet("summary", flag.ContinueOnError)
	asJSON := set.Bool("json", false, "Print JSON instead of a table")
	g := addGlobalFlags(set)

	rest, err := parseFlags(set, args, 1, "<results.jsonl>")
	if err != nil {
		return err
	}
	records, err := loadResults(rest[0])
	if err != nil {
		return err
	}

	summaries := ragjudge.Summarize(ragjudge.GroupRecords(records))
	if *asJSON {
		return WriteSummaryJSON(stdout, summaries)
	}
	fmt.Fprintln(stdout, g.renderer(stdout).Summary(summaries))
	return nil
}

// RecordReviewer pages through records interactively.
type RecordReviewer interface {
	Review(ctx context.Context, records []ragjudge.Record) error
}

// Show displays judged records, either printed or in a reviewer.
type Show struct {
	Output   io.Writer
	Render   bubbletea.RenderFunc
	Reviewer RecordReviewer
}

// Run prints record n (1-based) when n > 0, every record when printAll is
// set, and otherwise opens the reviewer.
func (s *Show) Run(ctx context.Context, records []ragjudge.Record, n int, printAll bool) error {
	switch {
	case n > 0:
		if n > len(records) {
			return fmt.Errorf("record %d out of range (1-%d)", n, len(records))
		}
		fmt.Fprintln(s.Output, s.Render(n-1, records[n-1]))
	case printAll:
		for i, r := range records {
			fmt.Fprintln(s.Output, s.Render(i, r))
		}
	default:
		return s.Reviewer.Review(ctx, records)
	}
	return nil
}

func runShow(ctx context.Context, args []string, stdout io.Writer) error {
	set := flag.NewFlagSet("show", flag.ContinueOnError)
	n := set.Int("n", 0, "Print record N (1-based) instead of opening the viewer")
	printAll := set.Bool("print", false, "Print every record instead of opening the viewer")
	g := addGlobalFlags(set)

	rest, err := parseFlags(set, args, 1, "<results.jsonl>")
	if err != nil {
		return err
	}
	records, err := loadResults(rest[0])
	if err != nil {
		return err
	}

	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(g.theme().Palette()))
	if err != nil {
		return fmt.Errorf("set up syntax highlighting: %w", err)
	}
	renderer := g.renderer(stdout,
		lipgloss.WithTokenizer(tokenizer),
		lipgloss.WithWordDiffer(worddiff.NewDiffer()),
	)

	s := &Show{
		Output:   stdout,
		Render:   renderer.Record,
		Reviewer: bubbletea.NewReviewer(renderer.Record, bubbletea.WithClipboard(clipboard.NewSystem())),
	}
	return s.Run(ctx, records, *n, *printAll)
}
