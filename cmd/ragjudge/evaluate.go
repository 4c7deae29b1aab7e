package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/bedrock"
	"github.com/fwojciec/ragjudge/bubbletea"
	"github.com/fwojciec/ragjudge/eval"
	"github.com/fwojciec/ragjudge/fs"
	"github.com/fwojciec/ragjudge/gemini"
	"github.com/fwojciec/ragjudge/jsonl"
	"github.com/fwojciec/ragjudge/lipgloss"
	"github.com/fwojciec/ragjudge/openai"
	"github.com/fwojciec/ragjudge/s3"
	"go.uber.org/zap"
)

// Judge backends.
const (
	BackendOpenAI  = "openai"
	BackendBedrock = "bedrock"
	BackendGemini  = "gemini"
)

// DefaultPromptPath is the prompt template read when -prompt is not given.
const DefaultPromptPath = "eval_prompt.json"

// ProgressFunc runs evaluate while reporting its progress. RunProgress in
// package bubbletea is one.
type ProgressFunc func(ctx context.Context, total int, evaluate func(ctx context.Context, report func(ragjudge.Progress)) error) error

// Evaluator judges a dataset, saves the judged records and prints the
// summary table.
type Evaluator struct {
	Runner   *eval.Runner
	Store    ragjudge.RecordStore
	OutPath  string
	Output   io.Writer
	Renderer *lipgloss.Renderer
	// Progress, if set, displays progress while the dataset is judged.
	Progress ProgressFunc
}

// Run judges ds. Records judged before an interruption are still saved,
// and the interruption is returned.
func (e *Evaluator) Run(ctx context.Context, ds ragjudge.Dataset) (map[string]ragjudge.Summary, error) {
	if ds.Len() == 0 {
		return nil, ragjudge.ErrNoRecords
	}

	var judged ragjudge.Dataset
	evaluate := func(ctx context.Context, report func(ragjudge.Progress)) error {
		e.Runner.OnProgress = report
		var err error
		judged, err = e.Runner.Evaluate(ctx, ds)
		return err
	}

	var runErr error
	if e.Progress != nil {
		runErr = e.Progress(ctx, ds.Len(), evaluate)
	} else {
		runErr = evaluate(ctx, nil)
	}
	if judged == nil {
		return nil, runErr
	}

	if err := e.Store.Save(e.OutPath, judged.Records()); err != nil {
		return nil, fmt.Errorf("save results: %w", err)
	}
	summaries := ragjudge.Summarize(judged)
	fmt.Fprintln(e.Output, e.Renderer.Summary(summaries))
	return summaries, runErr
}

// ResultsPath returns where results for source are written by default.
// data/set.json -> data/set-results.jsonl; s3://b/k/set.json -> set-results.jsonl
func ResultsPath(source string) string {
	dir, base := filepath.Dir(source), filepath.Base(source)
	if s3.IsURI(source) {
		dir = "."
		if _, key, err := s3.ParseURI(source); err == nil {
			base = filepath.Base(key)
		}
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+"-results.jsonl")
}

// LoadDataset reads a grouped JSON dataset from a file or an s3:// URI, or
// a JSONL record file. Skipped records are logged.
func LoadDataset(ctx context.Context, source, region string, logger *zap.Logger) (ragjudge.Dataset, error) {
	var (
		ds      ragjudge.Dataset
		skipped []ragjudge.SkippedRecord
		err     error
	)
	switch {
	case s3.IsURI(source):
		var opts []s3.Option
		if region != "" {
			opts = append(opts, s3.WithRegion(region))
		}
		store, serr := s3.NewStore(ctx, opts...)
		if serr != nil {
			return nil, serr
		}
		data, gerr := store.GetURI(ctx, source)
		if gerr != nil {
			return nil, gerr
		}
		ds, skipped, err = ragjudge.DecodeDataset(data)
	case strings.HasSuffix(source, ".jsonl"):
		ds, skipped, err = jsonl.NewLoader().LoadDataset(source)
	default:
		ds, skipped, err = fs.LoadDataset(source)
	}
	if err != nil {
		return nil, err
	}

	for _, s := range skipped {
		logger.Warn("record skipped",
			zap.String("group", s.Group),
			zap.Int("index", s.Index),
			zap.Error(s.Err))
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", source, ragjudge.ErrNoRecords)
	}
	return ds, nil
}

// newJudge creates the judge for backend. Credentials come from the
// environment.
func newJudge(ctx context.Context, backend, region string, getenv func(string) string) (ragjudge.Judge, error) {
	switch backend {
	case BackendOpenAI:
		j, err := openai.NewJudge(getenv(openai.APIKeyEnv), getenv(openai.BaseURLEnv))
		if err != nil {
			return nil, err
		}
		return j, nil
	case BackendBedrock:
		cfg, err := bedrock.LoadConfig(ctx, region)
		if err != nil {
			return nil, err
		}
		return bedrock.NewJudgeFromConfig(cfg), nil
	case BackendGemini:
		client, err := gemini.NewClient(ctx, getenv(gemini.APIKeyEnv))
		if err != nil {
			return nil, err
		}
		return gemini.NewJudge(client), nil
	}
	return nil, &ragjudge.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", backend)}
}

// judgeConfig loads settings from path, if given, and applies the flags
// that were set explicitly.
func judgeConfig(set *flag.FlagSet, path, model string, temperature, topP float64) (ragjudge.JudgeConfig, error) {
	cfg := ragjudge.DefaultJudgeConfig()
	if path != "" {
		var err error
		if cfg, err = fs.LoadJudgeConfig(path); err != nil {
			return cfg, err
		}
	}
	set.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = model
		case "temperature":
			cfg.Temperature = temperature
		case "top-p":
			cfg.TopP = topP
		}
	})
	return cfg, cfg.Validate()
}

func runEvaluate(ctx context.Context, args []string, stdout io.Writer) error {
	set := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	backend := set.String("backend", BackendOpenAI, "Judge backend: openai, bedrock or gemini")
	configPath := set.String("config", "", "Judge settings JSON file")
	model := set.String("model", "", "Judge model (overrides -config)")
	temperature := set.Float64("temperature", ragjudge.DefaultTemperature, "Sampling temperature (overrides -config)")
	topP := set.Float64("top-p", ragjudge.DefaultTopP, "Nucleus sampling top-p (overrides -config)")
	promptPath := set.String("prompt", DefaultPromptPath, "Prompt template JSON file")
	workers := set.Int("workers", 1, "Number of parallel workers (1 = sequential)")
	attempts := set.Int("attempts", eval.DefaultMaxAttempts, "Attempts per record")
	useCache := set.Bool("cache", false, "Cache judge replies in "+fs.DefaultCacheDir())
	cacheDir := set.String("cache-dir", "", "Cache judge replies in this directory")
	showProgress := set.Bool("progress", false, "Show a progress bar")
	outPath := set.String("out", "", "Results JSONL file (default <dataset>-results.jsonl)")
	region := set.String("region", "", "AWS region (default from the AWS configuration)")
	runID := set.String("run-id", "", "Run ID stamped on every record (default random)")
	g := addGlobalFlags(set)

	rest, err := parseFlags(set, args, 1, "<dataset.json|dataset.jsonl|s3://bucket/key>")
	if err != nil {
		return err
	}
	source := rest[0]

	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := judgeConfig(set, *configPath, *model, *temperature, *topP)
	if err != nil {
		return err
	}
	tmpl, err := fs.LoadTemplate(*promptPath)
	if err != nil {
		return fmt.Errorf("load prompt: %w", err)
	}
	judge, err := newJudge(ctx, *backend, *region, os.Getenv)
	if err != nil {
		return err
	}
	dir := *cacheDir
	if dir == "" && *useCache {
		dir = fs.DefaultCacheDir()
	}
	if dir != "" {
		judge = fs.NewJudge(judge, *backend, dir, fs.WithLogger(logger))
	}

	ds, err := LoadDataset(ctx, source, *region, logger)
	if err != nil {
		return err
	}

	out := *outPath
	if out == "" {
		out = ResultsPath(source)
	}

	e := &Evaluator{
		Runner: &eval.Runner{
			Dispatcher: eval.NewDispatcher(judge,
				eval.WithMaxAttempts(*attempts),
				eval.WithLogger(logger)),
			Template: tmpl,
			Config:   cfg,
			Workers:  *workers,
			RunID:    *runID,
			Logger:   logger,
		},
		Store:    jsonl.NewStore(),
		OutPath:  out,
		Output:   stdout,
		Renderer: g.renderer(stdout),
	}
	if *showProgress {
		e.Progress = func(ctx context.Context, total int, evaluate func(context.Context, func(ragjudge.Progress)) error) error {
			return bubbletea.RunProgress(ctx, total, evaluate)
		}
	}

	_, err = e.Run(ctx, ds)
	if err != nil {
		return err
	}
	logger.Info("results written", zap.String("path", out))
	return nil
}
