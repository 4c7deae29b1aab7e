package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/bedrock"
	"github.com/fwojciec/ragjudge/eval"
	"github.com/fwojciec/ragjudge/jsonl"
	"go.uber.org/zap"
)

// RecordAppender appends one record to a file.
type RecordAppender interface {
	Save(path string, r ragjudge.Record) error
}

// Generate answers questions with a generator and appends each record to
// OutPath as soon as it is produced.
type Generate struct {
	Collector *eval.Collector
	Saver     RecordAppender
	OutPath   string
	Output    io.Writer
}

// Run generates a record for every question.
func (g *Generate) Run(ctx context.Context, questions []ragjudge.Question) ([]ragjudge.Record, error) {
	if len(questions) == 0 {
		return nil, ragjudge.ErrNoRecords
	}
	g.Collector.OnRecord = func(r ragjudge.Record) error {
		return g.Saver.Save(g.OutPath, r)
	}
	records, err := g.Collector.Collect(ctx, questions)

	failed := 0
	for _, r := range records {
		if r.GenerationError() != "" {
			failed++
		}
	}
	fmt.Fprintf(g.Output, "%d of %d answers generated, %d failed, written to %s\n",
		len(records)-failed, len(questions), failed, g.OutPath)
	return records, err
}

func runGenerate(ctx context.Context, args []string, stdout io.Writer) error {
	set := flag.NewFlagSet("generate", flag.ContinueOnError)
	kb := set.String("kb", "", "Knowledge base ID")
	modelARN := set.String("model-arn", "", "ARN of the model that writes the answers")
	group := set.String("group", ragjudge.DefaultGroup, "Group stored on every record")
	results := set.Int("results", bedrock.DefaultNumberOfResults, "Passages retrieved per question")
	region := set.String("region", "", "AWS region (default from the AWS configuration)")
	outPath := set.String("out", "generated.jsonl", "JSONL file the records are appended to")
	g := addGlobalFlags(set)

	rest, err := parseFlags(set, args, 1, "<questions.jsonl>")
	if err != nil {
		return err
	}

	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	questions, err := jsonl.NewLoader().LoadQuestions(rest[0])
	if err != nil {
		return err
	}

	cfg, err := bedrock.LoadConfig(ctx, *region)
	if err != nil {
		return err
	}
	generator, err := bedrock.NewKnowledgeBaseFromConfig(cfg, *kb, *modelARN,
		bedrock.WithNumberOfResults(int32(*results)))
	if err != nil {
		return err
	}

	gen := &Generate{
		Collector: &eval.Collector{Generator: generator, Group: *group, Logger: logger},
		Saver:     jsonl.NewSaver(),
		OutPath:   *outPath,
		Output:    stdout,
	}
	if _, err := gen.Run(ctx, questions); err != nil {
		return err
	}
	logger.Info("records written", zap.String("path", *outPath))
	return nil
}
