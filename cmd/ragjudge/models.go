package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/bedrock"
	"github.com/fwojciec/ragjudge/lipgloss"
)

// listModels prints the models lister offers, only the active ones unless
// all is set.
func listModels(ctx context.Context, w io.Writer, lister ragjudge.ModelLister, r *lipgloss.Renderer, all bool) error {
	models, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if !all {
		models = ragjudge.ActiveModels(models)
	}
	fmt.Fprintln(w, r.Models(models))
	fmt.Fprintf(w, "%d models\n", len(models))
	return nil
}

func runModels(ctx context.Context, args []string, stdout io.Writer) error {
	set := flag.NewFlagSet("models", flag.ContinueOnError)
	region := set.String("region", "", "AWS region (default from the AWS configuration)")
	all := set.Bool("all", false, "Include models that are not active")
	g := addGlobalFlags(set)

	if _, err := parseFlags(set, args, 0, ""); err != nil {
		return err
	}

	cfg, err := bedrock.LoadConfig(ctx, *region)
	if err != nil {
		return err
	}
	return listModels(ctx, stdout, bedrock.NewModelListerFromConfig(cfg), g.renderer(stdout), *all)
}
