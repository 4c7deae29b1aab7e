package mock

import (
	"context"

	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var (
	_ ragjudge.Generator   = (*Generator)(nil)
	_ ragjudge.ModelLister = (*ModelLister)(nil)
)

// Generator is a mock implementation of ragjudge.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, question string) (*ragjudge.Generation, error)
}

func (g *Generator) Generate(ctx context.Context, question string) (*ragjudge.Generation, error) {
	return g.GenerateFn(ctx, question)
}

// ModelLister is a mock implementation of ragjudge.ModelLister.
type ModelLister struct {
	ListModelsFn func(ctx context.Context) ([]ragjudge.FoundationModel, error)
}

func (l *ModelLister) ListModels(ctx context.Context) ([]ragjudge.FoundationModel, error) {
	return l.ListModelsFn(ctx)
}
