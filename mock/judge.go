package mock

import (
	"context"

	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.Judge = (*Judge)(nil)

// Judge is a mock implementation of ragjudge.Judge.
type Judge struct {
	JudgeFn func(ctx context.Context, req ragjudge.JudgeRequest) (string, error)
}

func (j *Judge) Judge(ctx context.Context, req ragjudge.JudgeRequest) (string, error) {
	return j.JudgeFn(ctx, req)
}
