package eval

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/fwojciec/ragjudge"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner judges every record of a dataset: it formats the prompt,
// dispatches it and parses the reply. A record that cannot be judged gets
// a ScoreUnknown verdict describing the failure; other records are not
// affected.
type Runner struct {
	Dispatcher *Dispatcher
	Template   *ragjudge.Template
	Config     ragjudge.JudgeConfig
	// Workers sets the number of parallel workers. If <= 1, runs sequentially.
	Workers int
	// RunID is stamped into each record's metadata. If empty, a random ID is used.
	RunID  string
	Logger *zap.Logger
	// OnProgress is called after each record is judged. Calls are serialized.
	OnProgress func(ragjudge.Progress)
}

// Judge returns the verdict for a single item.
func (r *Runner) Judge(ctx context.Context, item ragjudge.EvaluationItem) (ragjudge.Verdict, error) {
	prompt := r.Template.Format(item)
	reply, err := r.Dispatcher.Dispatch(ctx, r.Config.Request(prompt))
	if err != nil {
		return ragjudge.Verdict{}, err
	}
	return ragjudge.ParseVerdict(reply), nil
}

type recordRef struct {
	group string
	index int
}

// Evaluate judges every record in ds and returns a copy of ds with each
// record's Response set. The input dataset is not modified. The returned
// error is non-nil when ctx ends before the run completes or when the
// judge rejects the credentials, which stops the run. The dataset is still
// complete, with unjudged records marked as failed.
func (r *Runner) Evaluate(ctx context.Context, ds ragjudge.Dataset) (ragjudge.Dataset, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := r.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	out := make(ragjudge.Dataset, len(ds))
	var refs []recordRef
	for _, g := range ds.Groups() {
		records := make([]ragjudge.Record, len(ds[g]))
		copy(records, ds[g])
		out[g] = records
		for i := range records {
			refs = append(refs, recordRef{group: g, index: i})
		}
	}

	logger.Info("evaluation started",
		zap.String("run_id", runID),
		zap.Int("records", len(refs)),
		zap.Int("workers", max(r.Workers, 1)))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var (
		mu       sync.Mutex
		done     int
		fatalErr error
	)
	judge := func(ctx context.Context, ref recordRef) {
		rec := &out[ref.group][ref.index]
		v, err := r.judgeRecord(ctx, *rec)
		switch {
		case ragjudge.IsFatal(err):
			mu.Lock()
			if fatalErr == nil {
				fatalErr = err
				logger.Error("judge rejected the request, stopping evaluation",
					zap.String("group", ref.group),
					zap.Int("index", ref.index),
					zap.Error(err))
			}
			mu.Unlock()
			stop()
			v = ragjudge.UnknownVerdict(fmt.Sprintf("evaluation failed: %v", err))
		case err != nil:
			logger.Warn("record evaluation failed",
				zap.String("group", ref.group),
				zap.Int("index", ref.index),
				zap.Error(err))
			v = ragjudge.UnknownVerdict(fmt.Sprintf("evaluation failed: %v", err))
		case !v.Scored():
			logger.Warn("judge reply has no verdict",
				zap.String("group", ref.group),
				zap.Int("index", ref.index))
		}
		rec.Response = &v
		rec.Metadata = withRunID(rec.Metadata, runID)

		mu.Lock()
		defer mu.Unlock()
		done++
		if r.OnProgress != nil {
			r.OnProgress(ragjudge.Progress{
				Group:   ref.group,
				Index:   ref.index,
				Done:    done,
				Total:   len(refs),
				Verdict: v,
				Err:     err,
			})
		}
	}

	if r.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(r.Workers)
		for _, ref := range refs {
			g.Go(func() error {
				judge(runCtx, ref)
				return nil
			})
		}
		// Workers record failures in the dataset and never return one.
		g.Wait()
	} else {
		for _, ref := range refs {
			judge(runCtx, ref)
		}
	}

	if fatalErr != nil {
		return out, fatalErr
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	logger.Info("evaluation finished", zap.String("run_id", runID))
	return out, nil
}

// errGeneration marks records whose answer could not be generated.
var errGeneration = errors.New("answer generation failed")

func (r *Runner) judgeRecord(ctx context.Context, rec ragjudge.Record) (ragjudge.Verdict, error) {
	if msg := rec.GenerationError(); msg != "" {
		return ragjudge.Verdict{}, fmt.Errorf("%w: %s", errGeneration, msg)
	}
	return r.Judge(ctx, rec.Item())
}

func withRunID(metadata map[string]any, runID string) map[string]any {
	m := make(map[string]any, len(metadata)+1)
	maps.Copy(m, metadata)
	m[ragjudge.MetadataRunID] = runID
	return m
}
