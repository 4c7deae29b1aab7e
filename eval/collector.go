package eval

import (
	"context"

	"github.com/fwojciec/ragjudge"
	"go.uber.org/zap"
)

// Collector generates answers for questions and turns them into records
// ready to be judged. A question whose generation fails still produces a
// record, with the failure stored under metadata "error".
type Collector struct {
	Generator ragjudge.Generator
	Group     string
	Logger    *zap.Logger
	// OnRecord is called with each record as soon as it is produced.
	// Returning an error stops the collection.
	OnRecord func(ragjudge.Record) error
}

// Collect generates a record for each question, in order.
func (c *Collector) Collect(ctx context.Context, questions []ragjudge.Question) ([]ragjudge.Record, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	records := make([]ragjudge.Record, 0, len(questions))
	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		rec := ragjudge.Record{
			Group:             c.Group,
			Question:          q.Question,
			ExpectedAnswer:    q.Answer,
			RetrievedContexts: []ragjudge.RetrievedContext{},
		}

		gen, err := c.Generator.Generate(ctx, q.Question)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return records, ctxErr
			}
			logger.Warn("answer generation failed",
				zap.String("group", c.Group),
				zap.Int("index", i),
				zap.Error(err))
			rec.Metadata = map[string]any{ragjudge.MetadataError: err.Error()}
		} else {
			rec.GeneratedAnswer = gen.Text
			rec.RetrievedContexts = gen.Contexts()
		}

		records = append(records, rec)
		if c.OnRecord != nil {
			if err := c.OnRecord(rec); err != nil {
				return records, err
			}
		}
	}

	logger.Info("answers generated",
		zap.String("group", c.Group),
		zap.Int("records", len(records)))
	return records, nil
}
