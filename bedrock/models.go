package bedrock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsbedrock "github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.ModelLister = (*ModelLister)(nil)

// FoundationModelsAPI is the subset of the Bedrock control plane client
// used by ModelLister.
type FoundationModelsAPI interface {
	ListFoundationModels(ctx context.Context, params *awsbedrock.ListFoundationModelsInput, optFns ...func(*awsbedrock.Options)) (*awsbedrock.ListFoundationModelsOutput, error)
}

// ModelLister lists Bedrock foundation models.
type ModelLister struct {
	api FoundationModelsAPI
}

// NewModelLister creates a ModelLister on top of api.
func NewModelLister(api FoundationModelsAPI) *ModelLister {
	return &ModelLister{api: api}
}

// NewModelListerFromConfig creates a ModelLister with a client built from cfg.
func NewModelListerFromConfig(cfg aws.Config) *ModelLister {
	return NewModelLister(awsbedrock.NewFromConfig(cfg))
}

// ListModels returns every foundation model in the region, whatever its
// lifecycle status.
func (l *ModelLister) ListModels(ctx context.Context) ([]ragjudge.FoundationModel, error) {
	out, err := l.api.ListFoundationModels(ctx, &awsbedrock.ListFoundationModelsInput{})
	if err != nil {
		return nil, wrapError(err)
	}

	models := make([]ragjudge.FoundationModel, 0, len(out.ModelSummaries))
	for _, s := range out.ModelSummaries {
		m := ragjudge.FoundationModel{
			ID:       aws.ToString(s.ModelId),
			Name:     aws.ToString(s.ModelName),
			Provider: aws.ToString(s.ProviderName),
		}
		if s.ModelLifecycle != nil {
			m.Status = string(s.ModelLifecycle.Status)
		}
		for _, mod := range s.InputModalities {
			m.InputModalities = append(m.InputModalities, string(mod))
		}
		for _, mod := range s.OutputModalities {
			m.OutputModalities = append(m.OutputModalities, string(mod))
		}
		models = append(models, m)
	}
	return models, nil
}
