package bedrock

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.Generator = (*KnowledgeBase)(nil)

// DefaultNumberOfResults is how many passages are retrieved per question.
const DefaultNumberOfResults = 5

// RetrieveAndGenerateAPI is the subset of the Bedrock agent runtime client
// used by KnowledgeBase.
type RetrieveAndGenerateAPI interface {
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

// KnowledgeBase answers questions with a Bedrock knowledge base.
type KnowledgeBase struct {
	api      RetrieveAndGenerateAPI
	id       string
	modelARN string
	results  int32
}

// KnowledgeBaseOption configures a KnowledgeBase.
type KnowledgeBaseOption func(*KnowledgeBase)

// WithNumberOfResults sets how many passages are retrieved per question.
func WithNumberOfResults(n int32) KnowledgeBaseOption {
	return func(k *KnowledgeBase) {
		if n > 0 {
			k.results = n
		}
	}
}

// NewKnowledgeBase creates a generator for knowledge base id that answers
// with the model identified by modelARN.
func NewKnowledgeBase(api RetrieveAndGenerateAPI, id, modelARN string, opts ...KnowledgeBaseOption) (*KnowledgeBase, error) {
	if id == "" {
		return nil, &ragjudge.ConfigError{Field: "knowledge base id", Reason: "not set"}
	}
	if modelARN == "" {
		return nil, &ragjudge.ConfigError{Field: "model arn", Reason: "not set"}
	}
	k := &KnowledgeBase{api: api, id: id, modelARN: modelARN, results: DefaultNumberOfResults}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// NewKnowledgeBaseFromConfig creates a KnowledgeBase with a client built from cfg.
func NewKnowledgeBaseFromConfig(cfg aws.Config, id, modelARN string, opts ...KnowledgeBaseOption) (*KnowledgeBase, error) {
	return NewKnowledgeBase(bedrockagentruntime.NewFromConfig(cfg), id, modelARN, opts...)
}

// Generate implements ragjudge.Generator. Every retrieved reference cited
// in the answer becomes a citation.
func (k *KnowledgeBase) Generate(ctx context.Context, question string) (*ragjudge.Generation, error) {
	out, err := k.api.RetrieveAndGenerate(ctx, &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &types.RetrieveAndGenerateInput{Text: aws.String(question)},
		RetrieveAndGenerateConfiguration: &types.RetrieveAndGenerateConfiguration{
			Type: types.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &types.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(k.id),
				ModelArn:        aws.String(k.modelARN),
				RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
					VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
						NumberOfResults: aws.Int32(k.results),
					},
				},
			},
		},
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if out.Output == nil {
		return nil, errors.New("bedrock: knowledge base returned no output")
	}

	gen := &ragjudge.Generation{Text: aws.ToString(out.Output.Text)}
	for _, c := range out.Citations {
		for _, ref := range c.RetrievedReferences {
			gen.Citations = append(gen.Citations, citation(ref))
		}
	}
	return gen, nil
}

func citation(ref types.RetrievedReference) ragjudge.Citation {
	var c ragjudge.Citation
	if ref.Content != nil {
		c.Text = aws.ToString(ref.Content.Text)
	}
	if loc := ref.Location; loc != nil {
		switch {
		case loc.S3Location != nil:
			c.Location = aws.ToString(loc.S3Location.Uri)
		case loc.WebLocation != nil:
			c.Location = aws.ToString(loc.WebLocation.Url)
		case loc.ConfluenceLocation != nil:
			c.Location = aws.ToString(loc.ConfluenceLocation.Url)
		case loc.SharePointLocation != nil:
			c.Location = aws.ToString(loc.SharePointLocation.Url)
		case loc.SalesforceLocation != nil:
			c.Location = aws.ToString(loc.SalesforceLocation.Url)
		}
	}
	if len(ref.Metadata) > 0 {
		c.Metadata = make(map[string]any, len(ref.Metadata))
		for key, doc := range ref.Metadata {
			var v any
			if doc == nil || doc.UnmarshalSmithyDocument(&v) != nil {
				continue
			}
			c.Metadata[key] = v
		}
	}
	return c
}
