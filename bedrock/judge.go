package bedrock

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.Judge = (*Judge)(nil)

// ConverseAPI is the subset of the Bedrock runtime client used by Judge.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Judge sends prompts to a Bedrock model with the Converse API.
type Judge struct {
	api ConverseAPI
}

// NewJudge creates a Judge on top of api.
func NewJudge(api ConverseAPI) *Judge {
	return &Judge{api: api}
}

// NewJudgeFromConfig creates a Judge with a runtime client built from cfg.
func NewJudgeFromConfig(cfg aws.Config) *Judge {
	return NewJudge(bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		o.Retryer = aws.NopRetryer{}
	}))
}

// Judge implements ragjudge.Judge. It returns the first text block of the
// model's reply.
func (j *Judge) Judge(ctx context.Context, req ragjudge.JudgeRequest) (string, error) {
	out, err := j.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.Model),
		Messages: []types.Message{{
			Role: types.ConversationRoleUser,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: req.Prompt},
			},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(float32(req.Temperature)),
			TopP:        aws.Float32(float32(req.TopP)),
		},
	})
	if err != nil {
		return "", wrapError(err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock: unexpected converse output %T", out.Output)
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value, nil
		}
	}
	return "", errors.New("bedrock: reply has no text content")
}
