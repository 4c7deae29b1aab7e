// Package bedrock implements judges, model listing and knowledge base
// generation on Amazon Bedrock.
package bedrock

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go"
	"github.com/fwojciec/ragjudge"
)

// LoadConfig loads the default AWS configuration and checks that a region
// is set.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.Region == "" {
		return aws.Config{}, &ragjudge.ConfigError{Field: "AWS_REGION", Reason: "not set"}
	}
	return cfg, nil
}

// wrapError maps Bedrock service errors to the ragjudge error taxonomy.
func wrapError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "AccessDeniedException", "AccessDenied", "UnrecognizedClientException",
		"ExpiredTokenException", "InvalidSignatureException":
		return &ragjudge.AuthError{StatusCode: statusCode(err), Err: err}
	case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
		return &ragjudge.RateLimitError{RetryAfter: retryAfter(err), Err: err}
	}
	return err
}

func statusCode(err error) int {
	if resp := httpResponse(err); resp != nil {
		return resp.StatusCode
	}
	return 0
}

func retryAfter(err error) time.Duration {
	if resp := httpResponse(err); resp != nil {
		return ragjudge.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return 0
}

// httpResponse returns the raw HTTP response carried by an SDK error, if any.
func httpResponse(err error) *http.Response {
	var respErr *awshttp.ResponseError
	if !errors.As(err, &respErr) || respErr.ResponseError == nil || respErr.Response == nil {
		return nil
	}
	return respErr.Response.Response
}
