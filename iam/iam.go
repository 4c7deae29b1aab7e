// Package iam provisions the Bedrock knowledge base execution role and its
// policies with AWS IAM.
package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/fwojciec/ragjudge"
	"go.uber.org/zap"
)

// Result kinds.
const (
	KindPolicy = "iam policy"
	KindRole   = "iam role"
)

// API is the subset of the IAM client used by Provisioner.
type API interface {
	CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
}

// STSAPI is the subset of the STS client used by CallerIdentity.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// RoleName returns the name of the execution role for region.
func RoleName(region string) string {
	return "advanced-rag-workshop-bedrock_execution_role-" + region
}

// PolicyName returns the name of the kind policy for region, for example
// advanced-rag-fm-policy-us-east-1.
func PolicyName(kind, region string) string {
	return fmt.Sprintf("advanced-rag-%s-policy-%s", kind, region)
}

// PolicyARN returns the ARN of a customer managed policy.
func PolicyARN(account, name string) string {
	return fmt.Sprintf("arn:aws:iam::%s:policy/%s", account, name)
}

// ExecutionRole is the outcome of CreateExecutionRole.
type ExecutionRole struct {
	Role     ragjudge.PolicyResult
	Policies []ragjudge.PolicyResult
}

// Name returns the role name.
func (r ExecutionRole) Name() string {
	return r.Role.Name
}

// ARN returns the role ARN.
func (r ExecutionRole) ARN() string {
	return r.Role.ARN
}

// Provisioner creates the execution role and its policies.
type Provisioner struct {
	api     API
	region  string
	account string
	logger  *zap.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// NewProvisioner creates a Provisioner for account in region.
func NewProvisioner(api API, region, account string, opts ...Option) (*Provisioner, error) {
	if region == "" {
		return nil, &ragjudge.ConfigError{Field: "region", Reason: "not set"}
	}
	if account == "" {
		return nil, &ragjudge.ConfigError{Field: "account", Reason: "not set"}
	}
	p := &Provisioner{api: api, region: region, account: account, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewProvisionerFromConfig creates a Provisioner with a client built from
// cfg, in the region of cfg.
func NewProvisionerFromConfig(cfg aws.Config, account string, opts ...Option) (*Provisioner, error) {
	return NewProvisioner(iam.NewFromConfig(cfg), cfg.Region, account, opts...)
}

// CreateExecutionRole creates the foundation model, S3 and Lambda policies,
// the execution role Bedrock assumes, and attaches every usable policy to
// the role. A policy that fails to be created is reported and skipped. An
// error is returned only when the role is unusable or an attachment fails.
func (p *Provisioner) CreateExecutionRole(ctx context.Context, bucket string) (ExecutionRole, error) {
	documents := []struct {
		kind        string
		description string
		doc         ragjudge.PolicyDocument
	}{
		{"fm", "Policy for accessing foundation models", ragjudge.FoundationModelPolicy(p.region)},
		{"s3", "Policy for accessing S3 storage", ragjudge.S3AccessPolicy(bucket, p.account)},
		{"lambda", "Policy for invoking Lambda functions", ragjudge.LambdaInvokePolicy(p.region, p.account)},
	}

	var out ExecutionRole
	for _, d := range documents {
		out.Policies = append(out.Policies, p.createPolicy(ctx, PolicyName(d.kind, p.region), d.description, d.doc))
	}

	out.Role = p.createRole(ctx)
	if !out.Role.OK() {
		return out, fmt.Errorf("create role %s: %w", out.Role.Name, out.Role.Err)
	}

	for _, policy := range out.Policies {
		if !policy.OK() {
			continue
		}
		if err := p.attach(ctx, out.Role.Name, policy.ARN); err != nil {
			return out, err
		}
	}
	return out, nil
}

// AttachOpenSearchPolicy creates the OpenSearch Serverless access policy
// for collectionID and attaches it to roleName.
func (p *Provisioner) AttachOpenSearchPolicy(ctx context.Context, roleName, collectionID string) (ragjudge.PolicyResult, error) {
	result := p.createPolicy(ctx,
		PolicyName("oss", p.region),
		"Policy for accessing OpenSearch Serverless",
		ragjudge.OpenSearchAccessPolicy(p.region, p.account, collectionID),
	)
	if !result.OK() {
		return result, nil
	}
	return result, p.attach(ctx, roleName, result.ARN)
}

func (p *Provisioner) createPolicy(ctx context.Context, name, description string, doc ragjudge.PolicyDocument) ragjudge.PolicyResult {
	result := ragjudge.PolicyResult{Kind: KindPolicy, Name: name}

	body, err := doc.JSON()
	if err != nil {
		return p.failed(result, err)
	}
	out, err := p.api.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(body),
		Description:    aws.String(description),
	})
	if err != nil {
		if alreadyExists(err) {
			result.ARN = PolicyARN(p.account, name)
			return p.exists(result)
		}
		return p.failed(result, err)
	}

	result.Status = ragjudge.PolicyCreated
	if out.Policy != nil {
		result.ARN = aws.ToString(out.Policy.Arn)
	}
	if result.ARN == "" {
		result.ARN = PolicyARN(p.account, name)
	}
	return result
}

func (p *Provisioner) createRole(ctx context.Context) ragjudge.PolicyResult {
	name := RoleName(p.region)
	result := ragjudge.PolicyResult{Kind: KindRole, Name: name}

	trust, err := ragjudge.BedrockTrustPolicy().JSON()
	if err != nil {
		return p.failed(result, err)
	}
	out, err := p.api.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(trust),
		Description:              aws.String("Amazon Bedrock Knowledge Base Execution Role"),
		MaxSessionDuration:       aws.Int32(3600),
	})
	if err == nil {
		result.Status = ragjudge.PolicyCreated
		if out.Role != nil {
			result.ARN = aws.ToString(out.Role.Arn)
		}
		return result
	}
	if !alreadyExists(err) {
		return p.failed(result, err)
	}

	existing, err := p.api.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		return p.failed(result, fmt.Errorf("get existing role: %w", err))
	}
	if existing.Role != nil {
		result.ARN = aws.ToString(existing.Role.Arn)
	}
	return p.exists(result)
}

func (p *Provisioner) attach(ctx context.Context, roleName, policyARN string) error {
	_, err := p.api.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return fmt.Errorf("attach %s to %s: %w", policyARN, roleName, err)
	}
	p.logger.Debug("policy attached", zap.String("role", roleName), zap.String("policy_arn", policyARN))
	return nil
}

func (p *Provisioner) exists(result ragjudge.PolicyResult) ragjudge.PolicyResult {
	result.Status = ragjudge.PolicyAlreadyExists
	p.logger.Info("already exists",
		zap.String("kind", result.Kind),
		zap.String("name", result.Name),
		zap.String("arn", result.ARN),
	)
	return result
}

func (p *Provisioner) failed(result ragjudge.PolicyResult, err error) ragjudge.PolicyResult {
	result.Status = ragjudge.PolicyFailed
	result.Err = err
	p.logger.Warn("creation failed",
		zap.String("kind", result.Kind),
		zap.String("name", result.Name),
		zap.Error(err),
	)
	return result
}

func alreadyExists(err error) bool {
	var exists *types.EntityAlreadyExistsException
	return errors.As(err, &exists)
}

// Identity is the principal making AWS calls.
type Identity struct {
	Account string
	ARN     string
}

// CallerIdentity returns the calling principal. An assumed-role session
// ARN is reported as the ARN of the role it was assumed from, so it can be
// used as a policy principal.
func CallerIdentity(ctx context.Context, api STSAPI) (Identity, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("get caller identity: %w", err)
	}
	return Identity{
		Account: aws.ToString(out.Account),
		ARN:     PrincipalARN(aws.ToString(out.Arn)),
	}, nil
}

// CallerIdentityFromConfig calls CallerIdentity with a client built from cfg.
func CallerIdentityFromConfig(ctx context.Context, cfg aws.Config) (Identity, error) {
	return CallerIdentity(ctx, sts.NewFromConfig(cfg))
}

// PrincipalARN converts arn:aws:sts::<account>:assumed-role/<role>/<session>
// to arn:aws:iam::<account>:role/<role>. Other ARNs are returned unchanged.
func PrincipalARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[2] != "sts" {
		return arn
	}
	resource := strings.Split(parts[5], "/")
	if len(resource) < 3 || resource[0] != "assumed-role" {
		return arn
	}
	return fmt.Sprintf("%s:%s:iam::%s:role/%s", parts[0], parts[1], parts[4], resource[1])
}
