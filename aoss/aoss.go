// Package aoss creates the OpenSearch Serverless security and data access
// policies a knowledge base vector collection needs.
package aoss

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opensearchserverless"
	"github.com/aws/aws-sdk-go-v2/service/opensearchserverless/types"
	"github.com/fwojciec/ragjudge"
	"go.uber.org/zap"
)

// Policy names.
const (
	EncryptionPolicyName = "advanced-rag-enc-policy2"
	NetworkPolicyName    = "advanced-rag-network-policy2"
	AccessPolicyName     = "advanced-rag-access-policy2"
)

// Result kinds.
const (
	KindEncryption = "aoss encryption policy"
	KindNetwork    = "aoss network policy"
	KindData       = "aoss data access policy"
)

// API is the subset of the OpenSearch Serverless client used by Provisioner.
type API interface {
	CreateSecurityPolicy(ctx context.Context, params *opensearchserverless.CreateSecurityPolicyInput, optFns ...func(*opensearchserverless.Options)) (*opensearchserverless.CreateSecurityPolicyOutput, error)
	CreateAccessPolicy(ctx context.Context, params *opensearchserverless.CreateAccessPolicyInput, optFns ...func(*opensearchserverless.Options)) (*opensearchserverless.CreateAccessPolicyOutput, error)
}

// Provisioner creates collection policies.
type Provisioner struct {
	api    API
	logger *zap.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// NewProvisioner creates a Provisioner on top of api.
func NewProvisioner(api API, opts ...Option) *Provisioner {
	p := &Provisioner{api: api, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewProvisionerFromConfig creates a Provisioner with a client built from cfg.
func NewProvisionerFromConfig(cfg aws.Config, opts ...Option) *Provisioner {
	return NewProvisioner(opensearchserverless.NewFromConfig(cfg), opts...)
}

// CreatePolicies creates the encryption, network and data access policies
// for collection, granting data access to principals. Each policy is
// attempted regardless of the outcome of the others.
func (p *Provisioner) CreatePolicies(ctx context.Context, collection string, principals []string) []ragjudge.PolicyResult {
	return []ragjudge.PolicyResult{
		p.createSecurityPolicy(ctx, KindEncryption, EncryptionPolicyName, types.SecurityPolicyTypeEncryption,
			ragjudge.CollectionEncryptionPolicy(collection)),
		p.createSecurityPolicy(ctx, KindNetwork, NetworkPolicyName, types.SecurityPolicyTypeNetwork,
			ragjudge.CollectionNetworkPolicy(collection)),
		p.createAccessPolicy(ctx, collection, principals),
	}
}

func (p *Provisioner) createSecurityPolicy(ctx context.Context, kind, name string, typ types.SecurityPolicyType, policy any) ragjudge.PolicyResult {
	result := ragjudge.PolicyResult{Kind: kind, Name: name}
	body, err := json.Marshal(policy)
	if err != nil {
		return p.outcome(result, err)
	}
	_, err = p.api.CreateSecurityPolicy(ctx, &opensearchserverless.CreateSecurityPolicyInput{
		Name:   aws.String(name),
		Policy: aws.String(string(body)),
		Type:   typ,
	})
	return p.outcome(result, err)
}

func (p *Provisioner) createAccessPolicy(ctx context.Context, collection string, principals []string) ragjudge.PolicyResult {
	result := ragjudge.PolicyResult{Kind: KindData, Name: AccessPolicyName}
	body, err := json.Marshal(ragjudge.CollectionDataAccessPolicy(collection, principals))
	if err != nil {
		return p.outcome(result, err)
	}
	_, err = p.api.CreateAccessPolicy(ctx, &opensearchserverless.CreateAccessPolicyInput{
		Name:   aws.String(AccessPolicyName),
		Policy: aws.String(string(body)),
		Type:   types.AccessPolicyTypeData,
	})
	return p.outcome(result, err)
}

func (p *Provisioner) outcome(result ragjudge.PolicyResult, err error) ragjudge.PolicyResult {
	var conflict *types.ConflictException
	switch {
	case err == nil:
		result.Status = ragjudge.PolicyCreated
	case errors.As(err, &conflict):
		result.Status = ragjudge.PolicyAlreadyExists
		p.logger.Info("already exists", zap.String("kind", result.Kind), zap.String("name", result.Name))
	default:
		result.Status = ragjudge.PolicyFailed
		result.Err = err
		p.logger.Warn("creation failed", zap.String("kind", result.Kind), zap.String("name", result.Name), zap.Error(err))
	}
	return result
}
