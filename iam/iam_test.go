package iam_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/iam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	region  = "us-west-2"
	account = "123456789012"
)

// fakeIAM records calls and answers them with configurable errors.
type fakeIAM struct {
	mu          sync.Mutex
	policies    map[string]string
	attached    []string
	policyErr   map[string]error
	roleErr     error
	getRoleErr  error
	attachErr   error
	createdRole *awsiam.CreateRoleInput
}

func newFakeIAM() *fakeIAM {
	return &fakeIAM{policies: map[string]string{}, policyErr: map[string]error{}}
}

func (f *fakeIAM) CreatePolicy(_ context.Context, in *awsiam.CreatePolicyInput, _ ...func(*awsiam.Options)) (*awsiam.CreatePolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.PolicyName)
	if err := f.policyErr[name]; err != nil {
		return nil, err
	}
	f.policies[name] = aws.ToString(in.PolicyDocument)
	return &awsiam.CreatePolicyOutput{Policy: &types.Policy{
		Arn: aws.String("arn:aws:iam::123456789012:policy/created/" + name),
	}}, nil
}

func (f *fakeIAM) CreateRole(_ context.Context, in *awsiam.CreateRoleInput, _ ...func(*awsiam.Options)) (*awsiam.CreateRoleOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdRole = in
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	return &awsiam.CreateRoleOutput{Role: &types.Role{
		RoleName: in.RoleName,
		Arn:      aws.String("arn:aws:iam::123456789012:role/" + aws.ToString(in.RoleName)),
	}}, nil
}

func (f *fakeIAM) GetRole(_ context.Context, in *awsiam.GetRoleInput, _ ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error) {
	if f.getRoleErr != nil {
		return nil, f.getRoleErr
	}
	return &awsiam.GetRoleOutput{Role: &types.Role{
		RoleName: in.RoleName,
		Arn:      aws.String("arn:aws:iam::123456789012:role/existing/" + aws.ToString(in.RoleName)),
	}}, nil
}

func (f *fakeIAM) AttachRolePolicy(_ context.Context, in *awsiam.AttachRolePolicyInput, _ ...func(*awsiam.Options)) (*awsiam.AttachRolePolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return nil, f.attachErr
	}
	f.attached = append(f.attached, aws.ToString(in.RoleName)+" <- "+aws.ToString(in.PolicyArn))
	return &awsiam.AttachRolePolicyOutput{}, nil
}

func exists() error {
	return &types.EntityAlreadyExistsException{Message: aws.String("already exists")}
}

func TestNewProvisioner(t *testing.T) {
	t.Parallel()

	_, err := iam.NewProvisioner(newFakeIAM(), "", account)
	var cfgErr *ragjudge.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "region", cfgErr.Field)

	_, err = iam.NewProvisioner(newFakeIAM(), region, "")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "account", cfgErr.Field)
}

func TestProvisioner_CreateExecutionRole(t *testing.T) {
	t.Parallel()

	t.Run("creates policies and role and attaches them", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		p, err := iam.NewProvisioner(api, region, account)
		require.NoError(t, err)

		role, err := p.CreateExecutionRole(context.Background(), "docs")

		require.NoError(t, err)
		assert.Equal(t, "advanced-rag-workshop-bedrock_execution_role-us-west-2", role.Name())
		assert.Equal(t, "arn:aws:iam::123456789012:role/advanced-rag-workshop-bedrock_execution_role-us-west-2", role.ARN())
		assert.Equal(t, ragjudge.PolicyCreated, role.Role.Status)
		assert.Equal(t, int32(3600), aws.ToInt32(api.createdRole.MaxSessionDuration))

		var trust ragjudge.PolicyDocument
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(api.createdRole.AssumeRolePolicyDocument)), &trust))
		assert.Equal(t, ragjudge.BedrockTrustPolicy(), trust)

		require.Len(t, role.Policies, 3)
		names := make([]string, 0, len(role.Policies))
		for _, r := range role.Policies {
			assert.Equal(t, ragjudge.PolicyCreated, r.Status)
			assert.Equal(t, iam.KindPolicy, r.Kind)
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{
			"advanced-rag-fm-policy-us-west-2",
			"advanced-rag-s3-policy-us-west-2",
			"advanced-rag-lambda-policy-us-west-2",
		}, names)

		var s3Doc ragjudge.PolicyDocument
		require.NoError(t, json.Unmarshal([]byte(api.policies["advanced-rag-s3-policy-us-west-2"]), &s3Doc))
		assert.Equal(t, ragjudge.S3AccessPolicy("docs", account), s3Doc)

		assert.Equal(t, []string{
			"advanced-rag-workshop-bedrock_execution_role-us-west-2 <- arn:aws:iam::123456789012:policy/created/advanced-rag-fm-policy-us-west-2",
			"advanced-rag-workshop-bedrock_execution_role-us-west-2 <- arn:aws:iam::123456789012:policy/created/advanced-rag-s3-policy-us-west-2",
			"advanced-rag-workshop-bedrock_execution_role-us-west-2 <- arn:aws:iam::123456789012:policy/created/advanced-rag-lambda-policy-us-west-2",
		}, api.attached)
	})

	t.Run("reuses existing policies and role", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		api.policyErr["advanced-rag-fm-policy-us-west-2"] = exists()
		api.roleErr = exists()
		core, logs := observer.New(zapcore.InfoLevel)
		p, err := iam.NewProvisioner(api, region, account, iam.WithLogger(zap.New(core)))
		require.NoError(t, err)

		role, err := p.CreateExecutionRole(context.Background(), "docs")

		require.NoError(t, err)
		assert.Equal(t, ragjudge.PolicyAlreadyExists, role.Role.Status)
		assert.Equal(t, "arn:aws:iam::123456789012:role/existing/advanced-rag-workshop-bedrock_execution_role-us-west-2", role.ARN())

		fm := role.Policies[0]
		assert.Equal(t, ragjudge.PolicyAlreadyExists, fm.Status)
		assert.True(t, fm.OK())
		assert.Equal(t, "arn:aws:iam::123456789012:policy/advanced-rag-fm-policy-us-west-2", fm.ARN)
		assert.Contains(t, api.attached, "advanced-rag-workshop-bedrock_execution_role-us-west-2 <- arn:aws:iam::123456789012:policy/advanced-rag-fm-policy-us-west-2")

		assert.Equal(t, 2, logs.FilterMessage("already exists").Len())
	})

	t.Run("skips failed policies", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		api.policyErr["advanced-rag-lambda-policy-us-west-2"] = errors.New("malformed policy")
		core, logs := observer.New(zapcore.InfoLevel)
		p, err := iam.NewProvisioner(api, region, account, iam.WithLogger(zap.New(core)))
		require.NoError(t, err)

		role, err := p.CreateExecutionRole(context.Background(), "docs")

		require.NoError(t, err)
		lambda := role.Policies[2]
		assert.Equal(t, ragjudge.PolicyFailed, lambda.Status)
		assert.Equal(t, "malformed policy", lambda.Reason())
		assert.Empty(t, lambda.ARN)
		assert.Len(t, api.attached, 2)

		failures := logs.FilterMessage("creation failed").All()
		require.Len(t, failures, 1)
		assert.Equal(t, "advanced-rag-lambda-policy-us-west-2", failures[0].ContextMap()["name"])
	})

	t.Run("fails when role cannot be created", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		api.roleErr = errors.New("limit exceeded")
		p, err := iam.NewProvisioner(api, region, account)
		require.NoError(t, err)

		role, err := p.CreateExecutionRole(context.Background(), "docs")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit exceeded")
		assert.Equal(t, ragjudge.PolicyFailed, role.Role.Status)
		assert.Empty(t, api.attached)
	})

	t.Run("fails when existing role cannot be read", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		api.roleErr = exists()
		api.getRoleErr = errors.New("denied")
		p, err := iam.NewProvisioner(api, region, account)
		require.NoError(t, err)

		_, err = p.CreateExecutionRole(context.Background(), "docs")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "get existing role")
	})

	t.Run("returns attachment errors", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		api.attachErr = errors.New("no such role")
		p, err := iam.NewProvisioner(api, region, account)
		require.NoError(t, err)

		_, err = p.CreateExecutionRole(context.Background(), "docs")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no such role")
	})
}

func TestProvisioner_AttachOpenSearchPolicy(t *testing.T) {
	t.Parallel()

	t.Run("creates and attaches collection policy", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		p, err := iam.NewProvisioner(api, region, account)
		require.NoError(t, err)

		result, err := p.AttachOpenSearchPolicy(context.Background(), "exec-role", "abc123")

		require.NoError(t, err)
		assert.Equal(t, ragjudge.PolicyCreated, result.Status)
		assert.Equal(t, "advanced-rag-oss-policy-us-west-2", result.Name)
		assert.Equal(t, []string{"exec-role <- arn:aws:iam::123456789012:policy/created/advanced-rag-oss-policy-us-west-2"}, api.attached)

		var doc ragjudge.PolicyDocument
		require.NoError(t, json.Unmarshal([]byte(api.policies["advanced-rag-oss-policy-us-west-2"]), &doc))
		assert.Equal(t, []string{"arn:aws:aoss:us-west-2:123456789012:collection/abc123"}, doc.Statement[0].Resource)
	})

	t.Run("does not attach a failed policy", func(t *testing.T) {
		t.Parallel()

		api := newFakeIAM()
		api.policyErr["advanced-rag-oss-policy-us-west-2"] = errors.New("boom")
		p, err := iam.NewProvisioner(api, region, account)
		require.NoError(t, err)

		result, err := p.AttachOpenSearchPolicy(context.Background(), "exec-role", "abc123")

		require.NoError(t, err)
		assert.Equal(t, ragjudge.PolicyFailed, result.Status)
		assert.Empty(t, api.attached)
	})
}

type stsFn func(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)

func (f stsFn) GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return f(ctx, in, optFns...)
}

func TestCallerIdentity(t *testing.T) {
	t.Parallel()

	t.Run("normalizes assumed role", func(t *testing.T) {
		t.Parallel()

		id, err := iam.CallerIdentity(context.Background(), stsFn(func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
			return &sts.GetCallerIdentityOutput{
				Account: aws.String(account),
				Arn:     aws.String("arn:aws:sts::123456789012:assumed-role/SageMakerRole/session-1"),
			}, nil
		}))

		require.NoError(t, err)
		assert.Equal(t, iam.Identity{Account: account, ARN: "arn:aws:iam::123456789012:role/SageMakerRole"}, id)
	})

	t.Run("wraps errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("expired token")
		_, err := iam.CallerIdentity(context.Background(), stsFn(func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
			return nil, boom
		}))

		assert.ErrorIs(t, err, boom)
	})
}

func TestPrincipalARN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"arn:aws:sts::123456789012:assumed-role/Admin/me", "arn:aws:iam::123456789012:role/Admin"},
		{"arn:aws-cn:sts::123456789012:assumed-role/Admin/me", "arn:aws-cn:iam::123456789012:role/Admin"},
		{"arn:aws:iam::123456789012:user/alice", "arn:aws:iam::123456789012:user/alice"},
		{"arn:aws:sts::123456789012:federated-user/bob", "arn:aws:sts::123456789012:federated-user/bob"},
		{"not-an-arn", "not-an-arn"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, iam.PrincipalARN(tt.in))
		})
	}
}
