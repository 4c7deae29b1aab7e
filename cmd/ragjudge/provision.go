package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/aoss"
	"github.com/fwojciec/ragjudge/bedrock"
	"github.com/fwojciec/ragjudge/iam"
	"github.com/fwojciec/ragjudge/lipgloss"
)

// RoleProvisioner creates the knowledge base execution role.
type RoleProvisioner interface {
	CreateExecutionRole(ctx context.Context, bucket string) (iam.ExecutionRole, error)
	AttachOpenSearchPolicy(ctx context.Context, roleName, collectionID string) (ragjudge.PolicyResult, error)
}

// CollectionProvisioner creates OpenSearch Serverless collection policies.
type CollectionProvisioner interface {
	CreatePolicies(ctx context.Context, collection string, principals []string) []ragjudge.PolicyResult
}

// Provision creates the execution role with its policies and, when a
// collection is named, the collection access policies.
type Provision struct {
	Roles       RoleProvisioner
	Collections CollectionProvisioner
	Output      io.Writer
	Renderer    *lipgloss.Renderer
	// Principals are granted data access to the collection, next to the
	// execution role.
	Principals []string
}

// Run provisions everything and prints a table of outcomes. It fails when
// any resource could not be created.
func (p *Provision) Run(ctx context.Context, bucket, collectionID, collectionName string) ([]ragjudge.PolicyResult, error) {
	role, err := p.Roles.CreateExecutionRole(ctx, bucket)
	results := append(append([]ragjudge.PolicyResult{}, role.Policies...), role.Role)
	if err != nil {
		fmt.Fprintln(p.Output, p.Renderer.Policies(results))
		return results, err
	}

	if collectionID != "" {
		res, err := p.Roles.AttachOpenSearchPolicy(ctx, role.Name(), collectionID)
		results = append(results, res)
		if err != nil {
			fmt.Fprintln(p.Output, p.Renderer.Policies(results))
			return results, err
		}
	}
	if collectionName != "" {
		principals := append(append([]string{}, p.Principals...), role.ARN())
		results = append(results, p.Collections.CreatePolicies(ctx, collectionName, principals)...)
	}

	fmt.Fprintln(p.Output, p.Renderer.Policies(results))
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d resources failed", failed, len(results))
	}
	return results, nil
}

func runProvision(ctx context.Context, args []string, stdout io.Writer) error {
	set := flag.NewFlagSet("provision", flag.ContinueOnError)
	bucket := set.String("bucket", "", "Bucket holding the knowledge base documents")
	collectionID := set.String("collection-id", "", "OpenSearch Serverless collection ID the role may access")
	collectionName := set.String("collection-name", "", "OpenSearch Serverless collection to create policies for")
	account := set.String("account", "", "AWS account ID (default the caller's account)")
	region := set.String("region", "", "AWS region (default from the AWS configuration)")
	g := addGlobalFlags(set)

	if _, err := parseFlags(set, args, 0, ""); err != nil {
		return err
	}
	if *bucket == "" {
		return &ragjudge.ConfigError{Field: "bucket", Reason: "not set"}
	}

	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := bedrock.LoadConfig(ctx, *region)
	if err != nil {
		return err
	}
	caller, err := iam.CallerIdentityFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	acct := *account
	if acct == "" {
		acct = caller.Account
	}

	roles, err := iam.NewProvisionerFromConfig(cfg, acct, iam.WithLogger(logger))
	if err != nil {
		return err
	}
	p := &Provision{
		Roles:       roles,
		Collections: aoss.NewProvisionerFromConfig(cfg, aoss.WithLogger(logger)),
		Output:      stdout,
		Renderer:    g.renderer(stdout),
		Principals:  []string{caller.ARN},
	}
	_, err = p.Run(ctx, *bucket, *collectionID, *collectionName)
	return err
}
