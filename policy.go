package ragjudge

import (
	"encoding/json"
	"fmt"
)

// PolicyVersion is the IAM policy language version.
const PolicyVersion = "2012-10-17"

// ChunkFunctionName is the name of the custom chunking Lambda function.
const ChunkFunctionName = "advanced-rag-custom-chunk"

// PolicyDocument is an IAM policy document.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is one statement of an IAM policy document.
type Statement struct {
	Effect    string                       `json:"Effect"`
	Principal map[string]string            `json:"Principal,omitempty"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

// JSON returns the document encoded as JSON.
func (d PolicyDocument) JSON() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func allow(actions []string, resources ...string) Statement {
	return Statement{Effect: "Allow", Action: actions, Resource: resources}
}

func sameAccount(account string) map[string]map[string]string {
	return map[string]map[string]string{
		"StringEquals": {"aws:ResourceAccount": account},
	}
}

// FoundationModelPolicy allows invoking any foundation model in region.
func FoundationModelPolicy(region string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{
			allow([]string{"bedrock:InvokeModel"},
				fmt.Sprintf("arn:aws:bedrock:%s::foundation-model/*", region)),
		},
	}
}

// S3AccessPolicy allows reading and writing bucket and its custom chunk
// companion bucket, restricted to buckets owned by account.
func S3AccessPolicy(bucket, account string) PolicyDocument {
	s := allow([]string{"s3:GetObject", "s3:PutObject", "s3:ListBucket"},
		"arn:aws:s3:::"+bucket,
		"arn:aws:s3:::"+bucket+"/*",
		"arn:aws:s3:::"+bucket+"-custom-chunk",
		"arn:aws:s3:::"+bucket+"-custom-chunk/*",
	)
	s.Condition = sameAccount(account)
	return PolicyDocument{Version: PolicyVersion, Statement: []Statement{s}}
}

// LambdaInvokePolicy allows invoking the custom chunking function.
func LambdaInvokePolicy(region, account string) PolicyDocument {
	s := allow([]string{"lambda:InvokeFunction"},
		fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s:*", region, account, ChunkFunctionName))
	s.Condition = sameAccount(account)
	return PolicyDocument{Version: PolicyVersion, Statement: []Statement{s}}
}

// OpenSearchAccessPolicy allows all API access to an OpenSearch
// Serverless collection.
func OpenSearchAccessPolicy(region, account, collectionID string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{
			allow([]string{"aoss:APIAccessAll"},
				fmt.Sprintf("arn:aws:aoss:%s:%s:collection/%s", region, account, collectionID)),
		},
	}
}

// BedrockTrustPolicy lets the Bedrock service assume a role.
func BedrockTrustPolicy() PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{{
			Effect:    "Allow",
			Principal: map[string]string{"Service": "bedrock.amazonaws.com"},
			Action:    []string{"sts:AssumeRole"},
		}},
	}
}

// CollectionRule grants permissions on OpenSearch Serverless resources.
type CollectionRule struct {
	ResourceType string   `json:"ResourceType"`
	Resource     []string `json:"Resource"`
	Permission   []string `json:"Permission,omitempty"`
}

// EncryptionPolicy is an OpenSearch Serverless encryption policy.
type EncryptionPolicy struct {
	Rules       []CollectionRule `json:"Rules"`
	AWSOwnedKey bool             `json:"AWSOwnedKey"`
}

// NetworkPolicy is one entry of an OpenSearch Serverless network policy.
type NetworkPolicy struct {
	Rules           []CollectionRule `json:"Rules"`
	AllowFromPublic bool             `json:"AllowFromPublic"`
}

// DataAccessPolicy is one entry of an OpenSearch Serverless data access policy.
type DataAccessPolicy struct {
	Rules       []CollectionRule `json:"Rules"`
	Principal   []string         `json:"Principal"`
	Description string           `json:"Description,omitempty"`
}

func collectionRule(collection string) CollectionRule {
	return CollectionRule{ResourceType: "collection", Resource: []string{"collection/" + collection}}
}

// CollectionEncryptionPolicy encrypts collection with an AWS owned key.
func CollectionEncryptionPolicy(collection string) EncryptionPolicy {
	return EncryptionPolicy{
		Rules:       []CollectionRule{collectionRule(collection)},
		AWSOwnedKey: true,
	}
}

// CollectionNetworkPolicy allows public network access to collection.
func CollectionNetworkPolicy(collection string) []NetworkPolicy {
	return []NetworkPolicy{{
		Rules:           []CollectionRule{collectionRule(collection)},
		AllowFromPublic: true,
	}}
}

// CollectionDataAccessPolicy grants principals full access to collection
// items and to every index in it.
func CollectionDataAccessPolicy(collection string, principals []string) []DataAccessPolicy {
	items := collectionRule(collection)
	items.Permission = []string{
		"aoss:CreateCollectionItems",
		"aoss:DeleteCollectionItems",
		"aoss:UpdateCollectionItems",
		"aoss:DescribeCollectionItems",
	}
	indexes := CollectionRule{
		ResourceType: "index",
		Resource:     []string{"index/" + collection + "/*"},
		Permission: []string{
			"aoss:CreateIndex",
			"aoss:DeleteIndex",
			"aoss:UpdateIndex",
			"aoss:DescribeIndex",
			"aoss:ReadDocument",
			"aoss:WriteDocument",
		},
	}
	return []DataAccessPolicy{{
		Rules:       []CollectionRule{items, indexes},
		Principal:   principals,
		Description: "Easy data policy",
	}}
}

// PolicyStatus is the outcome of creating a policy or role.
type PolicyStatus int

// Policy outcomes.
const (
	PolicyCreated PolicyStatus = iota
	PolicyAlreadyExists
	PolicyFailed
)

func (s PolicyStatus) String() string {
	switch s {
	case PolicyCreated:
		return "created"
	case PolicyAlreadyExists:
		return "already exists"
	case PolicyFailed:
		return "failed"
	}
	return fmt.Sprintf("PolicyStatus(%d)", int(s))
}

// PolicyResult reports what happened when creating one policy or role.
// ARN is set when the resource is usable, whether created now or before.
type PolicyResult struct {
	Kind   string
	Name   string
	ARN    string
	Status PolicyStatus
	Err    error
}

// OK reports whether the resource exists after the call.
func (r PolicyResult) OK() bool {
	return r.Status != PolicyFailed
}

// Reason returns the failure reason, or "" when the call succeeded.
func (r PolicyResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
