// Package s3 implements ragjudge.ObjectStore on Amazon S3 and
// S3-compatible services such as MinIO.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var _ ragjudge.ObjectStore = (*Store)(nil)

const defaultRegion = "us-east-1"

// Errors returned by Store.
var (
	ErrBucketNotFound = errors.New("s3: bucket not found")
	ErrBadURI         = errors.New("s3: bad object URI")
)

// API is the subset of the S3 client used by Store.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the client built by NewStore.
type Options struct {
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Option sets a field of Options.
type Option func(*Options)

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint sets a custom endpoint, such as a MinIO server URL.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) { o.Endpoint = endpoint }
}

// WithPathStyle enables path-style addressing, required by most
// S3-compatible servers.
func WithPathStyle() Option {
	return func(o *Options) { o.UsePathStyle = true }
}

// WithStaticCredentials sets static credentials instead of the default chain.
func WithStaticCredentials(accessKeyID, secretAccessKey, sessionToken string) Option {
	return func(o *Options) {
		o.AccessKeyID = accessKeyID
		o.SecretAccessKey = secretAccessKey
		o.SessionToken = sessionToken
	}
}

// Store reads and writes whole objects.
type Store struct {
	api API
}

// NewStore builds a Store using the default AWS configuration chain.
func NewStore(ctx context.Context, opts ...Option) (*Store, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.Region))
	} else if o.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithRegion(defaultRegion))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return NewStoreFromConfig(cfg, opts...), nil
}

// NewStoreFromConfig builds a Store from an existing AWS configuration.
// Region in opts is ignored.
func NewStoreFromConfig(cfg aws.Config, opts ...Option) *Store {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	var s3Opts []func(*s3.Options)
	if o.Endpoint != "" {
		s3Opts = append(s3Opts, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(o.Endpoint)
		})
	}
	if o.UsePathStyle {
		s3Opts = append(s3Opts, func(so *s3.Options) {
			so.UsePathStyle = true
		})
	}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		s3Opts = append(s3Opts, func(so *s3.Options) {
			so.Credentials = credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, o.SessionToken)
		})
	}
	return &Store{api: s3.NewFromConfig(cfg, s3Opts...)}
}

// NewStoreWithAPI builds a Store on top of api.
func NewStoreWithAPI(api API) *Store {
	return &Store{api: api}
}

// GetObject returns the contents of bucket/key.
func (s *Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, wrapError(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// PutObject writes data as a JSON object to bucket/key.
func (s *Store) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, wrapError(err))
	}
	return nil
}

// GetURI returns the contents of an s3://bucket/key object.
func (s *Store) GetURI(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return s.GetObject(ctx, bucket, key)
}

// IsURI reports whether ref uses the s3:// scheme.
func IsURI(ref string) bool {
	return strings.HasPrefix(ref, "s3://")
}

// ParseURI splits an s3://bucket/key reference.
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("%w (missing s3://): %q", ErrBadURI, uri)
	}
	s := strings.TrimPrefix(uri, "s3://")
	slash := strings.IndexByte(s, '/')
	if slash <= 0 || slash == len(s)-1 {
		return "", "", fmt.Errorf("%w (need bucket/key): %q", ErrBadURI, uri)
	}
	return s[:slash], s[slash+1:], nil
}

// wrapError converts AWS SDK errors to sentinel errors.
func wrapError(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return errors.Join(ragjudge.ErrNotFound, err)
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return errors.Join(ErrBucketNotFound, err)
	}

	var apiErr interface{ ErrorCode() string }
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException":
			return errors.Join(ragjudge.ErrAccessDenied, err)
		case "NoSuchKey", "NotFound":
			return errors.Join(ragjudge.ErrNotFound, err)
		case "NoSuchBucket":
			return errors.Join(ErrBucketNotFound, err)
		}
	}

	return err
}
