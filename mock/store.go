package mock

import (
	"context"

	"github.com/fwojciec/ragjudge"
)

// Compile-time interface verification.
var (
	_ ragjudge.ObjectStore = (*ObjectStore)(nil)
	_ ragjudge.RecordStore = (*RecordStore)(nil)
)

// ObjectStore is a mock implementation of ragjudge.ObjectStore.
type ObjectStore struct {
	GetObjectFn func(ctx context.Context, bucket, key string) ([]byte, error)
	PutObjectFn func(ctx context.Context, bucket, key string, data []byte) error
}

func (s *ObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	return s.GetObjectFn(ctx, bucket, key)
}

func (s *ObjectStore) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	return s.PutObjectFn(ctx, bucket, key, data)
}

// RecordStore is a mock implementation of ragjudge.RecordStore.
type RecordStore struct {
	LoadFn func(path string) ([]ragjudge.Record, error)
	SaveFn func(path string, records []ragjudge.Record) error
}

func (s *RecordStore) Load(path string) ([]ragjudge.Record, error) {
	return s.LoadFn(path)
}

func (s *RecordStore) Save(path string, records []ragjudge.Record) error {
	return s.SaveFn(path, records)
}
