package port

import "context"

// ObjectStorage abstracts read access to stored source documents.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	// List returns the object keys under prefix.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}
