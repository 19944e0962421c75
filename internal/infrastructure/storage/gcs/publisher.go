package gcs

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const pdfContentType = "application/pdf"

// Publisher streams artifacts into a Cloud Storage bucket.
type Publisher struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*Publisher, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Publisher{client: client, bucket: client.Bucket(bucket)}, nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish returns only after the writer is closed, which is when Cloud Storage
// confirms the object.
func (p *Publisher) Publish(ctx context.Context, key string, data io.Reader, metadata map[string]string) error {
	writer := p.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = pdfContentType
	writer.Metadata = metadata

	if _, err := io.Copy(writer, data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write gcs object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize gcs object %s: %w", key, err)
	}
	return nil
}
