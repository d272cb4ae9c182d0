package flatdoc

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSSink writes snapshots to Google Cloud Storage
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSSinkConfig contains GCS-specific configuration
type GCSSinkConfig struct {
	Bucket          string
	Prefix          string // optional key prefix inside the bucket
	CredentialsFile string // optional; Application Default Credentials when empty
}

// NewGCSSink creates a GCS-backed snapshot sink
func NewGCSSink(ctx context.Context, cfg GCSSinkConfig) (*GCSSink, error) {
	if cfg.Bucket == "" {
		return nil, WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "Bucket",
			"reason": "bucket is required",
		})
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSSink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *GCSSink) Write(ctx context.Context, key string, data []byte) error {
	if s.prefix != "" {
		key = strings.TrimSuffix(s.prefix, "/") + "/" + key
	}
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Close releases the underlying GCS client
func (s *GCSSink) Close() error {
	return s.client.Close()
}
