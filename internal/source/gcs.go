package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"sentencecards/internal/logging"
)

// GCS reads content objects under a bucket prefix.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// ParseGCSURL splits gs://bucket/prefix into its parts. The prefix has no
// leading or trailing slash.
func ParseGCSURL(raw string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(raw, "gs://")
	if !ok {
		return "", "", fmt.Errorf("invalid gcs url %q: missing gs:// scheme", raw)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid gcs url %q: missing bucket", raw)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// NewGCS creates a storage client with application default credentials.
func NewGCS(ctx context.Context, root string, opts ...option.ClientOption) (*GCS, error) {
	bucket, prefix, err := ParseGCSURL(root)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectName maps a content name to its object name.
func (g *GCS) ObjectName(name string) string {
	if g.prefix == "" {
		return name
	}
	return path.Join(g.prefix, name)
}

// Fetch reads the object for name. A missing object wraps ErrNotFound.
func (g *GCS) Fetch(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, &FetchError{Source: g.String(), Name: name, Err: err}
	}
	object := g.ObjectName(clean)

	r, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			err = fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, &FetchError{Source: g.String(), Name: name, Err: err}
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, maxBody))
	if err != nil {
		return nil, &FetchError{Source: g.String(), Name: name, Err: fmt.Errorf("failed to read object: %w", err)}
	}
	logging.SourceDebug("read gs://%s/%s (%d bytes)", g.bucket, object, len(data))
	return data, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) String() string {
	if g.prefix == "" {
		return "gs://" + g.bucket
	}
	return "gs://" + g.bucket + "/" + g.prefix
}
