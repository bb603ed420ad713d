package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"sentencecards/internal/logging"
	"sentencecards/internal/source"
)

// Uploader stores one object.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) error
}

// GCSUploader writes objects to a Cloud Storage bucket.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

// NewGCSUploader opens a storage client for bucket.
func NewGCSUploader(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSUploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no bucket configured")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket}, nil
}

// Upload implements Uploader.
func (u *GCSUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) error {
	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if strings.HasPrefix(contentType, "text/html") {
		w.CacheControl = "no-cache"
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload gs://%s/%s: %w", u.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", u.bucket, name, err)
	}
	return nil
}

// Close releases the storage client.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// Publisher uploads a built site.
type Publisher struct {
	Uploader    Uploader
	Prefix      string
	Concurrency int
}

// ContentType picks the content type for a file name.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".json":
		return "application/json"
	case ".mp3":
		return "audio/mpeg"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Publish uploads every file under dir and returns how many were uploaded.
func (p *Publisher) Publish(ctx context.Context, dir string) (int, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	timer := logging.StartTimer(logging.CategoryPublish, "publish")
	defer timer.Stop()
	logging.Publish("uploading %d files from %s", len(files), dir)

	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var uploaded atomic.Int64
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for _, file := range files {
		file := file
		eg.Go(func() error {
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return err
			}
			name := p.objectName(rel)
			if err := p.uploadFile(gctx, file, name); err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			uploaded.Add(1)
			logging.Get(logging.CategoryPublish).Debug("uploaded %s", name)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(uploaded.Load()), err
	}
	logging.Publish("uploaded %d files", uploaded.Load())
	return int(uploaded.Load()), nil
}

func (p *Publisher) objectName(rel string) string {
	rel = filepath.ToSlash(rel)
	prefix := strings.Trim(p.Prefix, "/")
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}

func (p *Publisher) uploadFile(ctx context.Context, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Uploader.Upload(ctx, name, ContentType(name), f)
}

// PublishTarget splits a gs://bucket/prefix URL. A bare bucket name is
// accepted too.
func PublishTarget(target string) (bucket, prefix string, err error) {
	if strings.HasPrefix(target, "gs://") {
		return source.ParseGCSURL(target)
	}
	bucket, prefix, _ = strings.Cut(target, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in %q", target)
	}
	return bucket, prefix, nil
}
