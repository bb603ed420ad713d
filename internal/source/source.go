// Package source fetches site content (the group index, sentence files and audio
// assets) from a local directory, an HTTP(S) base URL or a Cloud Storage prefix.
package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Well-known content paths, relative to the content root.
const (
	IndexPath     = "groups.json"
	GroupsDir     = "groups"
	SentencesFile = "sentences.csv"
)

// ErrNotFound is wrapped by fetch errors for content that does not exist.
var ErrNotFound = errors.New("not found")

// Source fetches named content relative to a root.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	String() string
}

// FetchError reports a failed fetch. It wraps the underlying error so
// errors.Is(err, ErrNotFound) works through it.
type FetchError struct {
	Source string
	Name   string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Name, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Open picks a backend from the form of root: gs://bucket/prefix uses Cloud
// Storage, http:// and https:// use HTTP, anything else is a local directory.
func Open(ctx context.Context, root string) (Source, error) {
	switch {
	case strings.HasPrefix(root, "gs://"):
		return NewGCS(ctx, root)
	case strings.HasPrefix(root, "http://"), strings.HasPrefix(root, "https://"):
		return NewHTTP(root, nil)
	case root == "":
		return nil, fmt.Errorf("empty content root")
	}
	return NewDir(root)
}

// SentencesPath is the sentence file of a group.
func SentencesPath(groupID string) string {
	return path.Join(GroupsDir, groupID, SentencesFile)
}

// AudioPath is an audio asset of a group.
func AudioPath(groupID, file string) string {
	return path.Join(GroupsDir, groupID, file)
}

// cleanName validates a slash-separated content name.
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid content name %q", name)
	}
	return clean, nil
}
