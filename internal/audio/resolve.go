package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sentencecards/internal/sentences"
	"sentencecards/internal/source"
)

// DirResolver finds recordings in a local group directory.
type DirResolver struct {
	Dir   string
	Files map[sentences.Level]string
}

// Locate returns the recording path for level if the file exists.
func (r DirResolver) Locate(ctx context.Context, level sentences.Level) (string, error) {
	name, ok := r.Files[level]
	if !ok || name == "" {
		return "", fmt.Errorf("%w %s", ErrNoAudio, level)
	}
	p := filepath.Join(r.Dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}

// FetchResolver downloads a group's recordings from a content source into a
// temporary directory the first time each level is played.
type FetchResolver struct {
	Source  source.Source
	GroupID string
	Files   map[sentences.Level]string

	mu    sync.Mutex
	tmp   string
	local map[sentences.Level]string
}

// Locate fetches the level's recording if needed and returns its local path.
func (r *FetchResolver) Locate(ctx context.Context, level sentences.Level) (string, error) {
	name, ok := r.Files[level]
	if !ok || name == "" {
		return "", fmt.Errorf("%w %s", ErrNoAudio, level)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.local[level]; ok {
		return p, nil
	}
	data, err := r.Source.Fetch(ctx, source.AudioPath(r.GroupID, name))
	if err != nil {
		return "", err
	}
	if r.tmp == "" {
		dir, err := os.MkdirTemp("", "cards-audio-*")
		if err != nil {
			return "", fmt.Errorf("failed to create audio temp dir: %w", err)
		}
		r.tmp = dir
		r.local = make(map[sentences.Level]string)
	}
	p := filepath.Join(r.tmp, filepath.Base(name))
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	r.local[level] = p
	return p, nil
}

// Close removes downloaded recordings.
func (r *FetchResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tmp == "" {
		return nil
	}
	err := os.RemoveAll(r.tmp)
	r.tmp = ""
	r.local = nil
	return err
}

// NewResolver picks a DirResolver for local content and a FetchResolver
// otherwise.
func NewResolver(src source.Source, groupID string, files map[sentences.Level]string) Resolver {
	if d, ok := src.(*source.Dir); ok {
		return DirResolver{Dir: filepath.Join(d.Root(), filepath.FromSlash(source.AudioPath(groupID, ""))), Files: files}
	}
	return &FetchResolver{Source: src, GroupID: groupID, Files: files}
}

// GroupResolver resolves recordings of whichever group Current names, keeping
// one resolver per group visited.
type GroupResolver struct {
	Source  source.Source
	Files   map[sentences.Level]string
	Current func() string

	mu   sync.Mutex
	byID map[string]Resolver
}

// Locate implements Resolver.
func (r *GroupResolver) Locate(ctx context.Context, level sentences.Level) (string, error) {
	id := r.Current()
	r.mu.Lock()
	res, ok := r.byID[id]
	if !ok {
		if r.byID == nil {
			r.byID = make(map[string]Resolver)
		}
		res = NewResolver(r.Source, id, r.Files)
		r.byID[id] = res
	}
	r.mu.Unlock()
	return res.Locate(ctx, level)
}

// Close removes any downloaded recordings.
func (r *GroupResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, res := range r.byID {
		if c, ok := res.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	r.byID = nil
	return errors.Join(errs...)
}
