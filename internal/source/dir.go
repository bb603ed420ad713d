package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sentencecards/internal/logging"
)

// Dir reads content from a local directory.
type Dir struct {
	root string
	fsys fs.FS
}

// NewDir opens root, which must be an existing directory.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", abs)
	}
	return &Dir{root: abs, fsys: os.DirFS(abs)}, nil
}

// Root returns the absolute directory path.
func (d *Dir) Root() string {
	return d.root
}

// Fetch reads name from the directory.
func (d *Dir) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: d.String(), Name: name, Err: err}
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, &FetchError{Source: d.String(), Name: name, Err: err}
	}
	data, err := fs.ReadFile(d.fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, &FetchError{Source: d.String(), Name: name, Err: err}
	}
	logging.SourceDebug("read %s (%d bytes) from %s", clean, len(data), d.root)
	return data, nil
}

func (d *Dir) String() string {
	return "dir:" + d.root
}
