package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalFrameStore reads frames from a directory on disk.
type LocalFrameStore struct {
	root     string
	maxBytes int64
}

func NewLocalFrameStore(root string, maxBytes int64) (*LocalFrameStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve frame directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("frame directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frame directory %s is not a directory", abs)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve frame directory: %w", err)
	}
	return &LocalFrameStore{root: real, maxBytes: maxBytes}, nil
}

// FetchFrame reads ref, a file:// URL or a slash separated name relative to
// the store root. References resolving outside the root are rejected.
func (s *LocalFrameStore) FetchFrame(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFrameNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat frame: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidReference, ref)
	}
	if info.Size() > s.maxBytes {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrFrameTooLarge, s.maxBytes)
	}

	return readLimited(f, s.maxBytes)
}

func (s *LocalFrameStore) resolve(ref string) (string, error) {
	name := strings.TrimSpace(ref)
	if name == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}

	if strings.HasPrefix(name, "file://") {
		u, err := url.Parse(name)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		name = u.Path
	}

	var path string
	if filepath.IsAbs(filepath.FromSlash(name)) {
		path = filepath.Clean(filepath.FromSlash(name))
	} else {
		path = filepath.Join(s.root, filepath.FromSlash(name))
	}

	// Symlinks are followed before the containment check so a link inside
	// the root cannot point outside it. Missing files keep the lexical path.
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes the frame directory", ErrInvalidReference, ref)
	}
	return path, nil
}
