// Package fs implements the artifact store on the local filesystem. Keys
// map to relative paths under the root; content types are derived from the
// file extension on read.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	blob "fieldsampler/internal/blob/core"
)

// Compile-time contract assertion.
var _ blob.Store = (*Store)(nil)

// Store is a filesystem-backed artifact store rooted at a directory.
type Store struct {
	root string
}

// New returns a store rooted at path, creating the directory if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./artifacts"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &Store{root: root}, nil
}

// Driver returns the backend identifier.
func (s *Store) Driver() blob.Driver { return blob.DriverFilesystem }

func (s *Store) pathFor(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Put stores a new artifact; it fails if the key already exists.
func (s *Store) Put(_ context.Context, key string, r io.Reader, _ blob.PutOptions) (blob.Info, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return blob.Info{}, fmt.Errorf("create dirs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return blob.Info{}, fmt.Errorf("artifact %s already exists", key)
		}
		return blob.Info{}, err
	}
	n, err := io.Copy(f, r)
	if cErr := f.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		_ = os.Remove(path)
		return blob.Info{}, fmt.Errorf("write artifact %s: %w", key, err)
	}
	return s.statInfo(key, path, n)
}

// Get returns artifact metadata and a reader over its content.
func (s *Store) Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	path, _ := s.pathFor(key)
	f, err := os.Open(path)
	if err != nil {
		return blob.Info{}, nil, err
	}
	return info, f, nil
}

// Head returns artifact metadata.
func (s *Store) Head(_ context.Context, key string) (blob.Info, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, err
	}
	return s.statInfo(key, path, -1)
}

// Delete removes the artifact, reporting whether it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns artifacts whose keys start with prefix, sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]blob.Info, error) {
	var infos []blob.Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := s.statInfo(key, path, -1)
		if err != nil {
			return err
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) statInfo(key, path string, size int64) (blob.Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return blob.Info{}, blob.ErrNotFound
		}
		return blob.Info{}, err
	}
	if size < 0 {
		size = st.Size()
	}
	return blob.Info{
		Key:          key,
		Size:         size,
		ContentType:  mime.TypeByExtension(filepath.Ext(path)),
		LastModified: st.ModTime().UTC(),
	}, nil
}
