package commands

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/maypok86/otter"
)

// Source yields a command dictionary snapshot.
type Source interface {
	Load() (*Store, error)
}

// FileSource reads the dictionary from Path on every Load.
type FileSource struct {
	Path string
}

func (f FileSource) Load() (*Store, error) {
	return LoadFile(f.Path)
}

// BytesSource parses an in-memory dictionary on every Load.
type BytesSource []byte

func (b BytesSource) Load() (*Store, error) {
	return Load(bytes.NewReader(b))
}

// StaticSource always returns the same store. A zero StaticSource has no
// store and fails to load.
type StaticSource struct {
	Store *Store
}

func (s StaticSource) Load() (*Store, error) {
	if s.Store == nil {
		return nil, &LoadError{Err: errNoStore}
	}
	return s.Store, nil
}

// cacheKey identifies one version of a dictionary file on disk.
type cacheKey struct {
	path    string
	modTime time.Time
	size    int64
}

// CachedSource parses dictionary files once per on-disk version. A file whose
// modification time or size changed is parsed again.
type CachedSource struct {
	cache otter.Cache[cacheKey, *Store]
}

// NewCachedSource creates a cache holding up to capacity parsed dictionaries.
func NewCachedSource(capacity int) (*CachedSource, error) {
	if capacity <= 0 {
		capacity = 16
	}
	cache, err := otter.MustBuilder[cacheKey, *Store](capacity).
		WithTTL(time.Hour).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build dictionary cache: %w", err)
	}
	return &CachedSource{cache: cache}, nil
}

// File returns a Source for path backed by this cache.
func (c *CachedSource) File(path string) Source {
	return cachedFile{cache: c, path: path}
}

// LoadFile returns the parsed dictionary at path, reusing a cached parse when
// the file is unchanged.
func (c *CachedSource) LoadFile(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	key := cacheKey{path: path, modTime: info.ModTime(), size: info.Size()}

	if s, ok := c.cache.Get(key); ok {
		return s, nil
	}

	s, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, s)
	return s, nil
}

// Close stops the cache's background maintenance.
func (c *CachedSource) Close() {
	c.cache.Close()
}

type cachedFile struct {
	cache *CachedSource
	path  string
}

func (f cachedFile) Load() (*Store, error) {
	return f.cache.LoadFile(f.path)
}
