// Package assets resolves map documents and images from layered roots:
// directories, fs.FS values and zip packs.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/Faultbox/tilemap/internal/logger"
)

// source is one searchable root.
type source interface {
	ReadFile(name string) ([]byte, error)
	Close() error
	String() string
}

// Manager looks files up across its roots and caches what it reads. Roots
// are searched in reverse order (last added = highest priority). Manager
// implements fs.FS and fs.ReadFileFS, so it can be passed to tmx.ParseFS.
type Manager struct {
	sources []source
	cache   *Cache
	log     *zap.Logger
	mu      sync.RWMutex
}

// NewManager creates an empty asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// AddRoot adds a directory or, for any other file, a zip pack.
func (m *Manager) AddRoot(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("adding root %s: %w", p, err)
	}
	if info.IsDir() {
		m.AddFS(p, os.DirFS(p))
		return nil
	}
	return m.AddArchive(p)
}

// AddFS adds fsys as a root. label names it in logs.
func (m *Manager) AddFS(label string, fsys fs.FS) {
	m.add(&fsSource{label: label, fsys: fsys})
}

// AddArchive opens a zip pack and adds it as a root.
func (m *Manager) AddArchive(p string) error {
	rc, err := zip.OpenReader(p)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", p, err)
	}

	src := &zipSource{label: p, rc: rc, files: make(map[string]*zip.File, len(rc.File))}
	for _, f := range rc.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		src.files[path.Clean(strings.TrimPrefix(f.Name, "/"))] = f
	}
	m.add(src)
	return nil
}

func (m *Manager) add(src source) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
	m.log.Debug("root added", zap.Stringer("root", src))
}

// ReadFile returns the contents of name from the highest-priority root that
// has it. Names use forward slashes and must satisfy fs.ValidPath.
func (m *Manager) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := m.sources[i].ReadFile(name)
		if err == nil {
			m.log.Debug("resolved", zap.String("name", name), zap.Stringer("root", m.sources[i]))
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s from %s: %w", name, m.sources[i], err)
		}
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Open implements fs.FS. The returned file is an in-memory copy.
func (m *Manager) Open(name string) (fs.File, error) {
	data, err := m.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &memFile{Reader: bytes.NewReader(data), name: path.Base(name), size: int64(len(data))}, nil
}

// Invalidate drops name from the cache so the next read hits the roots.
func (m *Manager) Invalidate(name string) {
	m.cache.Delete(name)
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close closes all roots.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, src := range m.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.sources = nil
	m.cache.Clear()
	return errors.Join(errs...)
}

type fsSource struct {
	label string
	fsys  fs.FS
}

func (s *fsSource) ReadFile(name string) ([]byte, error) { return fs.ReadFile(s.fsys, name) }
func (s *fsSource) Close() error                         { return nil }
func (s *fsSource) String() string                       { return s.label }

type zipSource struct {
	label string
	rc    *zip.ReadCloser
	files map[string]*zip.File
}

func (s *zipSource) ReadFile(name string) ([]byte, error) {
	f, ok := s.files[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *zipSource) Close() error   { return s.rc.Close() }
func (s *zipSource) String() string { return s.label }

// memFile serves cached bytes through fs.File.
type memFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *memFile) Close() error               { return nil }

func (f *memFile) Name() string       { return f.name }
func (f *memFile) Size() int64        { return f.size }
func (f *memFile) Mode() fs.FileMode  { return 0444 }
func (f *memFile) ModTime() time.Time { return time.Time{} }
func (f *memFile) IsDir() bool        { return false }
func (f *memFile) Sys() any           { return nil }

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
