// Package blobref hands out temporary object references for in-memory results,
// the terminal counterpart of a browser blob URL. Every reference is backed by a
// temp file and stays valid until it is released.
package blobref

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/webtoolkit/convkit/internal/utils"
)

const URLScheme = "blob:convkit/"

var (
	ErrReleased       = errors.New("blobref: reference released")
	ErrRegistryClosed = errors.New("blobref: registry closed")
)

// Ref is a temporary handle to result bytes.
type Ref struct {
	ID       string
	URL      string
	Name     string
	MIMEType string
	Size     int64
	Path     string

	released atomic.Bool
}

// Released reports whether the reference has been given back to its registry.
func (r *Ref) Released() bool {
	return r.released.Load()
}

func (r *Ref) Open() (io.ReadCloser, error) {
	if r.Released() {
		return nil, ErrReleased
	}
	return os.Open(r.Path)
}

func (r *Ref) Bytes() ([]byte, error) {
	if r.Released() {
		return nil, ErrReleased
	}
	return os.ReadFile(r.Path)
}

// SaveTo copies the blob into dir. An empty name falls back to Ref.Name.
// Existing files are never overwritten; the final path is returned.
func (r *Ref) SaveTo(dir, name string) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" {
		name = filepath.Base(r.Name)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("blobref: save %s: %w", r.URL, err)
	}

	src, err := r.Open()
	if err != nil {
		return "", fmt.Errorf("blobref: save %s: %w", r.URL, err)
	}
	defer src.Close()

	dst := utils.UniquePath(filepath.Join(dir, name))
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("blobref: save %s: %w", r.URL, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("blobref: save %s: %w", r.URL, err)
	}
	return dst, out.Close()
}

// Registry owns a set of references and the directory backing them.
type Registry struct {
	dir     string
	ownsDir bool

	mu     sync.Mutex
	refs   map[string]*Ref
	timers map[string]*time.Timer
	closed bool
}

// NewRegistry creates a registry under dir. An empty dir creates a private temp
// directory that is removed on Close.
func NewRegistry(dir string) (*Registry, error) {
	owns := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "convkit-blobs-")
		if err != nil {
			return nil, fmt.Errorf("blobref: create dir: %w", err)
		}
		dir, owns = tmp, true
	} else if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("blobref: create dir: %w", err)
	}

	return &Registry{
		dir:     dir,
		ownsDir: owns,
		refs:    make(map[string]*Ref),
		timers:  make(map[string]*time.Timer),
	}, nil
}

func (r *Registry) Dir() string {
	return r.dir
}

// Acquire stores data and returns a new reference to it.
func (r *Registry) Acquire(data []byte, mimeType, name string) (*Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}

	id := uuid.NewString()
	path := filepath.Join(r.dir, id+filepath.Ext(name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("blobref: acquire: %w", err)
	}

	ref := &Ref{
		ID:       id,
		URL:      URLScheme + id,
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(data)),
		Path:     path,
	}
	r.refs[id] = ref

	slog.Debug("blobref acquire", "url", ref.URL, "name", name, "size", ref.Size)
	return ref, nil
}

// Duplicate issues an independent reference to the same bytes as ref.
func (r *Registry) Duplicate(ref *Ref) (*Ref, error) {
	data, err := ref.Bytes()
	if err != nil {
		return nil, err
	}
	return r.Acquire(data, ref.MIMEType, ref.Name)
}

// Lookup resolves a blob URL issued by this registry.
func (r *Registry) Lookup(url string) (*Ref, bool) {
	if len(url) <= len(URLScheme) || url[:len(URLScheme)] != URLScheme {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.refs[url[len(URLScheme):]]
	return ref, ok
}

// Release invalidates ref and deletes its backing file. Releasing nil or an
// already released reference does nothing.
func (r *Registry) Release(ref *Ref) {
	if ref == nil || !ref.released.CompareAndSwap(false, true) {
		return
	}

	r.mu.Lock()
	delete(r.refs, ref.ID)
	if t, ok := r.timers[ref.ID]; ok {
		t.Stop()
		delete(r.timers, ref.ID)
	}
	r.mu.Unlock()

	if err := os.Remove(ref.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("blobref release", "url", ref.URL, "error", err)
	}
	slog.Debug("blobref release", "url", ref.URL)
}

// ReleaseAfter schedules Release once d has elapsed.
func (r *Registry) ReleaseAfter(ref *Ref, d time.Duration) {
	if ref == nil || ref.Released() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if t, ok := r.timers[ref.ID]; ok {
		t.Stop()
	}
	r.timers[ref.ID] = time.AfterFunc(d, func() { r.Release(ref) })
}

// Outstanding returns the number of live references.
func (r *Registry) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refs)
}

// Close releases every outstanding reference. Further Acquire calls fail.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	refs := make([]*Ref, 0, len(r.refs))
	for _, ref := range r.refs {
		refs = append(refs, ref)
	}
	r.mu.Unlock()

	for _, ref := range refs {
		r.Release(ref)
	}

	if r.ownsDir {
		return os.RemoveAll(r.dir)
	}
	return nil
}
