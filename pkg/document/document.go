// Package document provides access to shader source files. A Workspace reads
// files from disk, lets unsaved editor buffers shadow them, and maps the
// paths users write in directives onto real files.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileSource reads the text of a shader file
type FileSource interface {
	ReadFile(ctx context.Context, path string) (string, error)
}

// PathMapper resolves a path written inside a file into a path FileSource
// can read
type PathMapper interface {
	MapUserPath(ctx context.Context, userPath, relativeTo string) (string, error)
}

// ReadError reports a file that could not be read
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ErrEmptyPath is returned when a directive names no file at all
var ErrEmptyPath = errors.New("empty path")

// Workspace is the default FileSource and PathMapper
type Workspace struct {
	root     string            // Folder ${workspaceFolder} expands to
	overlays map[string]string // Unsaved content by cleaned absolute path
	mappings map[string]string // User path prefixes and their replacements
	mu       sync.RWMutex
}

// NewWorkspace creates a workspace rooted at root
func NewWorkspace(root string) *Workspace {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Workspace{
		root:     root,
		overlays: make(map[string]string),
		mappings: make(map[string]string),
	}
}

// Root returns the workspace folder
func (w *Workspace) Root() string {
	return w.root
}

// Overlay Methods

// Open makes content the text of path until Close is called
func (w *Workspace) Open(path, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.overlays[w.key(path)] = content
}

// Close drops the overlay for path
func (w *Workspace) Close(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.overlays, w.key(path))
}

// IsOpen reports whether path has an overlay
func (w *Workspace) IsOpen(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.overlays[w.key(path)]
	return ok
}

// ReadFile returns the overlay for path if one is open, the file on disk
// otherwise
func (w *Workspace) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.RLock()
	content, ok := w.overlays[w.key(path)]
	w.mu.RUnlock()
	if ok {
		return content, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	return string(data), nil
}

// Path Mapping Methods

// SetMapping rewrites user paths starting with prefix to start with target
func (w *Workspace) SetMapping(prefix, target string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mappings[prefix] = target
}

// MapUserPath resolves userPath as written in the file relativeTo. It strips
// file://, expands ~ and ${workspaceFolder}, applies prefix mappings (longest
// prefix first) and finally resolves relative paths against the directory of
// relativeTo.
func (w *Workspace) MapUserPath(ctx context.Context, userPath, relativeTo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p := strings.TrimSpace(userPath)
	p = strings.TrimPrefix(p, "file://")
	if p == "" {
		return "", ErrEmptyPath
	}

	p = w.applyMappings(p)
	p = strings.ReplaceAll(p, "${workspaceFolder}", w.root)

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %s: %w", userPath, err)
		}
		p = filepath.Join(home, p[1:])
	}

	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		base := w.root
		if relativeTo != "" {
			base = filepath.Dir(relativeTo)
		}
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p), nil
}

func (w *Workspace) applyMappings(p string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	prefixes := make([]string, 0, len(w.mappings))
	for prefix := range w.mappings {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	for _, prefix := range prefixes {
		if strings.HasPrefix(p, prefix) {
			return w.mappings[prefix] + p[len(prefix):]
		}
	}
	return p
}

// key normalizes a path for the overlay table
func (w *Workspace) key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
