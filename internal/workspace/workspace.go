// Package workspace manages the worktrees (root directory boundaries)
// under which path-scoped settings are resolved.
package workspace

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

// Common errors.
var (
	ErrNoWorktrees      = errors.New("workspace has no worktrees")
	ErrWorktreeNotFound = errors.New("worktree not found in workspace")
	ErrWorktreeExists   = errors.New("worktree already in workspace")
	ErrInvalidPath      = errors.New("invalid worktree path")
	ErrWorkspaceClosed  = errors.New("workspace is closed")
)

// WorktreeID identifies a worktree within a workspace. IDs are stable for
// the lifetime of the workspace and are never reused after removal.
type WorktreeID int64

// Worktree represents a single root directory in the workspace.
type Worktree struct {
	// ID is the stable identifier for this worktree.
	ID WorktreeID
	// Path is the absolute local file system path of the root.
	Path string
	// Name is the display name for the worktree.
	Name string
	// URI is the root path as a file:// URI.
	URI string
}

// Workspace is a collection of worktrees being edited. It supports both
// single-root and multi-root layouts.
type Workspace struct {
	mu        sync.RWMutex
	worktrees []Worktree
	nextID    WorktreeID
	closed    bool

	onAdd    []func(Worktree)
	onRemove []func(Worktree)
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{nextID: 1}
}

// NewFromPaths creates a workspace rooted at the given paths.
func NewFromPaths(paths ...string) (*Workspace, error) {
	if len(paths) == 0 {
		return nil, ErrNoWorktrees
	}

	ws := New()
	for _, path := range paths {
		if _, err := ws.AddWorktree(path); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// Close closes the workspace. Further mutations fail with ErrWorkspaceClosed.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.worktrees = nil
}

// IsClosed returns whether the workspace is closed.
func (w *Workspace) IsClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}

// AddWorktree adds a root directory and returns the registered worktree.
func (w *Workspace) AddWorktree(path string) (Worktree, error) {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return Worktree{}, ErrWorkspaceClosed
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		w.mu.Unlock()
		return Worktree{}, err
	}

	for _, tree := range w.worktrees {
		if tree.Path == absPath {
			w.mu.Unlock()
			return Worktree{}, ErrWorktreeExists
		}
	}

	tree := Worktree{
		ID:   w.nextID,
		Path: absPath,
		Name: filepath.Base(absPath),
		URI:  PathToURI(absPath),
	}
	w.nextID++
	w.worktrees = append(w.worktrees, tree)

	callbacks := make([]func(Worktree), len(w.onAdd))
	copy(callbacks, w.onAdd)
	w.mu.Unlock()

	// Notify listeners outside the lock.
	for _, cb := range callbacks {
		cb(tree)
	}
	return tree, nil
}

// RemoveWorktree removes the worktree with the given ID.
func (w *Workspace) RemoveWorktree(id WorktreeID) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return ErrWorkspaceClosed
	}

	idx := -1
	var removed Worktree
	for i, tree := range w.worktrees {
		if tree.ID == id {
			idx = i
			removed = tree
			break
		}
	}
	if idx == -1 {
		w.mu.Unlock()
		return ErrWorktreeNotFound
	}

	w.worktrees = append(w.worktrees[:idx], w.worktrees[idx+1:]...)

	callbacks := make([]func(Worktree), len(w.onRemove))
	copy(callbacks, w.onRemove)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(removed)
	}
	return nil
}

// Worktree returns the worktree with the given ID.
func (w *Workspace) Worktree(id WorktreeID) (Worktree, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, tree := range w.worktrees {
		if tree.ID == id {
			return tree, true
		}
	}
	return Worktree{}, false
}

// Worktrees returns all registered worktrees.
func (w *Workspace) Worktrees() []Worktree {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]Worktree, len(w.worktrees))
	copy(result, w.worktrees)
	return result
}

// Root returns the primary worktree root path. For multi-root workspaces
// this is the first worktree.
func (w *Workspace) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(w.worktrees) == 0 {
		return ""
	}
	return w.worktrees[0].Path
}

// IsMultiRoot returns true if the workspace has more than one worktree.
func (w *Workspace) IsMultiRoot() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.worktrees) > 1
}

// ContainingWorktree returns the worktree whose root contains the given path.
func (w *Workspace) ContainingWorktree(path string) (Worktree, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Worktree{}, false
	}

	for _, tree := range w.worktrees {
		if isSubPath(tree.Path, absPath) {
			return tree, true
		}
	}
	return Worktree{}, false
}

// RelativePath resolves a path to its containing worktree and the path
// relative to that worktree's root, using forward slashes.
func (w *Workspace) RelativePath(path string) (WorktreeID, string, error) {
	tree, ok := w.ContainingWorktree(path)
	if !ok {
		return 0, "", ErrWorktreeNotFound
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, "", err
	}

	rel, err := filepath.Rel(tree.Path, absPath)
	if err != nil {
		return 0, "", err
	}
	return tree.ID, filepath.ToSlash(rel), nil
}

// OnWorktreeAdd registers a callback for when a worktree is added.
func (w *Workspace) OnWorktreeAdd(fn func(Worktree)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onAdd = append(w.onAdd, fn)
}

// OnWorktreeRemove registers a callback for when a worktree is removed.
func (w *Workspace) OnWorktreeRemove(fn func(Worktree)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onRemove = append(w.onRemove, fn)
}

// PathToURI converts a file path to a file:// URI.
func PathToURI(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	absPath = filepath.ToSlash(absPath)

	u := url.URL{
		Scheme: "file",
		Path:   absPath,
	}
	return u.String()
}

// URIToPath converts a file:// URI to a file path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}

	if u.Scheme != "file" {
		return "", ErrInvalidPath
	}

	decodedPath, err := url.PathUnescape(u.Path)
	if err != nil {
		return "", err
	}

	path := filepath.FromSlash(decodedPath)

	// On Windows, remove leading slash if path starts with drive letter.
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}

	return path, nil
}

// isSubPath checks if child is equal to or beneath parent.
func isSubPath(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)

	if child == parent {
		return true
	}

	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(child, parent)
}
