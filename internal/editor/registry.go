package editor

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/dshills/tabstop/internal/workspace"
)

// Common errors.
var (
	ErrDocumentNotFound = errors.New("document not found")
)

// Registry owns all open documents and tracks which one is active.
type Registry struct {
	mu        sync.RWMutex
	ws        *workspace.Workspace
	documents map[DocumentID]*Document
	active    DocumentID

	onActiveChange []func(*Document)
}

// NewRegistry creates a registry resolving file identities against the
// given workspace.
func NewRegistry(ws *workspace.Workspace) *Registry {
	return &Registry{
		ws:        ws,
		documents: make(map[DocumentID]*Document),
	}
}

// Open registers a document for the given path. The language is detected
// from the extension; file identity is resolved against the workspace and
// left absent for paths outside every worktree.
func (r *Registry) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		id:      newDocumentID(),
		absPath: absPath,
	}

	if id, rel, err := r.ws.RelativePath(absPath); err == nil {
		doc.file = &File{WorktreeID: id, Path: rel}
	}
	if lang, ok := DetectLanguage(absPath); ok {
		doc.language = lang
	}

	r.mu.Lock()
	r.documents[doc.id] = doc
	r.mu.Unlock()

	return doc, nil
}

// OpenScratch registers a document with no backing file and no language.
func (r *Registry) OpenScratch() *Document {
	doc := &Document{id: newDocumentID()}

	r.mu.Lock()
	r.documents[doc.id] = doc
	r.mu.Unlock()

	return doc
}

// Get resolves a document handle. A stale or unknown handle reports absent.
func (r *Registry) Get(id DocumentID) (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[id]
	return doc, ok
}

// Close removes a document. If it was active, the active document becomes
// none and listeners are notified with nil.
func (r *Registry) Close(id DocumentID) error {
	r.mu.Lock()
	if _, ok := r.documents[id]; !ok {
		r.mu.Unlock()
		return ErrDocumentNotFound
	}
	delete(r.documents, id)

	wasActive := r.active == id
	if wasActive {
		r.active = ""
	}
	callbacks := r.copyActiveCallbacks()
	r.mu.Unlock()

	if wasActive {
		for _, cb := range callbacks {
			cb(nil)
		}
	}
	return nil
}

// SetActive marks the document as the active one and notifies listeners.
func (r *Registry) SetActive(id DocumentID) error {
	r.mu.Lock()
	doc, ok := r.documents[id]
	if !ok {
		r.mu.Unlock()
		return ErrDocumentNotFound
	}
	r.active = id
	callbacks := r.copyActiveCallbacks()
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb(doc)
	}
	return nil
}

// ActiveDocument returns the currently active document, if any.
func (r *Registry) ActiveDocument() (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == "" {
		return nil, false
	}
	doc, ok := r.documents[r.active]
	return doc, ok
}

// OnActiveChange registers a callback invoked whenever the active document
// changes. The callback receives nil when no document remains active.
func (r *Registry) OnActiveChange(fn func(*Document)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onActiveChange = append(r.onActiveChange, fn)
}

// copyActiveCallbacks snapshots callbacks under the lock so notification
// happens outside it.
func (r *Registry) copyActiveCallbacks() []func(*Document) {
	callbacks := make([]func(*Document), len(r.onActiveChange))
	copy(callbacks, r.onActiveChange)
	return callbacks
}
