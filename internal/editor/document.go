// Package editor provides document handles for the indentation indicator
// and selector. Documents are owned by a Registry and addressed by
// non-owning IDs; a stale ID resolves to absent, never to a crash.
package editor

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/tabstop/internal/workspace"
)

// DocumentID is a non-owning handle to a document.
type DocumentID string

// newDocumentID returns a fresh unique document handle.
func newDocumentID() DocumentID {
	return DocumentID(uuid.NewString())
}

// File identifies a document's backing file for settings scoping.
type File struct {
	// WorktreeID is the owning worktree.
	WorktreeID workspace.WorktreeID
	// Path is the workspace-relative path, using forward slashes.
	Path string
}

// Document is an open buffer with optional file identity and optional
// associated language.
type Document struct {
	mu       sync.RWMutex
	id       DocumentID
	absPath  string
	file     *File
	language string
}

// ID returns the document's handle.
func (d *Document) ID() DocumentID {
	return d.id
}

// AbsPath returns the document's absolute path, or "" for scratch buffers.
func (d *Document) AbsPath() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.absPath
}

// File returns the document's file identity. ok is false for scratch
// buffers and files outside every worktree.
func (d *Document) File() (File, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.file == nil {
		return File{}, false
	}
	return *d.file, true
}

// Language returns the document's associated language name. ok is false
// for unidentified or plain files.
func (d *Document) Language() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.language == "" {
		return "", false
	}
	return d.language, true
}

// SetLanguage overrides the document's associated language. An empty name
// dissociates the document from any language.
func (d *Document) SetLanguage(name string) {
	d.mu.Lock()
	d.language = name
	d.mu.Unlock()
}

// languagesByExtension maps file extensions to language names. Files with
// no entry here have no associated language, and indentation settings
// resolution skips them entirely.
var languagesByExtension = map[string]string{
	".go":   "Go",
	".rs":   "Rust",
	".py":   "Python",
	".rb":   "Ruby",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TSX",
	".jsx":  "JSX",
	".c":    "C",
	".h":    "C",
	".cpp":  "C++",
	".hpp":  "C++",
	".java": "Java",
	".lua":  "Lua",
	".sh":   "Shell",
	".toml": "TOML",
	".yaml": "YAML",
	".yml":  "YAML",
	".json": "JSON",
	".md":   "Markdown",
	".html": "HTML",
	".css":  "CSS",
}

// DetectLanguage resolves a language name from a file path's extension.
func DetectLanguage(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := languagesByExtension[ext]
	return lang, ok
}
