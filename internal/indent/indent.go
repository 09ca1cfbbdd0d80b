// Package indent derives the effective indentation settings for a document.
package indent

import (
	"fmt"

	"github.com/dshills/tabstop/internal/editor"
	"github.com/dshills/tabstop/internal/settings"
	"github.com/dshills/tabstop/internal/workspace"
)

// Kind is the indentation character class.
type Kind uint8

const (
	// KindSpace indents with spaces.
	KindSpace Kind = iota
	// KindTab indents with tab characters.
	KindTab
)

// String returns the display name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTab:
		return "Tab"
	default:
		return "Space"
	}
}

// IndentSize is a read-only snapshot of a document's effective indentation.
// It is recomputed on every active-document change.
type IndentSize struct {
	// Width is the indent width in columns.
	Width int
	// Kind is tab or space indentation.
	Kind Kind
}

// String renders the status-bar form, e.g. "Space: 4".
func (sz IndentSize) String() string {
	return fmt.Sprintf("%s: %d", sz.Kind, sz.Width)
}

// Style maps the kind to its editorconfig indent_style value.
func (sz IndentSize) Style() settings.IndentStyle {
	if sz.Kind == KindTab {
		return settings.StyleTab
	}
	return settings.StyleSpace
}

// ReadIndentSize resolves the effective indentation for a document from
// language and file settings. Documents without an associated language
// yield ok=false; per-file fallback is intentionally not attempted.
// No side effects.
func ReadIndentSize(doc *editor.Document, store *settings.Store) (IndentSize, bool) {
	if doc == nil {
		return IndentSize{}, false
	}

	language, ok := doc.Language()
	if !ok {
		return IndentSize{}, false
	}

	var worktree workspace.WorktreeID
	var path string
	if file, ok := doc.File(); ok {
		worktree = file.WorktreeID
		path = file.Path
	}

	resolved := store.Language(language, worktree, path)

	kind := KindSpace
	if resolved.HardTabs {
		kind = KindTab
	}
	return IndentSize{Width: resolved.TabSize, Kind: kind}, true
}
