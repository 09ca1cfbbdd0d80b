// Package statusbar provides the indentation status item: a small
// click-to-open indicator showing the active document's effective
// indentation.
package statusbar

import (
	"sync"

	"github.com/dshills/tabstop/internal/editor"
	"github.com/dshills/tabstop/internal/indent"
	"github.com/dshills/tabstop/internal/settings"
)

// Indentation is the status-bar slot content. It holds non-owning
// references to its collaborators and recomputes its snapshot on every
// active-document change.
type Indentation struct {
	mu       sync.RWMutex
	registry *editor.Registry
	store    *settings.Store

	size    indent.IndentSize
	visible bool

	onToggle func()
	onUpdate []func()
}

// NewIndentation creates the status item and subscribes it to
// active-document and settings changes. onToggle opens the selector when
// the item is clicked.
func NewIndentation(registry *editor.Registry, store *settings.Store, onToggle func()) *Indentation {
	item := &Indentation{
		registry: registry,
		store:    store,
		onToggle: onToggle,
	}

	registry.OnActiveChange(func(doc *editor.Document) {
		item.refresh(doc)
	})
	store.OnChange(func() {
		doc, _ := registry.ActiveDocument()
		item.refresh(doc)
	})

	if doc, ok := registry.ActiveDocument(); ok {
		item.refresh(doc)
	}
	return item
}

// refresh recomputes the indentation snapshot for the given document.
// A nil document, or one with no associated language, hides the item.
func (item *Indentation) refresh(doc *editor.Document) {
	size, ok := indent.ReadIndentSize(doc, item.store)

	item.mu.Lock()
	item.size = size
	item.visible = ok
	callbacks := make([]func(), len(item.onUpdate))
	copy(callbacks, item.onUpdate)
	item.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Text returns the indicator text, e.g. "Space: 4". ok is false when the
// item should not be shown.
func (item *Indentation) Text() (string, bool) {
	item.mu.RLock()
	defer item.mu.RUnlock()

	if !item.visible {
		return "", false
	}
	return item.size.String(), true
}

// IndentSize returns the current snapshot. ok mirrors Text.
func (item *Indentation) IndentSize() (indent.IndentSize, bool) {
	item.mu.RLock()
	defer item.mu.RUnlock()
	return item.size, item.visible
}

// Tooltip is the hover text for the click target.
func (item *Indentation) Tooltip() string {
	return "Set Indentation"
}

// Click invokes the selector toggle. Hidden items ignore clicks.
func (item *Indentation) Click() {
	item.mu.RLock()
	visible := item.visible
	toggle := item.onToggle
	item.mu.RUnlock()

	if visible && toggle != nil {
		toggle()
	}
}

// OnUpdate registers a callback invoked after the snapshot changes, so the
// host UI can re-render the slot.
func (item *Indentation) OnUpdate(fn func()) {
	item.mu.Lock()
	defer item.mu.Unlock()
	item.onUpdate = append(item.onUpdate, fn)
}
