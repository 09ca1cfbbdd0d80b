package selector

import (
	"github.com/dshills/tabstop/internal/editor"
	"github.com/dshills/tabstop/internal/log"
	"github.com/dshills/tabstop/internal/settings"
)

// Writer persists indentation choices as path-scoped local overrides.
type Writer struct {
	store  *settings.Store
	logger *log.Logger
}

// NewWriter creates a writer against the given store.
func NewWriter(store *settings.Store, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Null
	}
	return &Writer{store: store, logger: logger}
}

// WriteWidthOverride installs an override for the file and everything
// beneath it (/**) setting indent_size, indent_style=space, and tab_width
// to the chosen width.
func (w *Writer) WriteWidthOverride(file editor.File, width int) error {
	content := settings.WidthOverrideContent(width)
	return w.store.SetLocalSettings(file.WorktreeID, file.Path, settings.KindEditorconfig, &content)
}

// WriteStyleOverride installs an override flipping indent_style while
// preserving the current width.
func (w *Writer) WriteStyleOverride(file editor.File, style settings.IndentStyle, width int) error {
	content := settings.StyleOverrideContent(style, width)
	return w.store.SetLocalSettings(file.WorktreeID, file.Path, settings.KindEditorconfig, &content)
}
