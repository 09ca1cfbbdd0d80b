// Package settings implements the layered settings store tabstop reads
// indentation settings from and writes path-scoped overrides into.
//
// Resolution order, lowest to highest: builtin defaults, user global
// configuration, per-language overrides, path-scoped local overrides.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/tabstop/internal/log"
	"github.com/dshills/tabstop/internal/workspace"
)

// Common errors.
var (
	ErrEmptyPath   = errors.New("local settings path cannot be empty")
	ErrUnknownKind = errors.New("unknown local settings kind")
)

// LanguageSettings is the effective indentation configuration for a
// document, after all layers are applied.
type LanguageSettings struct {
	// TabSize is the indent width in columns.
	TabSize int
	// HardTabs indents with tab characters instead of spaces.
	HardTabs bool
}

// LocalSettingsKind identifies the format of a path-scoped override.
type LocalSettingsKind uint8

const (
	// KindEditorconfig is a minimal editorconfig-style fragment.
	KindEditorconfig LocalSettingsKind = iota
)

// String returns a human-readable name for the kind.
func (k LocalSettingsKind) String() string {
	switch k {
	case KindEditorconfig:
		return "editorconfig"
	default:
		return "unknown"
	}
}

// localEntry is one installed path-scoped override.
type localEntry struct {
	kind     LocalSettingsKind
	content  string
	override Override
}

// Store holds all settings layers. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	defaults  LanguageSettings
	languages map[string]LanguageSettings

	// local overrides keyed by worktree, then workspace-relative path.
	local map[workspace.WorktreeID]map[string]localEntry

	statePath string
	logger    *log.Logger

	onChange []func()
}

// NewStore creates a store with builtin defaults (4-space indentation).
func NewStore(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Null
	}
	return &Store{
		defaults:  LanguageSettings{TabSize: 4, HardTabs: false},
		languages: make(map[string]LanguageSettings),
		local:     make(map[workspace.WorktreeID]map[string]localEntry),
		logger:    logger.WithComponent("settings"),
	}
}

// SetDefaults replaces the builtin default layer.
func (s *Store) SetDefaults(defaults LanguageSettings) {
	s.mu.Lock()
	s.defaults = defaults
	s.mu.Unlock()
	s.notifyChange()
}

// SetLanguage installs a per-language override layer entry. Language names
// are matched case-insensitively.
func (s *Store) SetLanguage(name string, settings LanguageSettings) {
	s.mu.Lock()
	s.languages[strings.ToLower(name)] = settings
	s.mu.Unlock()
	s.notifyChange()
}

// SetLocalSettings installs, replaces, or removes the path-scoped override
// for the given worktree and workspace-relative path. A nil content removes
// the override. The override applies to the path and everything beneath it.
func (s *Store) SetLocalSettings(id workspace.WorktreeID, path string, kind LocalSettingsKind, content *string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if kind != KindEditorconfig {
		return fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	path = strings.TrimPrefix(path, "/")

	s.mu.Lock()
	if content == nil {
		if byPath, ok := s.local[id]; ok {
			delete(byPath, path)
			if len(byPath) == 0 {
				delete(s.local, id)
			}
		}
	} else {
		override, err := ParseEditorconfig(*content)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("parsing local settings for %q: %w", path, err)
		}
		byPath, ok := s.local[id]
		if !ok {
			byPath = make(map[string]localEntry)
			s.local[id] = byPath
		}
		byPath[path] = localEntry{kind: kind, content: *content, override: override}
	}
	s.mu.Unlock()

	if err := s.save(); err != nil {
		// Persistence is best-effort; in-memory state is already updated.
		s.logger.Error("persisting local settings failed: %v", err)
	}

	s.notifyChange()
	return nil
}

// LocalSettings returns the raw override content installed for the given
// worktree and path, if any.
func (s *Store) LocalSettings(id workspace.WorktreeID, path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.local[id][strings.TrimPrefix(path, "/")]
	if !ok {
		return "", false
	}
	return entry.content, true
}

// Language resolves the effective settings for an optional language name
// and an optional file identity. Layers apply lowest to highest; for local
// overrides the deepest matching scope wins.
func (s *Store) Language(language string, id workspace.WorktreeID, path string) LanguageSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.defaults

	if language != "" {
		if lang, ok := s.languages[strings.ToLower(language)]; ok {
			settings = lang
		}
	}

	if path == "" {
		return settings
	}
	path = strings.TrimPrefix(path, "/")

	// Apply matching local overrides shallowest-first so deeper scopes win.
	byPath := s.local[id]
	if len(byPath) == 0 {
		return settings
	}

	scopes := make([]string, 0, len(byPath))
	for scope := range byPath {
		if scopeContains(scope, path) {
			scopes = append(scopes, scope)
		}
	}
	sort.Slice(scopes, func(i, j int) bool {
		return len(scopes[i]) < len(scopes[j])
	})

	for _, scope := range scopes {
		byPath[scope].override.apply(&settings)
	}
	return settings
}

// OnChange registers a callback invoked after any layer mutation.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// notifyChange calls change callbacks without holding the lock.
func (s *Store) notifyChange() {
	s.mu.RLock()
	callbacks := make([]func(), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}

// scopeContains reports whether path falls under scope's glob (/**).
// The scope "." is the worktree root and contains everything.
func scopeContains(scope, path string) bool {
	if scope == "." || scope == path {
		return true
	}
	return strings.HasPrefix(path, scope+"/")
}
