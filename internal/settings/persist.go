package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/tabstop/internal/workspace"
)

// stateVersion is bumped when the on-disk layout changes.
const stateVersion = 1

// SetStatePath enables persistence of installed local overrides to the
// given JSON state file. Existing state at the path is loaded immediately.
func (s *Store) SetStatePath(path string) error {
	s.mu.Lock()
	s.statePath = path
	s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

// save serializes all installed local overrides. Callers must not hold the
// store lock.
func (s *Store) save() error {
	s.mu.RLock()
	path := s.statePath
	if path == "" {
		s.mu.RUnlock()
		return nil
	}

	data := []byte("{}")
	var err error
	data, err = sjson.SetBytes(data, "version", stateVersion)
	if err == nil {
		for id, byPath := range s.local {
			for scope, entry := range byPath {
				key := fmt.Sprintf("worktrees.%d.%s", id, escapeStateKey(scope))
				data, err = sjson.SetBytes(data, key+".kind", entry.kind.String())
				if err != nil {
					break
				}
				data, err = sjson.SetBytes(data, key+".content", entry.content)
				if err != nil {
					break
				}
			}
		}
	}
	s.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("encoding settings state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	// Write-then-rename so a crash never leaves a truncated state file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing settings state: %w", err)
	}
	return nil
}

// load reads persisted local overrides back into the store.
func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statePath == "" {
		return nil
	}

	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading settings state: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return fmt.Errorf("settings state %s is not valid JSON", s.statePath)
	}

	root := gjson.ParseBytes(data)
	if v := root.Get("version").Int(); v != stateVersion {
		return fmt.Errorf("settings state version %d is not supported", v)
	}

	local := make(map[workspace.WorktreeID]map[string]localEntry)
	var loadErr error
	root.Get("worktrees").ForEach(func(idKey, byPath gjson.Result) bool {
		id, err := strconv.ParseInt(idKey.String(), 10, 64)
		if err != nil {
			loadErr = fmt.Errorf("settings state worktree key %q: %w", idKey.String(), err)
			return false
		}

		entries := make(map[string]localEntry)
		byPath.ForEach(func(scopeKey, entry gjson.Result) bool {
			content := entry.Get("content").String()
			override, err := ParseEditorconfig(content)
			if err != nil {
				loadErr = fmt.Errorf("settings state entry %q: %w", scopeKey.String(), err)
				return false
			}
			entries[scopeKey.String()] = localEntry{
				kind:     KindEditorconfig,
				content:  content,
				override: override,
			}
			return true
		})
		if loadErr != nil {
			return false
		}

		if len(entries) > 0 {
			local[workspace.WorktreeID(id)] = entries
		}
		return true
	})
	if loadErr != nil {
		return loadErr
	}

	s.local = local
	return nil
}

// escapeStateKey escapes gjson path syntax in workspace-relative paths.
func escapeStateKey(key string) string {
	replacer := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return replacer.Replace(key)
}
