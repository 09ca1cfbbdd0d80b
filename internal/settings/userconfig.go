package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// userConfig mirrors the user's global TOML configuration file. Only the
// indentation-relevant sections are read here.
type userConfig struct {
	Editor    userIndent            `toml:"editor"`
	Languages map[string]userIndent `toml:"languages"`
}

type userIndent struct {
	TabSize  *int  `toml:"tab_size"`
	HardTabs *bool `toml:"hard_tabs"`
}

// LoadUserConfig reads the user's global configuration file into the
// defaults and per-language layers. A missing file is not an error.
func (s *Store) LoadUserConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg userConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	s.mu.Lock()
	if cfg.Editor.TabSize != nil {
		s.defaults.TabSize = *cfg.Editor.TabSize
	}
	if cfg.Editor.HardTabs != nil {
		s.defaults.HardTabs = *cfg.Editor.HardTabs
	}
	for name, lang := range cfg.Languages {
		merged := s.defaults
		if lang.TabSize != nil {
			merged.TabSize = *lang.TabSize
		}
		if lang.HardTabs != nil {
			merged.HardTabs = *lang.HardTabs
		}
		s.languages[strings.ToLower(name)] = merged
	}
	s.mu.Unlock()

	s.notifyChange()
	return nil
}
