package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// IndentStyle is an editorconfig indent_style value.
type IndentStyle uint8

const (
	// StyleUnset means the fragment did not specify a style.
	StyleUnset IndentStyle = iota
	// StyleSpace indents with spaces.
	StyleSpace
	// StyleTab indents with tab characters.
	StyleTab
)

// String returns the editorconfig keyword for the style.
func (st IndentStyle) String() string {
	switch st {
	case StyleSpace:
		return "space"
	case StyleTab:
		return "tab"
	default:
		return "unset"
	}
}

// Override holds the indentation keys of a parsed editorconfig fragment.
// Nil pointers mean the key was absent.
type Override struct {
	IndentSize  *int
	IndentStyle IndentStyle
	TabWidth    *int
}

// apply layers the override onto effective settings. indent_size wins over
// tab_width when both are present.
func (o Override) apply(settings *LanguageSettings) {
	switch o.IndentStyle {
	case StyleSpace:
		settings.HardTabs = false
	case StyleTab:
		settings.HardTabs = true
	}

	if o.IndentSize != nil {
		settings.TabSize = *o.IndentSize
	} else if o.TabWidth != nil {
		settings.TabSize = *o.TabWidth
	}
}

// ParseEditorconfig parses a minimal editorconfig-style fragment:
//
//	[/**]
//	indent_size = 4
//	indent_style = space
//	tab_width=4
//
// Only the indentation keys are understood; unknown keys are ignored.
// Section headers beyond the first are ignored as well, since installed
// overrides always target a single /** scope.
func ParseEditorconfig(content string) (Override, error) {
	var override Override

	for lineNo, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return Override{}, fmt.Errorf("line %d: unterminated section header", lineNo+1)
			}
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return Override{}, fmt.Errorf("line %d: expected key = value, got %q", lineNo+1, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))

		switch key {
		case "indent_size":
			n, err := parseWidth(value)
			if err != nil {
				return Override{}, fmt.Errorf("line %d: indent_size: %w", lineNo+1, err)
			}
			override.IndentSize = &n
		case "tab_width":
			n, err := parseWidth(value)
			if err != nil {
				return Override{}, fmt.Errorf("line %d: tab_width: %w", lineNo+1, err)
			}
			override.TabWidth = &n
		case "indent_style":
			switch value {
			case "space":
				override.IndentStyle = StyleSpace
			case "tab":
				override.IndentStyle = StyleTab
			default:
				return Override{}, fmt.Errorf("line %d: indent_style must be space or tab, got %q", lineNo+1, value)
			}
		}
	}

	return override, nil
}

// parseWidth parses a positive indent width.
func parseWidth(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// WidthOverrideContent renders the fragment written when the user picks a
// numeric indent width.
func WidthOverrideContent(width int) string {
	return fmt.Sprintf("[/**]\nindent_size = %d\nindent_style = space\ntab_width=%d", width, width)
}

// StyleOverrideContent renders the fragment written when the user toggles
// between spaces and tabs, preserving the current width.
func StyleOverrideContent(style IndentStyle, width int) string {
	return fmt.Sprintf("[/**]\nindent_size = %d\nindent_style = %s\ntab_width=%d", width, style, width)
}
