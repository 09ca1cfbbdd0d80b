package extension

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestLoadScript_RegistersWidths(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "widths.lua", `
		tabstop.add_width(12)
		tabstop.add_width(3)
	`)

	h := NewHost(nil)
	if err := h.LoadScript(path); err != nil {
		t.Fatalf("LoadScript: %v", err)
	}

	// Registration order is preserved.
	widths := h.Widths()
	if len(widths) != 2 || widths[0] != 12 || widths[1] != 3 {
		t.Errorf("Widths = %v, want [12 3]", widths)
	}
}

func TestLoadScript_RejectsInvalidWidth(t *testing.T) {
	dir := t.TempDir()

	for _, body := range []string{
		"tabstop.add_width(0)",
		"tabstop.add_width(-4)",
		"tabstop.add_width(4096)",
	} {
		path := writeScript(t, dir, "bad.lua", body)
		h := NewHost(nil)
		err := h.LoadScript(path)
		if err == nil {
			t.Errorf("LoadScript(%q) should fail", body)
		}
		if len(h.Widths()) != 0 {
			t.Errorf("Widths = %v after %q, want none", h.Widths(), body)
		}
	}
}

func TestLoadScript_DuplicateWidthIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "dup.lua", `
		tabstop.add_width(6)
		tabstop.add_width(6)
	`)

	h := NewHost(nil)
	if err := h.LoadScript(path); err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if got := h.Widths(); len(got) != 1 || got[0] != 6 {
		t.Errorf("Widths = %v, want [6]", got)
	}
}

func TestLoadScript_RunawayScriptAborted(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "spin.lua", "while true do end")

	h := NewHost(nil)
	h.timeout = 50 * time.Millisecond

	start := time.Now()
	err := h.LoadScript(path)
	if err == nil {
		t.Fatal("runaway script should fail")
	}

	// The deadline aborts the VM loop itself; the call returns promptly
	// instead of leaving the script running.
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("abort took %s, deadline not enforced", elapsed)
	}
	if len(h.Widths()) != 0 {
		t.Errorf("Widths = %v after aborted script, want none", h.Widths())
	}
}

func TestLoadScript_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "broken.lua", "tabstop.add_width(")

	h := NewHost(nil)
	if err := h.LoadScript(path); err == nil {
		t.Error("LoadScript should report a syntax error")
	}
}

func TestLoadScript_SandboxBlocksIO(t *testing.T) {
	dir := t.TempDir()

	for _, body := range []string{
		`io.open("/etc/passwd")`,
		`os.execute("true")`,
		`loadfile("x.lua")`,
	} {
		path := writeScript(t, dir, "escape.lua", body)
		h := NewHost(nil)
		if err := h.LoadScript(path); err == nil {
			t.Errorf("LoadScript(%q) should fail in sandbox", body)
		}
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lua", "tabstop.add_width(3)")
	writeScript(t, dir, "b.lua", "tabstop.add_width(12)")
	writeScript(t, dir, "broken.lua", "this is not lua")
	writeScript(t, dir, "notes.txt", "tabstop.add_width(99)")

	h := NewHost(nil)
	if err := h.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	// Broken and non-Lua files are skipped; the rest load.
	widths := h.Widths()
	if len(widths) != 2 || widths[0] != 3 || widths[1] != 12 {
		t.Errorf("Widths = %v, want [3 12]", widths)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	h := NewHost(nil)
	if err := h.LoadDir(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("missing dir should not be an error, got %v", err)
	}
}

func TestLoadScript_ErrorNamesScript(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "named.lua", "error('boom')")

	h := NewHost(nil)
	err := h.LoadScript(path)
	if err == nil {
		t.Fatal("LoadScript should fail")
	}
	if !strings.Contains(err.Error(), "named.lua") {
		t.Errorf("error %q should name the script", err)
	}
}
