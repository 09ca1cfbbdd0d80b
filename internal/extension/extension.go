// Package extension loads Lua scripts that contribute extra indent
// widths to the picker. Scripts run in a sandboxed state and call
// tabstop.add_width(n) during load.
package extension

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tabstop/internal/log"
)

// Limits for script execution.
const (
	maxWidth         = 64
	executionTimeout = 2 * time.Second
)

// ErrInvalidWidth is returned when a script registers a width outside
// the accepted range.
var ErrInvalidWidth = errors.New("indent width out of range")

// Host loads extension scripts and collects the widths they register.
type Host struct {
	logger  *log.Logger
	widths  map[int]string // width -> script that registered it
	order   []int          // registration order
	timeout time.Duration
}

// NewHost creates an extension host. A nil logger disables logging.
func NewHost(logger *log.Logger) *Host {
	if logger == nil {
		logger = log.Null
	}
	return &Host{
		logger:  logger.WithComponent("extension"),
		widths:  make(map[int]string),
		timeout: executionTimeout,
	}
}

// LoadDir runs every .lua file in dir. A missing directory is not an
// error; scripts that fail to run are logged and skipped.
func (h *Host) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading extension dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := h.LoadScript(path); err != nil {
			h.logger.Error("extension %s failed: %v", entry.Name(), err)
			continue
		}
		loaded++
	}

	if loaded == 0 && len(entries) > 0 {
		h.logger.Debug("no usable extension scripts in %s", dir)
	}
	return nil
}

// LoadScript runs one Lua file in a fresh sandboxed state. A script that
// exceeds the execution deadline is aborted inside the VM loop, so a
// misbehaving extension cannot leave anything running.
func (h *Host) LoadScript(path string) error {
	L := newSandboxedState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	L.SetContext(ctx)

	h.register(L, filepath.Base(path))

	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("running %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Widths returns the registered extra widths in registration order.
func (h *Host) Widths() []int {
	widths := make([]int, len(h.order))
	copy(widths, h.order)
	return widths
}

// register installs the tabstop module into the state. Only add_width
// is exposed; everything else plugins might want lives in the host.
func (h *Host) register(L *lua.LState, script string) {
	mod := L.NewTable()
	L.SetField(mod, "add_width", L.NewFunction(func(L *lua.LState) int {
		width := L.CheckInt(1)
		if err := h.addWidth(width, script); err != nil {
			L.RaiseError("add_width(%d): %s", width, err)
		}
		return 0
	}))
	L.SetGlobal("tabstop", mod)
}

// addWidth records a width, rejecting values the picker cannot use.
func (h *Host) addWidth(width int, script string) error {
	if width <= 0 || width > maxWidth {
		return ErrInvalidWidth
	}
	if prev, ok := h.widths[width]; ok {
		h.logger.Debug("width %d from %s already registered by %s", width, script, prev)
		return nil
	}
	h.widths[width] = script
	h.order = append(h.order, width)
	h.logger.Debug("registered width %d from %s", width, script)
	return nil
}

// newSandboxedState creates a Lua state with only safe libraries. io,
// os, debug, and package stay closed so scripts cannot reach the
// system.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Strip the escape hatches base leaves open.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
