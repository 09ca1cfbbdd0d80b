// Package main is the entry point for the tabstop demo, a terminal
// shell around the indentation indicator and picker.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tabstop/internal/editor"
	"github.com/dshills/tabstop/internal/extension"
	"github.com/dshills/tabstop/internal/log"
	"github.com/dshills/tabstop/internal/picker"
	"github.com/dshills/tabstop/internal/selector"
	"github.com/dshills/tabstop/internal/settings"
	"github.com/dshills/tabstop/internal/statusbar"
	"github.com/dshills/tabstop/internal/workspace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	WorkspacePath string
	ConfigPath    string
	StatePath     string
	ExtensionDir  string
	LogLevel      string
	LogPath       string
	Files         []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	logger, logFile, err := newLogger(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if logFile != nil {
		defer logFile.Close()
	}

	app, err := newApp(opts, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer app.Shutdown()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		app.Quit()
	}()

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app wires the workspace, settings store, document registry,
// indicator, and picker onto a tcell screen. All mutable state is
// owned by the dispatcher goroutine.
type app struct {
	logger     *log.Logger
	ws         *workspace.Workspace
	store      *settings.Store
	watcher    *settings.Watcher
	registry   *editor.Registry
	indicator  *statusbar.Indentation
	pick       *picker.Picker
	backend    *picker.TcellBackend
	dispatcher *picker.Dispatcher
}

func newApp(opts options, logger *log.Logger) (*app, error) {
	ws := workspace.New()
	if _, err := ws.AddWorktree(opts.WorkspacePath); err != nil {
		return nil, fmt.Errorf("adding worktree: %w", err)
	}

	store := settings.NewStore(logger)
	if opts.ConfigPath != "" {
		if err := store.LoadUserConfig(opts.ConfigPath); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if opts.StatePath != "" {
		if err := store.SetStatePath(opts.StatePath); err != nil {
			logger.Warn("restoring state: %v", err)
		}
	}

	watcher, err := settings.NewWatcher(ws, store, logger)
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}

	registry := editor.NewRegistry(ws)
	for _, file := range opts.Files {
		doc, err := registry.Open(file)
		if err != nil {
			logger.Warn("opening %s: %v", file, err)
			continue
		}
		if err := registry.SetActive(doc.ID()); err != nil {
			logger.Warn("activating %s: %v", file, err)
		}
	}

	ext := extension.NewHost(logger)
	if opts.ExtensionDir != "" {
		if err := ext.LoadDir(opts.ExtensionDir); err != nil {
			logger.Warn("loading extensions: %v", err)
		}
	}

	dispatcher := picker.NewDispatcher()
	delegate := selector.NewIndentDelegate(registry, store, dispatcher, logger,
		selector.WithCandidates(selector.CandidatesWithWidths(ext.Widths())))
	pick := picker.New(delegate)

	backend, err := picker.NewTcellBackend()
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("creating terminal: %w", err)
	}

	a := &app{
		logger:     logger.WithComponent("app"),
		ws:         ws,
		store:      store,
		watcher:    watcher,
		registry:   registry,
		pick:       pick,
		backend:    backend,
		dispatcher: dispatcher,
	}
	a.indicator = statusbar.NewIndentation(registry, store, func() {
		a.pick.Open()
		a.draw()
	})
	a.indicator.OnUpdate(func() {
		dispatcher.Post(a.draw)
	})
	return a, nil
}

// Run pumps terminal events through the dispatcher until quit.
func (a *app) Run() error {
	go a.pollEvents()
	a.dispatcher.Post(a.draw)
	a.dispatcher.Run()
	return nil
}

// pollEvents forwards tcell events onto the dispatcher goroutine.
func (a *app) pollEvents() {
	for {
		ev := a.backend.Screen().PollEvent()
		if ev == nil {
			return
		}
		a.dispatcher.Post(func() { a.handleEvent(ev) })
	}
}

func (a *app) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.backend.Screen().Sync()
		a.draw()
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

func (a *app) handleKey(ev *tcell.EventKey) {
	if a.pick.IsOpen() {
		if pe, ok := picker.TranslateEvent(ev); ok {
			a.pick.HandleEvent(pe)
		}
		a.draw()
		return
	}

	switch {
	case ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
		a.Quit()
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'i':
		a.indicator.Click()
		a.draw()
	}
}

// draw repaints the status line and, when open, the picker overlay.
func (a *app) draw() {
	a.backend.Clear()
	width, height := a.backend.Size()
	if height < 2 {
		a.backend.Show()
		return
	}

	a.drawStatusLine(width, height-1)
	if a.pick.IsOpen() {
		a.pick.Render(a.backend, 0, 0, width)
		return // Render shows the screen itself.
	}
	a.backend.Screen().HideCursor()
	a.backend.Show()
}

func (a *app) drawStatusLine(width, y int) {
	line := "press i to set indentation, q to quit"
	if doc, ok := a.registry.ActiveDocument(); ok {
		name := filepath.Base(doc.AbsPath())
		if text, visible := a.indicator.Text(); visible {
			line = fmt.Sprintf(" %s   %s   (i: %s)", name, text, a.indicator.Tooltip())
		} else {
			line = fmt.Sprintf(" %s", name)
		}
	}

	style := picker.Style{Reverse: true}
	col := 0
	for _, r := range line {
		if col >= width {
			break
		}
		a.backend.SetCell(col, y, r, style)
		col++
	}
	for col < width {
		a.backend.SetCell(col, y, ' ', style)
		col++
	}
}

// Quit stops the dispatcher; Run returns and Shutdown cleans up.
func (a *app) Quit() {
	a.dispatcher.Stop()
}

func (a *app) Shutdown() {
	a.dispatcher.Stop()
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.backend != nil {
		a.backend.Shutdown()
	}
	a.ws.Close()
}

func newLogger(opts options) (*log.Logger, *os.File, error) {
	cfg := log.Config{Level: log.ParseLevel(opts.LogLevel), Prefix: "tabstop"}

	if opts.LogPath != "" {
		file, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cfg.Output = file
		return log.New(cfg), file, nil
	}

	// The terminal owns stdout/stderr while running; without a log
	// file, keep quiet.
	return log.Null, nil, nil
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.WorkspacePath, "workspace", "", "Workspace directory (defaults to cwd)")
	flag.StringVar(&opts.WorkspacePath, "w", "", "Workspace directory (shorthand)")
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to TOML configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to TOML configuration file (shorthand)")
	flag.StringVar(&opts.StatePath, "state", "", "Path for persisted override state")
	flag.StringVar(&opts.ExtensionDir, "extensions", "", "Directory of Lua extension scripts")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogPath, "log-file", "", "Write logs to this file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tabstop - indentation indicator and picker demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tabstop [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tabstop main.go             Open a file\n")
		fmt.Fprintf(os.Stderr, "  tabstop -w ./project x.py   Open a file in a workspace\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("tabstop %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	opts.Files = flag.Args()

	if opts.WorkspacePath == "" {
		if len(opts.Files) > 0 {
			if abs, err := filepath.Abs(opts.Files[0]); err == nil {
				opts.WorkspacePath = filepath.Dir(abs)
			}
		}
		if opts.WorkspacePath == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			opts.WorkspacePath = cwd
		}
	}

	return opts
}
