package settings

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/tabstop/internal/log"
	"github.com/dshills/tabstop/internal/workspace"
)

// editorconfigName is the file watched for on-disk overrides.
const editorconfigName = ".editorconfig"

// Watcher ingests .editorconfig files under worktree roots into the store
// as path-scoped local overrides, and keeps them fresh as they change on
// disk. Watching is per-directory; call AddDir for subdirectories whose
// .editorconfig files should be tracked.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	ws      *workspace.Workspace
	store   *Store
	logger  *log.Logger
	closed  bool
	done    chan struct{}
	stopped sync.WaitGroup
}

// NewWatcher creates a watcher over the workspace's current worktree roots.
// Worktrees added later are picked up automatically.
func NewWatcher(ws *workspace.Workspace, store *Store, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Null
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		ws:     ws,
		store:  store,
		logger: logger.WithComponent("editorconfig-watcher"),
		done:   make(chan struct{}),
	}

	for _, tree := range ws.Worktrees() {
		w.watchRoot(tree)
	}
	ws.OnWorktreeAdd(w.watchRoot)

	w.stopped.Add(1)
	go w.loop()

	return w, nil
}

// watchRoot registers a worktree root and ingests any existing
// .editorconfig at the root.
func (w *Watcher) watchRoot(tree workspace.Worktree) {
	if err := w.fsw.Add(tree.Path); err != nil {
		w.logger.Warn("watching %s failed: %v", tree.Path, err)
		return
	}
	w.ingest(filepath.Join(tree.Path, editorconfigName))
}

// AddDir registers a subdirectory for watching and ingests its
// .editorconfig if present.
func (w *Watcher) AddDir(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.ingest(filepath.Join(dir, editorconfigName))
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.stopped.Wait()
	return err
}

// loop consumes fsnotify events until closed.
func (w *Watcher) loop() {
	defer w.stopped.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != editorconfigName {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				w.ingest(event.Name)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.remove(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error: %v", err)
		}
	}
}

// ingest reads an .editorconfig file and installs it as a local override
// scoped to its containing directory.
func (w *Watcher) ingest(path string) {
	id, scope, ok := w.scopeFor(path)
	if !ok {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Error("reading %s: %v", path, err)
		}
		return
	}

	content := string(data)
	if err := w.store.SetLocalSettings(id, scope, KindEditorconfig, &content); err != nil {
		w.logger.Error("installing %s: %v", path, err)
	}
}

// remove drops the local override for a deleted .editorconfig.
func (w *Watcher) remove(path string) {
	id, scope, ok := w.scopeFor(path)
	if !ok {
		return
	}
	if err := w.store.SetLocalSettings(id, scope, KindEditorconfig, nil); err != nil {
		w.logger.Error("removing override for %s: %v", path, err)
	}
}

// scopeFor maps an .editorconfig path to its worktree and override scope.
func (w *Watcher) scopeFor(path string) (workspace.WorktreeID, string, bool) {
	id, rel, err := w.ws.RelativePath(filepath.Dir(path))
	if err != nil {
		return 0, "", false
	}
	return id, rel, true
}
