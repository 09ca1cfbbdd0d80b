package selector

import (
	"github.com/dshills/tabstop/internal/editor"
	"github.com/dshills/tabstop/internal/fuzzy"
	"github.com/dshills/tabstop/internal/indent"
	"github.com/dshills/tabstop/internal/log"
	"github.com/dshills/tabstop/internal/settings"
)

// State tracks where the selection flow is.
type State uint8

const (
	// StateIdle means no query has run yet.
	StateIdle State = iota
	// StateFiltering means a query is in flight.
	StateFiltering
	// StateSettled means matches are populated.
	StateSettled
	// StateDismissed is terminal.
	StateDismissed
)

// IndentDelegate owns the selection state for the indentation picker.
//
// All methods must run on the dispatcher goroutine; filter results arrive
// through the same dispatcher, so state is never touched from two
// goroutines at once.
type IndentDelegate struct {
	registry   *editor.Registry
	store      *settings.Store
	dispatcher Dispatcher
	logger     *log.Logger
	matcher    *fuzzy.Matcher
	writer     *Writer

	candidates []fuzzy.Candidate

	state         State
	matches       []fuzzy.Match
	selectedIndex int

	// generation guards against out-of-order filter completions: only the
	// most recently issued request may commit its result.
	generation uint64

	onDismiss func()
}

// Option configures an IndentDelegate.
type Option func(*IndentDelegate)

// WithCandidates replaces the default candidate list.
func WithCandidates(candidates []fuzzy.Candidate) Option {
	return func(d *IndentDelegate) {
		d.candidates = candidates
	}
}

// WithOnDismiss sets the dismissal notification for the owning UI shell.
func WithOnDismiss(fn func()) Option {
	return func(d *IndentDelegate) {
		d.onDismiss = fn
	}
}

// NewIndentDelegate creates the picker delegate. The registry supplies the
// active document on confirm; the store receives the override write.
func NewIndentDelegate(registry *editor.Registry, store *settings.Store, dispatcher Dispatcher, logger *log.Logger, opts ...Option) *IndentDelegate {
	if logger == nil {
		logger = log.Null
	}

	d := &IndentDelegate{
		registry:   registry,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.WithComponent("indent-selector"),
		matcher:    fuzzy.NewMatcher(),
		candidates: DefaultCandidates(),
	}
	d.writer = NewWriter(store, d.logger)

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current flow state.
func (d *IndentDelegate) State() State {
	return d.state
}

// Placeholder implements Delegate.
func (d *IndentDelegate) Placeholder() string {
	return "Set Indentation"
}

// MatchCount implements Delegate.
func (d *IndentDelegate) MatchCount() int {
	return len(d.matches)
}

// SelectedIndex implements Delegate.
func (d *IndentDelegate) SelectedIndex() int {
	return d.selectedIndex
}

// SetSelectedIndex implements Delegate. The index is stored directly;
// list-navigation UIs validate before calling.
func (d *IndentDelegate) SetSelectedIndex(ix int) {
	d.selectedIndex = ix
}

// UpdateMatches implements Delegate. The fuzzy scan runs off-thread; its
// completion posts back through the dispatcher and commits only while its
// generation is still current, so a superseded pass can never clobber the
// state with stale results.
func (d *IndentDelegate) UpdateMatches(query string) {
	d.generation++
	gen := d.generation
	d.state = StateFiltering

	d.matcher.MatchAsync(d.candidates, query, maxMatches, func(results []fuzzy.Match) {
		d.dispatcher.Post(func() {
			if gen != d.generation {
				d.logger.Debug("dropping stale filter results for generation %d", gen)
				return
			}
			d.commitMatches(results)
		})
	})
}

// commitMatches replaces the visible matches atomically and restores the
// selected-index invariant.
func (d *IndentDelegate) commitMatches(results []fuzzy.Match) {
	d.matches = results
	d.state = StateSettled

	if len(d.matches) == 0 {
		d.selectedIndex = 0
		return
	}
	if d.selectedIndex > len(d.matches)-1 {
		d.selectedIndex = len(d.matches) - 1
	}
}

// Confirm implements Delegate. A valid selection writes a path-scoped
// override; either way the picker dismisses.
func (d *IndentDelegate) Confirm() {
	if d.selectedIndex >= 0 && d.selectedIndex < len(d.matches) {
		d.applyCandidate(d.matches[d.selectedIndex].CandidateID)
	}
	d.Dismissed()
}

// applyCandidate persists the chosen candidate against the active
// document's file. Write failures are logged and swallowed; settings
// persistence is fire-and-forget from the selection flow's perspective.
func (d *IndentDelegate) applyCandidate(id int) {
	doc, ok := d.registry.ActiveDocument()
	if !ok {
		d.logger.Debug("confirm with no active document")
		return
	}
	file, ok := doc.File()
	if !ok {
		d.logger.Debug("confirm on document without a file")
		return
	}

	var err error
	if id == ToggleID {
		size, ok := indent.ReadIndentSize(doc, d.store)
		if !ok {
			d.logger.Debug("toggle on document without indentation settings")
			return
		}
		style := settings.StyleTab
		if size.Kind == indent.KindTab {
			style = settings.StyleSpace
		}
		err = d.writer.WriteStyleOverride(file, style, size.Width)
	} else {
		err = d.writer.WriteWidthOverride(file, id)
	}

	if err != nil {
		d.logger.Error("set_indent failed: %v", err)
	}
}

// Dismissed implements Delegate. Terminal regardless of prior state: the
// generation bump invalidates any filter pass still in flight, so a late
// completion can never resurrect a dismissed delegate.
func (d *IndentDelegate) Dismissed() {
	d.generation++
	d.state = StateDismissed
	if d.onDismiss != nil {
		d.onDismiss()
	}
}

// RenderMatch implements Delegate.
func (d *IndentDelegate) RenderMatch(ix int, selected bool) (MatchView, bool) {
	if ix < 0 || ix >= len(d.matches) {
		return MatchView{}, false
	}
	mat := d.matches[ix]
	return MatchView{
		Text:      mat.Text,
		Positions: mat.Positions,
		Selected:  selected,
	}, true
}
