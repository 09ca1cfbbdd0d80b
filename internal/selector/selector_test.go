package selector

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/tabstop/internal/editor"
	"github.com/dshills/tabstop/internal/indent"
	"github.com/dshills/tabstop/internal/log"
	"github.com/dshills/tabstop/internal/settings"
	"github.com/dshills/tabstop/internal/workspace"
)

// testDispatcher queues posted callbacks; tests pump them on the test
// goroutine, standing in for the UI thread.
type testDispatcher struct {
	fns chan func()
}

func newTestDispatcher() *testDispatcher {
	return &testDispatcher{fns: make(chan func(), 16)}
}

func (d *testDispatcher) Post(fn func()) {
	d.fns <- fn
}

// pump runs n posted callbacks, failing the test on timeout.
func (d *testDispatcher) pump(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case fn := <-d.fns:
			fn()
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for posted callback %d of %d", i+1, n)
		}
	}
}

type fixture struct {
	delegate  *IndentDelegate
	disp      *testDispatcher
	store     *settings.Store
	registry  *editor.Registry
	tree      workspace.Worktree
	root      string
	dismissed int
	writes    int
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	root := t.TempDir()
	ws := workspace.New()
	tree, err := ws.AddWorktree(root)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		disp:     newTestDispatcher(),
		store:    settings.NewStore(log.Null),
		registry: editor.NewRegistry(ws),
		tree:     tree,
		root:     root,
	}
	f.store.OnChange(func() { f.writes++ })

	opts = append(opts, WithOnDismiss(func() { f.dismissed++ }))
	f.delegate = NewIndentDelegate(f.registry, f.store, f.disp, log.Null, opts...)
	return f
}

// openActive opens a file and makes it the active document.
func (f *fixture) openActive(t *testing.T, rel string) *editor.Document {
	t.Helper()
	doc, err := f.registry.Open(filepath.Join(f.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.registry.SetActive(doc.ID()); err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestUpdateMatches_EmptyQuery(t *testing.T) {
	f := newFixture(t)

	f.delegate.UpdateMatches("")
	if f.delegate.State() != StateFiltering {
		t.Error("state should be Filtering while query is in flight")
	}
	f.disp.pump(t, 1)

	if f.delegate.State() != StateSettled {
		t.Error("state should be Settled after completion")
	}
	if f.delegate.MatchCount() != 4 {
		t.Fatalf("MatchCount = %d, want 4", f.delegate.MatchCount())
	}

	// Fixed display order: [Toggle, 2, 4, 8].
	wantLabels := []string{"Toggle Spaces/Tabs", "2 spaces", "4 spaces", "8 spaces"}
	for i, want := range wantLabels {
		view, ok := f.delegate.RenderMatch(i, false)
		if !ok {
			t.Fatalf("RenderMatch(%d) reported absent", i)
		}
		if view.Text != want {
			t.Errorf("match %d = %q, want %q", i, view.Text, want)
		}
		if len(view.Positions) != 0 {
			t.Errorf("match %d: empty query should have no highlight positions", i)
		}
	}
}

func TestUpdateMatches_ClampsSelectedIndex(t *testing.T) {
	f := newFixture(t)

	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	f.delegate.SetSelectedIndex(3)

	// Narrowing to one match clamps the selection.
	f.delegate.UpdateMatches("8")
	f.disp.pump(t, 1)

	if f.delegate.MatchCount() != 1 {
		t.Fatalf("MatchCount = %d, want 1", f.delegate.MatchCount())
	}
	if f.delegate.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex = %d, want 0 after clamp", f.delegate.SelectedIndex())
	}
}

func TestUpdateMatches_EmptyResultResetsIndex(t *testing.T) {
	f := newFixture(t)

	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	f.delegate.SetSelectedIndex(2)

	f.delegate.UpdateMatches("zzz")
	f.disp.pump(t, 1)

	if f.delegate.MatchCount() != 0 {
		t.Fatalf("MatchCount = %d, want 0", f.delegate.MatchCount())
	}
	if f.delegate.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex = %d, want 0 for empty matches", f.delegate.SelectedIndex())
	}
}

func TestUpdateMatches_SupersededResultDropped(t *testing.T) {
	f := newFixture(t)

	// Two queries in flight; whichever completion arrives for the older
	// generation must not clobber the newer one's state.
	f.delegate.UpdateMatches("8")
	f.delegate.UpdateMatches("")
	f.disp.pump(t, 2)

	if f.delegate.MatchCount() != 4 {
		t.Errorf("MatchCount = %d, want 4 (latest query wins)", f.delegate.MatchCount())
	}
}

func TestSetSelectedIndex_StoresDirectly(t *testing.T) {
	f := newFixture(t)

	// Navigation events store the index as-is; no internal clamping.
	f.delegate.SetSelectedIndex(2)
	if f.delegate.SelectedIndex() != 2 {
		t.Errorf("SelectedIndex = %d, want 2", f.delegate.SelectedIndex())
	}
}

func TestConfirm_WritesWidthOverride(t *testing.T) {
	f := newFixture(t)
	f.openActive(t, "src/main.rs")

	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	f.delegate.SetSelectedIndex(2) // "4 spaces"
	f.delegate.Confirm()

	content, ok := f.store.LocalSettings(f.tree.ID, "src/main.rs")
	if !ok {
		t.Fatal("no override installed for src/main.rs")
	}
	for _, want := range []string{"indent_size = 4", "indent_style = space", "tab_width=4", "[/**]"} {
		if !strings.Contains(content, want) {
			t.Errorf("override %q missing %q", content, want)
		}
	}
	if f.writes != 1 {
		t.Errorf("store writes = %d, want 1", f.writes)
	}
	if f.dismissed != 1 {
		t.Errorf("dismissals = %d, want 1", f.dismissed)
	}
	if f.delegate.State() != StateDismissed {
		t.Error("state should be Dismissed after confirm")
	}
}

func TestConfirm_EmptyMatches(t *testing.T) {
	f := newFixture(t)
	f.openActive(t, "src/main.rs")

	f.delegate.UpdateMatches("zzz")
	f.disp.pump(t, 1)
	f.delegate.Confirm()

	if f.writes != 0 {
		t.Errorf("store writes = %d, want 0 for empty selection", f.writes)
	}
	if f.dismissed != 1 {
		t.Errorf("dismissals = %d, want 1 (confirm still closes)", f.dismissed)
	}
}

func TestConfirm_NoActiveDocument(t *testing.T) {
	f := newFixture(t)

	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	f.delegate.Confirm()

	if f.writes != 0 {
		t.Errorf("store writes = %d, want 0 with no active document", f.writes)
	}
	if f.dismissed != 1 {
		t.Errorf("dismissals = %d, want 1", f.dismissed)
	}
}

func TestConfirm_DocumentWithoutFile(t *testing.T) {
	f := newFixture(t)

	doc := f.registry.OpenScratch()
	if err := f.registry.SetActive(doc.ID()); err != nil {
		t.Fatal(err)
	}

	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	f.delegate.SetSelectedIndex(2)
	f.delegate.Confirm()

	if f.writes != 0 {
		t.Errorf("store writes = %d, want 0 for scratch document", f.writes)
	}
	if f.dismissed != 1 {
		t.Errorf("dismissals = %d, want 1", f.dismissed)
	}
}

func TestConfirm_ToggleFlipsStyle(t *testing.T) {
	f := newFixture(t)
	f.openActive(t, "src/main.go")

	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	f.delegate.SetSelectedIndex(0) // toggle entry
	f.delegate.Confirm()

	// Default is spaces, so toggling writes tab style at the current width.
	content, ok := f.store.LocalSettings(f.tree.ID, "src/main.go")
	if !ok {
		t.Fatal("toggle wrote no override")
	}
	if !strings.Contains(content, "indent_style = tab") {
		t.Errorf("toggle from spaces should write tab style, got %q", content)
	}
	if !strings.Contains(content, "indent_size = 4") {
		t.Errorf("toggle should preserve current width, got %q", content)
	}

	doc, _ := f.registry.ActiveDocument()
	size, ok := indent.ReadIndentSize(doc, f.store)
	if !ok || size.Kind != indent.KindTab {
		t.Errorf("effective kind after toggle = %+v, want Tab", size)
	}

	// Toggling again flips back to spaces.
	g := NewIndentDelegate(f.registry, f.store, f.disp, log.Null)
	g.UpdateMatches("")
	f.disp.pump(t, 1)
	g.SetSelectedIndex(0)
	g.Confirm()

	size, ok = indent.ReadIndentSize(doc, f.store)
	if !ok || size.Kind != indent.KindSpace {
		t.Errorf("effective kind after second toggle = %+v, want Space", size)
	}
}

func TestConfirm_ToggleWithoutLanguage(t *testing.T) {
	f := newFixture(t)
	f.openActive(t, "LICENSE")

	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	f.delegate.SetSelectedIndex(0)
	f.delegate.Confirm()

	// No resolvable indentation means nothing to toggle; still dismisses.
	if f.writes != 0 {
		t.Errorf("store writes = %d, want 0", f.writes)
	}
	if f.dismissed != 1 {
		t.Errorf("dismissals = %d, want 1", f.dismissed)
	}
}

func TestDismissed_IsTerminal(t *testing.T) {
	f := newFixture(t)

	// A filter pass still in flight when the delegate dismisses must not
	// commit afterward and reopen the state machine.
	f.delegate.UpdateMatches("8")
	f.delegate.Dismissed()
	f.disp.pump(t, 1)

	if f.delegate.State() != StateDismissed {
		t.Errorf("state = %d after late completion, want Dismissed", f.delegate.State())
	}
	if f.delegate.MatchCount() != 0 {
		t.Errorf("MatchCount = %d, want 0 after dismissal", f.delegate.MatchCount())
	}
}

func TestDismissed_Direct(t *testing.T) {
	f := newFixture(t)

	f.delegate.Dismissed()
	if f.dismissed != 1 {
		t.Errorf("dismissals = %d, want 1", f.dismissed)
	}
	if f.delegate.State() != StateDismissed {
		t.Error("state should be Dismissed")
	}
}

func TestRenderMatch_Highlighting(t *testing.T) {
	f := newFixture(t)

	f.delegate.UpdateMatches("8")
	f.disp.pump(t, 1)

	view, ok := f.delegate.RenderMatch(0, true)
	if !ok {
		t.Fatal("RenderMatch(0) reported absent")
	}
	if view.Text != "8 spaces" {
		t.Errorf("Text = %q, want %q", view.Text, "8 spaces")
	}
	if len(view.Positions) != 1 || view.Positions[0] != 0 {
		t.Errorf("Positions = %v, want [0] (the '8')", view.Positions)
	}
	if !view.Selected {
		t.Error("Selected should be true")
	}

	if _, ok := f.delegate.RenderMatch(99, false); ok {
		t.Error("out-of-range RenderMatch should report absent")
	}
}

func TestScenario_TypeEightAndConfirm(t *testing.T) {
	f := newFixture(t)
	f.openActive(t, "src/main.rs")

	// Open picker with no query: 4 candidates in fixed order.
	f.delegate.UpdateMatches("")
	f.disp.pump(t, 1)
	if f.delegate.MatchCount() != 4 {
		t.Fatalf("MatchCount = %d, want 4", f.delegate.MatchCount())
	}

	// Type "8": exactly one match, id 8, '8' highlighted.
	f.delegate.UpdateMatches("8")
	f.disp.pump(t, 1)
	if f.delegate.MatchCount() != 1 {
		t.Fatalf("MatchCount = %d, want 1", f.delegate.MatchCount())
	}
	view, _ := f.delegate.RenderMatch(0, true)
	if view.Text != "8 spaces" || len(view.Positions) != 1 || view.Positions[0] != 0 {
		t.Errorf("unexpected match view: %+v", view)
	}

	// Confirm: one write, one dismissal.
	f.delegate.Confirm()
	content, ok := f.store.LocalSettings(f.tree.ID, "src/main.rs")
	if !ok {
		t.Fatal("no override written")
	}
	for _, want := range []string{"indent_size = 8", "indent_style = space", "tab_width=8"} {
		if !strings.Contains(content, want) {
			t.Errorf("override %q missing %q", content, want)
		}
	}
	if f.writes != 1 || f.dismissed != 1 {
		t.Errorf("writes = %d, dismissals = %d; want 1 and 1", f.writes, f.dismissed)
	}
}

func TestCandidatesWithWidths(t *testing.T) {
	candidates := CandidatesWithWidths([]int{3, 2, 16, -1, 12})

	var ids []int
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	want := []int{16, 2, 4, 8, 3, 12}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	if candidates[4].Label != "3 spaces" {
		t.Errorf("extra candidate label = %q, want %q", candidates[4].Label, "3 spaces")
	}
}

func TestDelegateWithExtraCandidates(t *testing.T) {
	f := newFixture(t, WithCandidates(CandidatesWithWidths([]int{3})))
	f.openActive(t, "src/lib.rs")

	f.delegate.UpdateMatches("3")
	f.disp.pump(t, 1)
	if f.delegate.MatchCount() != 1 {
		t.Fatalf("MatchCount = %d, want 1", f.delegate.MatchCount())
	}
	f.delegate.Confirm()

	content, ok := f.store.LocalSettings(f.tree.ID, "src/lib.rs")
	if !ok || !strings.Contains(content, "indent_size = 3") {
		t.Errorf("extra width override = %q, %v", content, ok)
	}
}

var _ Delegate = (*IndentDelegate)(nil)
