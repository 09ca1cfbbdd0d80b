package selector

// Dispatcher serializes callbacks onto the UI goroutine. All Delegate
// methods must be invoked from functions posted to the same dispatcher.
type Dispatcher interface {
	// Post schedules fn to run on the dispatcher goroutine.
	Post(fn func())
}

// MatchView is what a host UI needs to render one match row.
type MatchView struct {
	// Text is the candidate label.
	Text string
	// Positions are the rune indices to highlight.
	Positions []int
	// Selected marks the row under the cursor.
	Selected bool
}

// Delegate is the fixed capability interface a picker UI drives selection
// logic through. Any host UI can own a Delegate.
type Delegate interface {
	// Placeholder is the query-input hint text.
	Placeholder() string

	// MatchCount is the number of currently visible matches.
	MatchCount() int

	// SelectedIndex is the index of the row under the cursor.
	SelectedIndex() int

	// SetSelectedIndex stores a caller-validated index directly. The
	// caller must pass a value in range; no clamping happens here.
	SetSelectedIndex(ix int)

	// UpdateMatches starts an asynchronous filter pass for the query.
	// A newer call supersedes any still-running pass.
	UpdateMatches(query string)

	// Confirm applies the selected candidate, if any, then dismisses.
	// Confirm is best-effort then close, never "require a selection".
	Confirm()

	// Dismissed notifies the owning UI shell that the picker is done.
	Dismissed()

	// RenderMatch describes the match at ix for rendering. ok is false
	// when ix is out of range.
	RenderMatch(ix int, selected bool) (MatchView, bool)
}
