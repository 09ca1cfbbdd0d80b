package picker

import (
	"github.com/dshills/tabstop/internal/selector"
)

// Picker is a uniform-list modal that drives a selector.Delegate. All
// methods must run on the dispatcher goroutine.
type Picker struct {
	delegate selector.Delegate
	query    []rune
	open     bool
}

// New creates a picker over the delegate.
func New(delegate selector.Delegate) *Picker {
	return &Picker{delegate: delegate}
}

// Open resets the query and kicks off the initial (empty) filter pass.
func (p *Picker) Open() {
	p.open = true
	p.query = nil
	p.delegate.UpdateMatches("")
}

// IsOpen reports whether the modal is showing.
func (p *Picker) IsOpen() bool {
	return p.open
}

// Query returns the current query text.
func (p *Picker) Query() string {
	return string(p.query)
}

// HandleEvent routes one input event. handled is false for events the
// picker does not consume.
func (p *Picker) HandleEvent(ev Event) bool {
	if !p.open {
		return false
	}

	switch ev.Key {
	case KeyRune:
		p.query = append(p.query, ev.Rune)
		p.delegate.UpdateMatches(string(p.query))
	case KeyBackspace:
		if len(p.query) > 0 {
			p.query = p.query[:len(p.query)-1]
			p.delegate.UpdateMatches(string(p.query))
		}
	case KeyUp:
		if ix := p.delegate.SelectedIndex(); ix > 0 {
			p.delegate.SetSelectedIndex(ix - 1)
		}
	case KeyDown:
		if ix := p.delegate.SelectedIndex(); ix+1 < p.delegate.MatchCount() {
			p.delegate.SetSelectedIndex(ix + 1)
		}
	case KeyEnter:
		p.open = false
		p.delegate.Confirm()
	case KeyEscape:
		p.open = false
		p.delegate.Dismissed()
	default:
		return false
	}
	return true
}

// Close dismisses the picker from the outside (e.g. focus loss).
func (p *Picker) Close() {
	if !p.open {
		return
	}
	p.open = false
	p.delegate.Dismissed()
}

// Render draws the query line and the match list starting at the given
// origin. Matched runes are underlined; the selected row is reversed.
func (p *Picker) Render(b Backend, x, y, width int) {
	if !p.open || width <= 0 {
		return
	}

	// Query line, with the placeholder when empty.
	line := string(p.query)
	queryStyle := Style{}
	if line == "" {
		line = p.delegate.Placeholder()
		queryStyle = Style{Bold: true}
	}
	drawText(b, x, y, width, "> "+line, queryStyle)
	b.ShowCursor(x+2+len(p.query), y)

	for ix := 0; ix < p.delegate.MatchCount(); ix++ {
		selected := ix == p.delegate.SelectedIndex()
		view, ok := p.delegate.RenderMatch(ix, selected)
		if !ok {
			continue
		}
		p.renderRow(b, x, y+1+ix, width, view)
	}

	b.Show()
}

// renderRow draws one match with highlight positions applied.
func (p *Picker) renderRow(b Backend, x, y, width int, view selector.MatchView) {
	highlighted := make(map[int]bool, len(view.Positions))
	for _, pos := range view.Positions {
		highlighted[pos] = true
	}

	base := Style{Reverse: view.Selected}

	col := x
	// Clear the row margin before the label.
	b.SetCell(col, y, ' ', base)
	col++

	for i, r := range []rune(view.Text) {
		if col >= x+width {
			break
		}
		style := base
		if highlighted[i] {
			style.Underline = true
			style.Bold = true
		}
		b.SetCell(col, y, r, style)
		col++
	}

	for col < x+width {
		b.SetCell(col, y, ' ', base)
		col++
	}
}

// drawText writes a string, padding the remainder of the width.
func drawText(b Backend, x, y, width int, text string, style Style) {
	col := x
	for _, r := range text {
		if col >= x+width {
			break
		}
		b.SetCell(col, y, r, style)
		col++
	}
	for col < x+width {
		b.SetCell(col, y, ' ', style)
		col++
	}
}
