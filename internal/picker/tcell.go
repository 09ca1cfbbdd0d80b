package picker

import (
	"github.com/gdamore/tcell/v2"
)

// TcellBackend implements Backend on a tcell screen.
type TcellBackend struct {
	screen tcell.Screen
}

// NewTcellBackend creates and initializes a terminal-backed surface.
func NewTcellBackend() (*TcellBackend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &TcellBackend{screen: screen}, nil
}

// NewTcellBackendFor wraps an existing screen, e.g. a simulation screen
// in tests.
func NewTcellBackendFor(screen tcell.Screen) *TcellBackend {
	return &TcellBackend{screen: screen}
}

// Screen exposes the underlying tcell screen for event polling.
func (b *TcellBackend) Screen() tcell.Screen {
	return b.screen
}

// Shutdown restores the terminal.
func (b *TcellBackend) Shutdown() {
	b.screen.Fini()
}

// Size implements Backend.
func (b *TcellBackend) Size() (int, int) {
	return b.screen.Size()
}

// SetCell implements Backend.
func (b *TcellBackend) SetCell(x, y int, r rune, style Style) {
	b.screen.SetContent(x, y, r, nil, convertStyle(style))
}

// ShowCursor implements Backend.
func (b *TcellBackend) ShowCursor(x, y int) {
	b.screen.ShowCursor(x, y)
}

// Show implements Backend.
func (b *TcellBackend) Show() {
	b.screen.Show()
}

// Clear clears the whole screen.
func (b *TcellBackend) Clear() {
	b.screen.Clear()
}

// convertStyle maps picker style attributes onto tcell.
func convertStyle(style Style) tcell.Style {
	s := tcell.StyleDefault
	if style.Bold {
		s = s.Bold(true)
	}
	if style.Reverse {
		s = s.Reverse(true)
	}
	if style.Underline {
		s = s.Underline(true)
	}
	return s
}

// TranslateEvent maps a tcell event to a picker event. ok is false for
// events the picker does not handle.
func TranslateEvent(ev tcell.Event) (Event, bool) {
	key, isKey := ev.(*tcell.EventKey)
	if !isKey {
		return Event{}, false
	}

	switch key.Key() {
	case tcell.KeyUp:
		return Event{Key: KeyUp}, true
	case tcell.KeyDown:
		return Event{Key: KeyDown}, true
	case tcell.KeyEnter:
		return Event{Key: KeyEnter}, true
	case tcell.KeyEscape:
		return Event{Key: KeyEscape}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Event{Key: KeyBackspace}, true
	case tcell.KeyRune:
		return Event{Key: KeyRune, Rune: key.Rune()}, true
	default:
		return Event{}, false
	}
}
