package picker

// Key identifies the picker-relevant keys.
type Key int

const (
	// KeyRune is a printable character (see Event.Rune).
	KeyRune Key = iota
	// KeyUp moves the selection up.
	KeyUp
	// KeyDown moves the selection down.
	KeyDown
	// KeyEnter confirms the selection.
	KeyEnter
	// KeyEscape dismisses the picker.
	KeyEscape
	// KeyBackspace deletes the last query rune.
	KeyBackspace
)

// Event is a picker input event.
type Event struct {
	Key  Key
	Rune rune
}

// Style carries the attributes the picker renders with.
type Style struct {
	Bold      bool
	Reverse   bool
	Underline bool
}

// Backend is the minimal drawing surface the picker renders onto.
type Backend interface {
	// Size returns the surface dimensions in cells.
	Size() (width, height int)
	// SetCell places a rune at the given cell.
	SetCell(x, y int, r rune, style Style)
	// ShowCursor positions the text cursor.
	ShowCursor(x, y int)
	// Show flushes pending drawing to the terminal.
	Show()
}
