package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// LineEditor is a single-line text input.
type LineEditor struct {
	text   []rune
	cursor int
}

// Text returns the current input.
func (e *LineEditor) Text() string { return string(e.text) }

// SetText replaces the input and moves the cursor to its end.
func (e *LineEditor) SetText(s string) {
	e.text = []rune(s)
	e.cursor = len(e.text)
}

// Cursor returns the display column of the cursor.
func (e *LineEditor) Cursor() int {
	return runewidth.StringWidth(string(e.text[:e.cursor]))
}

// HandleKey applies an editing key. It returns false for keys it does not handle.
func (e *LineEditor) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyRune:
		e.insert(ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.cursor > 0 {
			e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
			e.cursor--
		}
	case tcell.KeyDelete:
		if e.cursor < len(e.text) {
			e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
		}
	case tcell.KeyLeft:
		e.cursor = max(e.cursor-1, 0)
	case tcell.KeyRight:
		e.cursor = min(e.cursor+1, len(e.text))
	case tcell.KeyHome, tcell.KeyCtrlA:
		e.cursor = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		e.cursor = len(e.text)
	case tcell.KeyCtrlU:
		e.text = e.text[:0]
		e.cursor = 0
	default:
		return false
	}
	return true
}

func (e *LineEditor) insert(r rune) {
	e.text = append(e.text, 0)
	copy(e.text[e.cursor+1:], e.text[e.cursor:])
	e.text[e.cursor] = r
	e.cursor++
}
