// Package tui renders a tool page on a terminal: the particle field drawn
// imperatively every frame, an input line and a result panel.
package tui

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/kailas-cloud/boostube/internal/domain/particle"
)

// A terminal cell covers CellWidth×CellHeight virtual pixels of the field.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Background is the page background particles are composited over.
var Background = particle.Color{R: 0, G: 0, B: 0, A: 1}

// Canvas draws particles onto a tcell screen, one glyph per particle.
// Frames are cleared and presented by the caller.
type Canvas struct {
	screen tcell.Screen
}

// NewCanvas creates a canvas on screen.
func NewCanvas(screen tcell.Screen) *Canvas {
	return &Canvas{screen: screen}
}

// BeginFrame implements particle.Renderer.
func (c *Canvas) BeginFrame(_, _ float64) {}

// DrawParticle implements particle.Renderer.
func (c *Canvas) DrawParticle(p particle.Particle, col particle.Color) {
	x, y := CellAt(p.X, p.Y)
	w, h := c.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	r, g, b := col.Over(Background)
	style := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b))).
		Background(tcell.NewRGBColor(int32(Background.R), int32(Background.G), int32(Background.B)))
	c.screen.SetContent(x, y, Glyph(p.Radius), nil, style)
}

// EndFrame implements particle.Renderer.
func (c *Canvas) EndFrame() {}

// Glyph picks a dot size for a particle radius.
func Glyph(radius float64) rune {
	switch {
	case radius < 2:
		return '·'
	case radius < 4:
		return '•'
	default:
		return '●'
	}
}

// CellAt maps a field position to the terminal cell containing it.
// Negative positions fall in negative cells, matching particle.CellBox.
func CellAt(x, y float64) (col, row int) {
	return int(math.Floor(x / CellWidth)), int(math.Floor(y / CellHeight))
}

// PointAt maps a terminal cell to the field position at its centre.
func PointAt(col, row int) (x, y float64) {
	return float64(col)*CellWidth + CellWidth/2, float64(row)*CellHeight + CellHeight/2
}

// Viewport returns the field extent covered by a cols×rows terminal.
func Viewport(cols, rows int) (width, height float64) {
	return float64(cols * CellWidth), float64(rows * CellHeight)
}

// Preset adapts a page preset to cell-resolution pointers: a click also hits
// every particle sharing the clicked cell.
func Preset(p particle.Preset) particle.Preset {
	p.Hit = particle.AnyOf(p.Hit, particle.CellBox{W: CellWidth, H: CellHeight})
	return p
}
