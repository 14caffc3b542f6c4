// Package particle is the simulation core behind every page background:
// a random walk with elastic boundary reflection, prunable by pointer hits.
package particle

import (
	"fmt"
	"strconv"
	"time"
)

// Particle is a simulated point rendered as a small glowing circle.
type Particle struct {
	ID     uint64
	X, Y   float64
	DX, DY float64
	Radius float64
}

// Color is a straight (non-premultiplied) RGBA colour with alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

// Glow is the fixed translucent fill every particle is drawn with.
var Glow = Color{R: 0, G: 255, B: 0, A: 0.7}

// CSS formats the colour as a css rgba() value.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Over composites c over an opaque background and returns the resulting RGB.
func (c Color) Over(bg Color) (r, g, b uint8) {
	mix := func(fg, back uint8) uint8 {
		return uint8(float64(fg)*c.A + float64(back)*(1-c.A) + 0.5)
	}
	return mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B)
}

// Preset bundles the per-page particle parameters.
type Preset struct {
	Count         int
	Speed         float64 // velocity components are drawn from [-Speed, +Speed)
	MinRadius     float64
	MaxRadius     float64
	Hit           HitTester
	FrameInterval time.Duration
}

// Options returns the field options described by the preset.
func (p Preset) Options() []Option {
	opts := []Option{
		WithSpeed(p.Speed),
		WithRadius(p.MinRadius, p.MaxRadius),
	}
	if p.Hit != nil {
		opts = append(opts, WithHitTester(p.Hit))
	}
	return opts
}
