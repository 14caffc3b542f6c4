package particle

import "math"

// HitTester decides whether a pointer at (x, y) hits a particle.
type HitTester interface {
	Hit(p Particle, x, y float64) bool
}

// Circle hits particles whose centre lies within Radius of the point.
// A zero Radius uses each particle's own radius.
type Circle struct {
	Radius float64
}

// Hit implements HitTester.
func (c Circle) Hit(p Particle, x, y float64) bool {
	r := c.Radius
	if r <= 0 {
		r = p.Radius
	}
	return math.Hypot(p.X-x, p.Y-y) <= r
}

// Box hits particles whose axis-aligned bounding box, grown by Pad, contains the point.
type Box struct {
	Pad float64
}

// Hit implements HitTester.
func (b Box) Hit(p Particle, x, y float64) bool {
	r := p.Radius + b.Pad
	return x >= p.X-r && x <= p.X+r && y >= p.Y-r && y <= p.Y+r
}

// CellBox hits particles sharing the W×H grid cell of the point.
// Used by surfaces whose pointer resolution is a whole cell.
type CellBox struct {
	W, H float64
}

// Hit implements HitTester.
func (c CellBox) Hit(p Particle, x, y float64) bool {
	if c.W <= 0 || c.H <= 0 {
		return false
	}
	return math.Floor(p.X/c.W) == math.Floor(x/c.W) &&
		math.Floor(p.Y/c.H) == math.Floor(y/c.H)
}

type anyOf []HitTester

// AnyOf hits when at least one of the testers hits.
func AnyOf(testers ...HitTester) HitTester {
	return anyOf(testers)
}

func (a anyOf) Hit(p Particle, x, y float64) bool {
	for _, t := range a {
		if t != nil && t.Hit(p, x, y) {
			return true
		}
	}
	return false
}
