package particle

import (
	"math/rand/v2"
	"time"
)

// Default field parameters.
const (
	DefaultSpeed     = 0.25
	DefaultMinRadius = 1
	DefaultMaxRadius = 4
)

// Field owns a mutable particle set inside a width×height viewport.
// A Field is not safe for concurrent use; the animation loop serialises access.
type Field struct {
	width, height float64
	particles     []Particle
	nextID        uint64

	speed     float64
	minRadius float64
	maxRadius float64
	hit       HitTester
	rng       *rand.Rand
}

// Option configures a Field.
type Option func(*Field)

// WithSpeed sets the half-range of the random velocity components.
func WithSpeed(speed float64) Option {
	return func(f *Field) {
		if speed >= 0 {
			f.speed = speed
		}
	}
}

// WithRadius sets the radius range of new particles.
func WithRadius(minRadius, maxRadius float64) Option {
	return func(f *Field) {
		if minRadius > 0 && maxRadius >= minRadius {
			f.minRadius = minRadius
			f.maxRadius = maxRadius
		}
	}
}

// WithHitTester sets the pointer hit strategy used by RemoveNear.
func WithHitTester(h HitTester) Option {
	return func(f *Field) {
		if h != nil {
			f.hit = h
		}
	}
}

// WithRand sets the random source. Tests pass a seeded one.
func WithRand(r *rand.Rand) Option {
	return func(f *Field) {
		if r != nil {
			f.rng = r
		}
	}
}

// New creates an empty field. Negative extents are treated as zero.
func New(width, height float64, opts ...Option) *Field {
	seed := uint64(time.Now().UnixNano())
	f := &Field{
		width:     max(width, 0),
		height:    max(height, 0),
		speed:     DefaultSpeed,
		minRadius: DefaultMinRadius,
		maxRadius: DefaultMaxRadius,
		hit:       Circle{},
		rng:       rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Initialize replaces the particle set with count randomly placed particles.
func (f *Field) Initialize(count int) {
	count = max(count, 0)
	f.particles = make([]Particle, 0, count)
	for range count {
		f.nextID++
		f.particles = append(f.particles, Particle{
			ID:     f.nextID,
			X:      f.rng.Float64() * f.width,
			Y:      f.rng.Float64() * f.height,
			DX:     (f.rng.Float64()*2 - 1) * f.speed,
			DY:     (f.rng.Float64()*2 - 1) * f.speed,
			Radius: f.minRadius + f.rng.Float64()*(f.maxRadius-f.minRadius),
		})
	}
}

// Advance moves every particle by its velocity and reflects it off the viewport edges.
func (f *Field) Advance() {
	for i := range f.particles {
		p := &f.particles[i]
		p.X, p.DX = reflect(p.X+p.DX, p.DX, f.width)
		p.Y, p.DY = reflect(p.Y+p.DY, p.DY, f.height)
	}
}

// reflect folds pos back into [0, extent] and negates v when pos crossed an edge.
func reflect(pos, v, extent float64) (float64, float64) {
	switch {
	case pos < 0:
		pos, v = -pos, -v
	case pos > extent:
		pos, v = 2*extent-pos, -v
	default:
		return pos, v
	}
	// A step longer than the extent can overshoot the opposite edge.
	return min(max(pos, 0), extent), v
}

// RemoveNear removes every particle hit at (x, y) and returns how many were removed.
func (f *Field) RemoveNear(x, y float64) int {
	kept := f.particles[:0]
	for _, p := range f.particles {
		if !f.hit.Hit(p, x, y) {
			kept = append(kept, p)
		}
	}
	removed := len(f.particles) - len(kept)
	clear(f.particles[len(kept):])
	f.particles = kept
	return removed
}

// Resize changes the viewport and clamps every particle back inside it.
func (f *Field) Resize(width, height float64) {
	f.width, f.height = max(width, 0), max(height, 0)
	for i := range f.particles {
		p := &f.particles[i]
		p.X = min(max(p.X, 0), f.width)
		p.Y = min(max(p.Y, 0), f.height)
	}
}

// Render draws every live particle with the glow colour. It never mutates the field.
func (f *Field) Render(r Renderer) {
	r.BeginFrame(f.width, f.height)
	for _, p := range f.particles {
		r.DrawParticle(p, Glow)
	}
	r.EndFrame()
}

// Clear drops every particle (page teardown).
func (f *Field) Clear() {
	f.particles = nil
}

// Len returns the number of live particles.
func (f *Field) Len() int { return len(f.particles) }

// Size returns the viewport extents.
func (f *Field) Size() (width, height float64) { return f.width, f.height }

// Particles returns a copy of the live particles.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}
