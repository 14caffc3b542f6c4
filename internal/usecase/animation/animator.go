// Package animation drives a particle field frame by frame.
package animation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain/particle"
	"github.com/kailas-cloud/boostube/internal/metrics"
)

// DefaultFrameInterval is used when the preset has none (about 60 fps).
const DefaultFrameInterval = 16 * time.Millisecond

// Animator owns one particle field and the recurring frame loop that advances it.
// All field access goes through the animator's mutex.
type Animator struct {
	tool     string
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	field   *particle.Field
	onFrame func()

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an animator around field. The tool name labels metrics and logs.
func New(tool string, field *particle.Field, interval time.Duration, logger *zap.Logger) *Animator {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Animator{
		tool:     tool,
		interval: interval,
		logger:   logger,
		field:    field,
	}
}

// OnFrame sets a hook called after every frame of the loop, outside the
// field lock. The hook may call Render or Snapshot but must not call Stop.
func (a *Animator) OnFrame(fn func()) {
	a.mu.Lock()
	a.onFrame = fn
	a.mu.Unlock()
}

// Start launches the frame loop. It returns false if the loop is already running.
// The loop ends when ctx is cancelled or Stop is called.
func (a *Animator) Start(ctx context.Context) bool {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	if a.done != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel, a.done = cancel, done

	go a.loop(ctx, done)

	a.logger.Debug("Animation started",
		zap.String("tool", a.tool),
		zap.Duration("interval", a.interval),
	)
	return true
}

func (a *Animator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hook := a.advance()
			// A tick may race with Stop; never run the hook after cancellation.
			if hook != nil && ctx.Err() == nil {
				hook()
			}
		}
	}
}

// Stop cancels the frame loop and waits for it to exit. After Stop returns no
// frame and no hook runs. Stop on a stopped animator is a no-op.
func (a *Animator) Stop() {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	if a.done == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel, a.done = nil, nil

	a.logger.Debug("Animation stopped", zap.String("tool", a.tool))
}

// Running reports whether the frame loop is active.
func (a *Animator) Running() bool {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()
	return a.done != nil
}

// Step advances exactly one frame synchronously. The frame hook is not called.
func (a *Animator) Step() {
	a.advance()
}

func (a *Animator) advance() func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.field.Advance()
	metrics.ParticlesLive.WithLabelValues(a.tool).Set(float64(a.field.Len()))
	return a.onFrame
}

// Initialize replaces the particle set with count particles.
func (a *Animator) Initialize(count int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.field.Initialize(count)
	metrics.ParticlesLive.WithLabelValues(a.tool).Set(float64(a.field.Len()))
}

// Hit removes every particle hit at (x, y) and returns how many were removed.
func (a *Animator) Hit(x, y float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	removed := a.field.RemoveNear(x, y)
	if removed > 0 {
		metrics.ParticlesRemovedTotal.WithLabelValues(a.tool).Add(float64(removed))
		metrics.ParticlesLive.WithLabelValues(a.tool).Set(float64(a.field.Len()))
	}
	return removed
}

// Resize changes the viewport of the field.
func (a *Animator) Resize(width, height float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.field.Resize(width, height)
}

// Render draws the current frame with r.
func (a *Animator) Render(r particle.Renderer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.field.Render(r)
}

// Snapshot returns the current frame as declarative nodes.
func (a *Animator) Snapshot() particle.Frame {
	var nr particle.NodeRenderer
	a.Render(&nr)
	return nr.Frame()
}

// Clear drops every particle.
func (a *Animator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.field.Clear()
	metrics.ParticlesLive.WithLabelValues(a.tool).Set(0)
}

// Len returns the number of live particles.
func (a *Animator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.field.Len()
}
