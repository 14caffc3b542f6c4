// Package page assembles a tool page: its prompt pipeline and the particle
// field animating behind it, with a lifecycle bound to the page being shown.
package page

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/particle"
	"github.com/kailas-cloud/boostube/internal/domain/tool"
	"github.com/kailas-cloud/boostube/internal/usecase/animation"
	"github.com/kailas-cloud/boostube/internal/usecase/pipeline"
)

// Viewport is the initial particle field extent.
type Viewport struct {
	Width, Height float64
}

// Page is one tool page.
type Page struct {
	Tool     tool.Tool
	Pipeline *pipeline.Pipeline
	Animator *animation.Animator
}

// New creates a closed page for t. Call Open to populate the field and start the loop.
func New(t tool.Tool, src pipeline.Source, vp Viewport, logger *zap.Logger, opts ...pipeline.Option) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("tool", string(t.ID)))

	field := particle.New(vp.Width, vp.Height, t.Preset.Options()...)
	return &Page{
		Tool:     t,
		Pipeline: pipeline.New(string(t.ID), src, t.Failure, logger, opts...),
		Animator: animation.New(string(t.ID), field, t.Preset.FrameInterval, logger),
	}
}

// Open seeds the field with the preset count and starts the frame loop.
func (p *Page) Open(ctx context.Context) {
	p.Animator.Initialize(p.Tool.Preset.Count)
	p.Animator.Start(ctx)
}

// Close stops the frame loop, drops the particles and tears the pipeline down.
// No frame or response touches the page after Close returns.
func (p *Page) Close() {
	p.Animator.Stop()
	p.Animator.Clear()
	p.Pipeline.Close()
}

// Set holds the pages of a session keyed by tool id.
type Set struct {
	pages map[tool.ID]*Page
	order []tool.ID
}

// NewSet creates a set. Later pages replace earlier ones with the same id.
func NewSet(pages ...*Page) *Set {
	s := &Set{pages: make(map[tool.ID]*Page, len(pages))}
	for _, p := range pages {
		if _, ok := s.pages[p.Tool.ID]; !ok {
			s.order = append(s.order, p.Tool.ID)
		}
		s.pages[p.Tool.ID] = p
	}
	return s
}

// Lookup returns the page for id.
func (s *Set) Lookup(id tool.ID) (*Page, error) {
	p, ok := s.pages[id]
	if !ok {
		return nil, fmt.Errorf("page %q: %w", id, domain.ErrUnknownTool)
	}
	return p, nil
}

// All returns the pages in registration order.
func (s *Set) All() []*Page {
	out := make([]*Page, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pages[id])
	}
	return out
}

// Open opens every page.
func (s *Set) Open(ctx context.Context) {
	for _, p := range s.All() {
		p.Open(ctx)
	}
}

// Resize applies a new viewport to every page.
func (s *Set) Resize(width, height float64) {
	for _, p := range s.All() {
		p.Animator.Resize(width, height)
	}
}

// Close closes every page.
func (s *Set) Close() {
	for _, p := range s.All() {
		p.Close()
	}
}
