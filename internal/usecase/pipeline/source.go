package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/shape"
	"github.com/kailas-cloud/boostube/internal/domain/state"
)

// TextSource generates text and parses it with the tool's shape.
// The generator chain renders the prompt template around the raw input.
type TextSource struct {
	generator domain.Generator
	shape     shape.Shape
}

// NewTextSource creates a text source.
func NewTextSource(g domain.Generator, s shape.Shape) *TextSource {
	return &TextSource{generator: g, shape: s}
}

// Fetch implements Source. Zero parsed items is a payload shape error.
func (s *TextSource) Fetch(ctx context.Context, input string) (state.Payload, error) {
	res, err := s.generator.Generate(ctx, input)
	if err != nil {
		return state.Payload{}, fmt.Errorf("text source: %w", err)
	}
	items := s.shape.Parse(res.Text)
	if len(items) == 0 {
		return state.Payload{}, fmt.Errorf("%s parsed no items: %w", s.shape.Name(), domain.ErrPayloadShape)
	}
	return state.Payload{Items: items}, nil
}

// KeywordSource returns the keyword metrics record unchanged.
type KeywordSource struct {
	lookup KeywordLookup
}

// NewKeywordSource creates a keyword source.
func NewKeywordSource(l KeywordLookup) *KeywordSource {
	return &KeywordSource{lookup: l}
}

// Fetch implements Source.
func (s *KeywordSource) Fetch(ctx context.Context, input string) (state.Payload, error) {
	m, err := s.lookup.Lookup(ctx, strings.TrimSpace(input))
	if err != nil {
		return state.Payload{}, fmt.Errorf("keyword source: %w", err)
	}
	return state.Payload{Keyword: &m}, nil
}
