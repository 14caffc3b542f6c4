package pipeline

import (
	"context"
	"sync"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/domain/state"
)

// mockSource implements Source with a pluggable fetch function.
type mockSource struct {
	mu      sync.Mutex
	fetchFn func(ctx context.Context, input string) (state.Payload, error)
	inputs  []string
}

func (m *mockSource) Fetch(ctx context.Context, input string) (state.Payload, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	fn := m.fetchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, input)
	}
	return state.Payload{Items: []string{input}}, nil
}

func (m *mockSource) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// gatedSource blocks each call until released, so tests can interleave submissions.
type gatedSource struct {
	started chan string
	release map[string]chan result
	mu      sync.Mutex
}

type result struct {
	payload state.Payload
	err     error
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan string, 16), release: make(map[string]chan result)}
}

func (g *gatedSource) gate(input string) chan result {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.release[input]
	if !ok {
		ch = make(chan result, 1)
		g.release[input] = ch
	}
	return ch
}

func (g *gatedSource) Fetch(ctx context.Context, input string) (state.Payload, error) {
	ch := g.gate(input)
	g.started <- input
	select {
	case r := <-ch:
		return r.payload, r.err
	case <-ctx.Done():
		return state.Payload{}, ctx.Err()
	}
}

func (g *gatedSource) resolve(input string, items ...string) {
	g.gate(input) <- result{payload: state.Payload{Items: items}}
}

type mockGenerator struct {
	text   string
	err    error
	prompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (domain.GenerationResult, error) {
	m.prompt = prompt
	return domain.GenerationResult{Text: m.text}, m.err
}

type mockLookup struct {
	metric  keyword.Metric
	err     error
	keyword string
}

func (m *mockLookup) Lookup(_ context.Context, kw string) (keyword.Metric, error) {
	m.keyword = kw
	return m.metric, m.err
}

// recorder collects observed transitions.
type recorder struct {
	mu     sync.Mutex
	states []state.State
}

func (r *recorder) observe(s state.State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) kinds() []state.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]state.Kind, len(r.states))
	for i, s := range r.states {
		out[i] = s.Kind()
	}
	return out
}
