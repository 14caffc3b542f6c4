// Package pipeline turns one line of user input into a displayable result.
//
// A pipeline is a small state machine, Idle -> Loading -> Success|Failure,
// re-entered on every submission. Exactly one remote call is issued per
// submission and every failure is converted into a Failure state carrying
// the tool's user-facing message.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/state"
	logpkg "github.com/kailas-cloud/boostube/internal/logger"
	"github.com/kailas-cloud/boostube/internal/metrics"
)

// StalePolicy decides what happens to a response whose submission was superseded.
type StalePolicy string

const (
	// DiscardStale drops superseded responses; the visible result always
	// belongs to the latest submission.
	DiscardStale StalePolicy = "discard"
	// LastWins applies every response; the last one to resolve wins.
	LastWins StalePolicy = "last_wins"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStalePolicy sets the stale response policy. Default: DiscardStale.
func WithStalePolicy(p StalePolicy) Option {
	return func(pl *Pipeline) {
		if p == DiscardStale || p == LastWins {
			pl.policy = p
		}
	}
}

// WithTimeout bounds every remote call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(pl *Pipeline) {
		if d >= 0 {
			pl.timeout = d
		}
	}
}

// Pipeline owns the prompt state of one tool page.
type Pipeline struct {
	tool    string
	source  Source
	failure string
	policy  StalePolicy
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	current    state.State
	generation uint64
	closed     bool
	observers  map[uint64]func(state.State)
	nextObs    uint64

	lifetime context.Context
	stop     context.CancelFunc
	inflight sync.WaitGroup
}

// New creates a pipeline in the Idle state. failure is the user-facing
// message shown for every failed submission.
func New(tool string, source Source, failure string, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	lifetime, stop := context.WithCancel(context.Background())
	p := &Pipeline{
		tool:      tool,
		source:    source,
		failure:   failure,
		policy:    DiscardStale,
		logger:    logger,
		current:   state.NewIdle(0),
		observers: make(map[uint64]func(state.State)),
		lifetime:  lifetime,
		stop:      stop,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// State returns the current state.
func (p *Pipeline) State() state.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnChange registers fn to receive every state transition, including Loading.
// fn runs on the goroutine that caused the transition. The returned func unregisters it.
func (p *Pipeline) OnChange(fn func(state.State)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

// Reset returns the pipeline to Idle, clearing any result or error.
// A response still in flight is then stale.
func (p *Pipeline) Reset() state.State {
	p.mu.Lock()
	if p.closed {
		s := p.current
		p.mu.Unlock()
		return s
	}
	p.generation++
	s := p.transition(state.NewIdle(p.generation))
	return s
}

// Submit runs one submission and blocks until it settles.
//
// Empty or whitespace-only input leaves the state untouched and returns
// domain.ErrEmptyInput. Otherwise the pipeline moves to Loading before the
// remote call is issued and settles to Success or Failure; source errors are
// converted into Failure and not returned. A response superseded under
// DiscardStale returns domain.ErrStaleResponse, and a submission to (or
// interrupted by) a closed pipeline returns domain.ErrPipelineClosed.
// A call that fails after ctx is done was abandoned by the caller: the
// pipeline returns to Idle and the error wraps ctx.Err().
func (p *Pipeline) Submit(ctx context.Context, input string) (state.State, error) {
	if strings.TrimSpace(input) == "" {
		metrics.PipelineSubmissionsTotal.WithLabelValues(p.tool, "ignored").Inc()
		return p.State(), domain.ErrEmptyInput
	}

	p.mu.Lock()
	if p.closed {
		s := p.current
		p.mu.Unlock()
		metrics.PipelineSubmissionsTotal.WithLabelValues(p.tool, "closed").Inc()
		return s, domain.ErrPipelineClosed
	}
	p.generation++
	gen := p.generation
	p.inflight.Add(1)
	p.transition(state.NewLoading(gen))
	defer p.inflight.Done()

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopAfter := context.AfterFunc(p.lifetime, cancel)
	defer stopAfter()
	if p.timeout > 0 {
		var cancelTimeout context.CancelFunc
		callCtx, cancelTimeout = context.WithTimeout(callCtx, p.timeout)
		defer cancelTimeout()
	}

	start := time.Now()
	payload, err := p.fetch(callCtx, input)
	metrics.PipelineDuration.WithLabelValues(p.tool).Observe(time.Since(start).Seconds())

	if err == nil && payload.Empty() {
		err = fmt.Errorf("source returned an empty payload: %w", domain.ErrPayloadShape)
	}
	var abandoned error
	if err != nil {
		abandoned = ctx.Err()
	}
	return p.settle(ctx, gen, payload, err, abandoned)
}

// fetch calls the source, converting a panic into an error so the
// submission still settles.
func (p *Pipeline) fetch(ctx context.Context, input string) (payload state.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Source panicked", zap.String("tool", p.tool), zap.Any("panic", r))
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return p.source.Fetch(ctx, input)
}

// settle applies the outcome of submission gen. abandoned is the caller's
// context error when the call failed after the caller gave up.
func (p *Pipeline) settle(ctx context.Context, gen uint64, payload state.Payload, err, abandoned error) (state.State, error) {
	log := logpkg.FromContextOr(ctx, p.logger)
	p.mu.Lock()

	if p.closed {
		s := p.current
		p.mu.Unlock()
		metrics.PipelineSubmissionsTotal.WithLabelValues(p.tool, "closed").Inc()
		return s, domain.ErrPipelineClosed
	}

	if gen != p.generation && p.policy == DiscardStale {
		s := p.current
		p.mu.Unlock()
		metrics.PipelineSubmissionsTotal.WithLabelValues(p.tool, "stale").Inc()
		log.Debug("Dropped stale response",
			zap.String("tool", p.tool),
			zap.Uint64("generation", gen),
			zap.Uint64("current", s.Generation()),
			zap.NamedError("cause", err),
		)
		return s, domain.ErrStaleResponse
	}

	if abandoned != nil {
		metrics.PipelineSubmissionsTotal.WithLabelValues(p.tool, "abandoned").Inc()
		log.Debug("Submission abandoned by caller",
			zap.String("tool", p.tool),
			zap.Uint64("generation", gen),
			zap.NamedError("cause", err),
		)
		abandonErr := fmt.Errorf("submission abandoned: %w", abandoned)
		if gen != p.generation {
			s := p.current
			p.mu.Unlock()
			return s, abandonErr
		}
		return p.transition(state.NewIdle(gen)), abandonErr
	}

	if err != nil {
		metrics.PipelineSubmissionsTotal.WithLabelValues(p.tool, "failure").Inc()
		// Remote failures are expected; anything else is a bug in a source.
		logf := log.Error
		if domain.IsFailure(err) {
			logf = log.Warn
		}
		logf("Submission failed",
			zap.String("tool", p.tool),
			zap.Uint64("generation", gen),
			zap.Bool("transport", errors.Is(err, domain.ErrTransport)),
			zap.Bool("payload_shape", errors.Is(err, domain.ErrPayloadShape)),
			zap.Error(err),
		)
		return p.transition(state.NewFailure(gen, p.failure)), nil
	}

	metrics.PipelineSubmissionsTotal.WithLabelValues(p.tool, "success").Inc()
	return p.transition(state.NewSuccess(gen, payload)), nil
}

// transition sets the state and notifies observers. Must be called with
// p.mu held; it releases the lock before calling observers.
func (p *Pipeline) transition(s state.State) state.State {
	p.current = s
	observers := make([]func(state.State), 0, len(p.observers))
	for _, fn := range p.observers {
		observers = append(observers, fn)
	}
	p.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
	return s
}

// Close tears the pipeline down: in-flight calls are cancelled and awaited,
// no response mutates state afterwards, and later submissions fail with
// domain.ErrPipelineClosed. Close is idempotent.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	clear(p.observers)
	p.mu.Unlock()

	p.stop()
	p.inflight.Wait()

	p.mu.Lock()
	p.generation++
	p.current = state.NewIdle(p.generation)
	p.mu.Unlock()
}
