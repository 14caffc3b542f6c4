// Package state models the observable result of a prompt pipeline.
package state

import (
	"slices"

	"github.com/kailas-cloud/boostube/internal/domain/keyword"
)

// Kind tags the variant a State holds.
type Kind string

// Pipeline state variants.
const (
	Idle    Kind = "idle"
	Loading Kind = "loading"
	Success Kind = "success"
	Failure Kind = "failure"
)

// Payload is the parsed result of a successful submission.
// Text tools fill Items, the keywords tool fills Keyword.
type Payload struct {
	Items   []string
	Keyword *keyword.Metric
}

// Empty reports whether the payload carries nothing displayable.
func (p Payload) Empty() bool {
	return len(p.Items) == 0 && p.Keyword == nil
}

// State is an immutable snapshot of a pipeline. Exactly one variant holds.
type State struct {
	kind       Kind
	payload    Payload
	message    string
	generation uint64
}

// NewIdle returns the Idle state.
func NewIdle(generation uint64) State {
	return State{kind: Idle, generation: generation}
}

// NewLoading returns the Loading state.
func NewLoading(generation uint64) State {
	return State{kind: Loading, generation: generation}
}

// NewSuccess returns a Success state holding a copy of payload.
func NewSuccess(generation uint64, payload Payload) State {
	p := Payload{Items: slices.Clone(payload.Items)}
	if payload.Keyword != nil {
		m := *payload.Keyword
		p.Keyword = &m
	}
	return State{kind: Success, payload: p, generation: generation}
}

// NewFailure returns a Failure state with a user-facing message.
func NewFailure(generation uint64, message string) State {
	return State{kind: Failure, message: message, generation: generation}
}

// Kind returns the variant tag.
func (s State) Kind() Kind { return s.kind }

// Generation returns the submission generation that produced the state.
func (s State) Generation() uint64 { return s.generation }

// Loading reports whether a submission is in flight.
func (s State) Loading() bool { return s.kind == Loading }

// Items returns a copy of the parsed items of a Success state.
func (s State) Items() []string { return slices.Clone(s.payload.Items) }

// Keyword returns the keyword record of a Success state, if any.
func (s State) Keyword() (keyword.Metric, bool) {
	if s.payload.Keyword == nil {
		return keyword.Metric{}, false
	}
	return *s.payload.Keyword, true
}

// Message returns the user-facing error of a Failure state.
func (s State) Message() string { return s.message }
