package domain

import "errors"

var (
	// ErrEmptyInput signals an empty or whitespace-only prompt. Callers ignore it silently.
	ErrEmptyInput = errors.New("empty input")
	// ErrTransport signals a network failure, a non-2xx status or an unreadable body.
	ErrTransport = errors.New("transport error")
	// ErrPayloadShape signals a successful response missing the expected fields.
	ErrPayloadShape = errors.New("unexpected payload shape")
	// ErrProviderUnavailable signals an open circuit breaker in front of a provider.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrUnknownTool signals a tool id with no registered page.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrPipelineClosed signals a submission to a torn-down pipeline.
	ErrPipelineClosed = errors.New("pipeline closed")
	// ErrStaleResponse signals a response superseded by a newer submission.
	ErrStaleResponse = errors.New("stale response")
)

// IsFailure reports whether err belongs to the failure taxonomy a pipeline
// converts into a Failure state (transport or payload shape).
func IsFailure(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrPayloadShape)
}
