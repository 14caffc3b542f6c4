package pipeline

import (
	"context"

	"github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/domain/state"
)

// Source issues the single remote call behind a submission and shapes its response.
type Source interface {
	Fetch(ctx context.Context, input string) (state.Payload, error)
}

// KeywordLookup fetches a keyword metrics record.
type KeywordLookup interface {
	Lookup(ctx context.Context, keyword string) (keyword.Metric, error)
}
