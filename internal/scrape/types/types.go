package types

import (
	"context"

	"ghostcheck-engine/internal/domain"
)

// Result is one source's contribution to an ingestion run.
// Finalize, when set, runs after the batch has been persisted (the email
// adapter uses it to mark alert messages seen only once their postings
// made it through the pipeline).
type Result struct {
	Source   string
	Postings []domain.Posting
	Finalize func(context.Context) error
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}
