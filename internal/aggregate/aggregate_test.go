package aggregate

import (
	"context"
	"errors"
	"testing"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	name     string
	postings []domain.Posting
	err      error
}

func (s stubFetcher) Name() string { return s.name }

func (s stubFetcher) Fetch(context.Context) (types.Result, error) {
	return types.Result{Source: s.name, Postings: s.postings}, s.err
}

func posting(company, title, applyURL string) domain.Posting {
	return domain.Posting{Company: company, Title: title, ApplyURL: applyURL, SourceURL: applyURL}
}

func TestRunDedupFirstWins(t *testing.T) {
	// Same role on two boards: only the copy from the earlier-registered
	// source survives, even though the apply URLs differ.
	first := stubFetcher{name: "a", postings: []domain.Posting{
		posting("Acme", "Junior Developer", "https://a.example/1"),
	}}
	second := stubFetcher{name: "b", postings: []domain.Posting{
		posting("ACME", "junior developer", "https://b.example/1"),
		posting("Globex", "Data Engineer", "https://b.example/2"),
	}}

	b := Run(context.Background(), []types.Fetcher{first, second})

	require.Len(t, b.Postings, 2)
	assert.Equal(t, "https://a.example/1", b.Postings[0].ApplyURL)
	assert.Equal(t, "Globex", b.Postings[1].Company)
	assert.Equal(t, 3, b.Seen)
	assert.Equal(t, 1, b.Duplicates)
}

func TestRunKeepsRegistrationOrder(t *testing.T) {
	fetchers := []types.Fetcher{
		stubFetcher{name: "one", postings: []domain.Posting{posting("A", "x", "u1")}},
		stubFetcher{name: "two", postings: []domain.Posting{posting("B", "x", "u2")}},
		stubFetcher{name: "three", postings: []domain.Posting{posting("C", "x", "u3")}},
	}

	for i := 0; i < 20; i++ {
		b := Run(context.Background(), fetchers)
		require.Len(t, b.Postings, 3)
		assert.Equal(t, []string{"A", "B", "C"}, []string{
			b.Postings[0].Company, b.Postings[1].Company, b.Postings[2].Company,
		})
	}
}

func TestRunFailingSourceContributesNothing(t *testing.T) {
	fetchers := []types.Fetcher{
		stubFetcher{name: "dead", err: errors.New("connection refused")},
		stubFetcher{name: "alive", postings: []domain.Posting{posting("Acme", "Dev", "u")}},
	}

	b := Run(context.Background(), fetchers)
	require.Len(t, b.Postings, 1)
	assert.Equal(t, 1, b.Seen)
}

func TestRunPartialResultFromFailingSourceKept(t *testing.T) {
	// A source that errors after collecting some pages still hands over
	// what it has.
	fetchers := []types.Fetcher{
		stubFetcher{
			name:     "flaky",
			postings: []domain.Posting{posting("Acme", "Dev", "u")},
			err:      errors.New("page 2 timed out"),
		},
	}

	b := Run(context.Background(), fetchers)
	assert.Len(t, b.Postings, 1)
}

func TestKeyNormalization(t *testing.T) {
	assert.Equal(t, Key("Acme ", "Junior Developer"), Key(" acme", "JUNIOR DEVELOPER"))
	assert.NotEqual(t, Key("Acme", "Junior Developer"), Key("Acme", "Senior Developer"))
}
