package aggregate

import (
	"context"
	"log"
	"strings"
	"time"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/types"

	"golang.org/x/sync/errgroup"
)

// Batch is the combined, deduplicated output of one fan-out across all
// enabled sources.
type Batch struct {
	Postings   []domain.Posting
	Seen       int // before dedup
	Duplicates int
	Finalizers []func(context.Context) error
}

// Key is the within-batch identity of a posting. Two sources listing the
// same role at the same company collapse to one candidate.
func Key(company, title string) string {
	return strings.ToLower(strings.TrimSpace(company)) + "|" + strings.ToLower(strings.TrimSpace(title))
}

// Run fetches every source concurrently. Results land in per-source slots
// indexed by registration order, so the concatenated batch (and therefore
// which duplicate survives) is stable run to run regardless of which
// goroutine finishes first.
func Run(ctx context.Context, fetchers []types.Fetcher) Batch {
	slots := make([]types.Result, len(fetchers))

	var g errgroup.Group
	for i, f := range fetchers {
		i, f := i, f

		g.Go(func() error {
			timeout := 2 * time.Minute
			switch f.Name() {
			case "greenhouse", "lever", "smartrecruiters", "workday":
				timeout = 5 * time.Minute
			}

			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Printf("[%s] Running...", f.Name())
			res, err := f.Fetch(fctx)
			if err != nil {
				log.Printf("[source:%s] error: %v", f.Name(), err)
				// best-effort: don't cancel siblings, keep any partials
			}
			slots[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var b Batch
	seen := make(map[string]bool)
	for _, res := range slots {
		if res.Finalize != nil {
			b.Finalizers = append(b.Finalizers, res.Finalize)
		}
		for _, p := range res.Postings {
			b.Seen++
			k := Key(p.Company, p.Title)
			if seen[k] {
				b.Duplicates++
				continue
			}
			seen[k] = true
			b.Postings = append(b.Postings, p)
		}
		if len(res.Postings) > 0 {
			log.Printf("[aggregate] source=%s postings=%d", res.Source, len(res.Postings))
		}
	}
	return b
}
