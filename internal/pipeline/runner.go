package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/events"
	"ghostcheck-engine/internal/legit"
	"ghostcheck-engine/internal/scrape/types"
	"ghostcheck-engine/internal/store"
	"ghostcheck-engine/internal/verify"
)

// ErrAlreadyRunning means a run or sweep is in flight; only one pipeline
// touches the store at a time.
var ErrAlreadyRunning = errors.New("pipeline already running")

const maxRunErrors = 10

// Store is what the pipeline needs from persistence.
type Store interface {
	ListExistingURLs(ctx context.Context) (map[string]struct{}, error)
	ListStaleVerified(ctx context.Context, olderThan time.Duration) ([]store.JobRecord, error)
	InsertJob(ctx context.Context, r store.JobRecord) (int64, error)
	UpdateVerification(ctx context.Context, id int64, status string, verifiedAt *time.Time, notes string) error
}

// Verifier checks links and scans postings for red flags.
type Verifier interface {
	Verify(ctx context.Context, p domain.Posting) verify.Verdict
	CheckURL(ctx context.Context, raw string) (ok bool, status int)
}

// Result summarizes one ingestion run.
type Result struct {
	RunID      string   `json:"runId"`
	Success    bool     `json:"success"`
	Scraped    int      `json:"scraped"`
	Verified   int      `json:"verified"`
	Added      int      `json:"added"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	DurationMs int64    `json:"durationMs"`
	Errors     []string `json:"errors,omitempty"`
}

func (res *Result) recordError(msg string) {
	if len(res.Errors) < maxRunErrors {
		res.Errors = append(res.Errors, msg)
	}
}

// SweepResult summarizes one re-verification pass over stale records.
type SweepResult struct {
	RunID   string   `json:"runId"`
	Success bool     `json:"success"`
	Checked int      `json:"checked"`
	Expired int      `json:"expired"`
	Errors  []string `json:"errors,omitempty"`
}

func (res *SweepResult) recordError(msg string) {
	if len(res.Errors) < maxRunErrors {
		res.Errors = append(res.Errors, msg)
	}
}

type Status struct {
	Running     bool   `json:"running"`
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastAdded   int    `json:"last_added"`
	LastSkipped int    `json:"last_skipped"`
	LastFailed  int    `json:"last_failed"`
	LastChecked int    `json:"last_checked"`
	LastExpired int    `json:"last_expired"`
}

// Runner owns one sources-to-store pipeline. Batch sizes and pauses keep
// the outbound request rate polite; tests zero the pauses.
type Runner struct {
	Sources  []types.Fetcher
	Store    Store
	Verifier Verifier
	Scorer   legit.Scorer
	Hub      *events.Hub

	VerifyBatch int
	VerifyPause time.Duration
	ScoreBatch  int
	ScorePause  time.Duration
	SweepPause  time.Duration

	// StaleAfter is how long a VERIFIED record may sit before the sweep
	// re-checks its link.
	StaleAfter time.Duration

	running atomic.Bool
	status  atomic.Value // Status
}

func NewRunner(sources []types.Fetcher, st Store, v Verifier, sc legit.Scorer, hub *events.Hub) *Runner {
	return &Runner{
		Sources:     sources,
		Store:       st,
		Verifier:    v,
		Scorer:      sc,
		Hub:         hub,
		VerifyBatch: 5,
		VerifyPause: 500 * time.Millisecond,
		ScoreBatch:  3,
		ScorePause:  time.Second,
		SweepPause:  300 * time.Millisecond,
		StaleAfter:  24 * time.Hour,
	}
}

func (r *Runner) Status() Status {
	st, _ := r.status.Load().(Status)
	st.Running = r.running.Load()
	return st
}

func (r *Runner) setStatus(mut func(*Status)) {
	st, _ := r.status.Load().(Status)
	mut(&st)
	r.status.Store(st)
}

func (r *Runner) publish(typ string, data any) {
	if r.Hub != nil {
		r.Hub.Publish(events.MakeEvent("", typ, 1, data))
	}
}

// pause sleeps unless the context dies first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
