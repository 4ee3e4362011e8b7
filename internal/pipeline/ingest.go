package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ghostcheck-engine/internal/aggregate"
	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/legit"
	"ghostcheck-engine/internal/scrape/util"
	"ghostcheck-engine/internal/store"
	"ghostcheck-engine/internal/verify"
)

type candidate struct {
	posting domain.Posting
	verdict verify.Verdict
}

// RunIngestion executes one full pass: fetch, dedup, verify, score,
// persist. Returns ErrAlreadyRunning when another run or sweep holds the
// pipeline.
func (r *Runner) RunIngestion(ctx context.Context) (Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	started := time.Now()
	res := Result{RunID: uuid.NewString(), Success: true}
	log.Printf("[pipeline] run %s started sources=%d", res.RunID, len(r.Sources))

	r.setStatus(func(st *Status) {
		st.LastRunAt = started.UTC().Format(time.RFC3339)
	})
	defer func() {
		res.DurationMs = time.Since(started).Milliseconds()
		r.setStatus(func(st *Status) {
			st.LastAdded = res.Added
			st.LastSkipped = res.Skipped
			st.LastFailed = res.Failed
			if res.Success {
				st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
				st.LastError = ""
			} else if len(res.Errors) > 0 {
				st.LastError = res.Errors[0]
			}
		})
		r.publish("run_completed", res)
		log.Printf("[pipeline] run %s done added=%d skipped=%d failed=%d in %dms",
			res.RunID, res.Added, res.Skipped, res.Failed, res.DurationMs)
	}()

	batch := aggregate.Run(ctx, r.Sources)
	res.Scraped = batch.Seen
	res.Skipped = batch.Duplicates

	existing, err := r.Store.ListExistingURLs(ctx)
	if err != nil {
		res.Success = false
		res.recordError(fmt.Sprintf("list existing urls: %v", err))
		return res, nil
	}

	var fresh []domain.Posting
	for _, p := range batch.Postings {
		if _, dup := existing[p.ApplyURL]; dup {
			res.Skipped++
			continue
		}
		if _, dup := existing[p.SourceURL]; dup {
			res.Skipped++
			continue
		}
		fresh = append(fresh, p)
	}

	// Verify in small concurrent batches with a pause in between, so one
	// big scrape doesn't hammer every board at once.
	var passed []candidate
	for ci, chunk := range util.Chunk(fresh, r.VerifyBatch) {
		if ci > 0 && !pause(ctx, r.VerifyPause) {
			res.Success = false
			res.recordError("verification interrupted: " + ctx.Err().Error())
			break
		}

		verdicts := make([]verify.Verdict, len(chunk))
		var wg sync.WaitGroup
		for i, p := range chunk {
			wg.Add(1)
			go func(i int, p domain.Posting) {
				defer wg.Done()
				verdicts[i] = r.Verifier.Verify(ctx, p)
			}(i, p)
		}
		wg.Wait()

		for i, p := range chunk {
			if !verdicts[i].Valid {
				res.Failed++
				log.Printf("[pipeline] dropped %q at %s: http=%d trusted=%v flags=%v",
					p.Title, p.Company, verdicts[i].HTTPStatus, verdicts[i].DomainTrusted, verdicts[i].RedFlags)
				continue
			}
			res.Verified++
			passed = append(passed, candidate{posting: p, verdict: verdicts[i]})
		}
	}

	// Score survivors. LLM backends rate-limit hard, hence the smaller
	// batches and the longer pause.
	for ci, chunk := range util.Chunk(passed, r.ScoreBatch) {
		if ci > 0 && !pause(ctx, r.ScorePause) {
			res.Success = false
			res.recordError("scoring interrupted: " + ctx.Err().Error())
			break
		}

		assessments := make([]legit.Assessment, len(chunk))
		errs := make([]error, len(chunk))
		var wg sync.WaitGroup
		for i, c := range chunk {
			wg.Add(1)
			go func(i int, p domain.Posting) {
				defer wg.Done()
				assessments[i], errs[i] = r.Scorer.Assess(ctx, p)
			}(i, c.posting)
		}
		wg.Wait()

		for i, c := range chunk {
			if errs[i] != nil {
				res.Failed++
				res.recordError(fmt.Sprintf("score %s at %s: %v", c.posting.Title, c.posting.Company, errs[i]))
				continue
			}
			r.persist(ctx, &res, c, assessments[i])
		}
	}

	// Sources only get to clean up (mark mail seen, close sessions) once
	// everything that passed is in the store.
	if ctx.Err() == nil {
		for _, fin := range batch.Finalizers {
			if err := fin(ctx); err != nil {
				log.Printf("[pipeline] finalize: %v", err)
				res.recordError(fmt.Sprintf("finalize: %v", err))
			}
		}
	}

	return res, nil
}

func (r *Runner) persist(ctx context.Context, res *Result, c candidate, a legit.Assessment) {
	if !a.Accepted() {
		res.Failed++
		log.Printf("[pipeline] rejected %q at %s: score=%d rec=%s",
			c.posting.Title, c.posting.Company, a.Score, a.Recommendation)
		return
	}

	status := store.StatusPending
	var verifiedAt *time.Time
	if a.Recommendation == legit.RecommendApprove {
		status = store.StatusVerified
		now := time.Now().UTC()
		verifiedAt = &now
	}

	rec := store.JobRecord{
		Company:           c.posting.Company,
		Title:             c.posting.Title,
		Location:          c.posting.LocationRaw,
		LocationType:      c.posting.LocationType,
		SalaryMin:         c.posting.SalaryMin,
		SalaryMax:         c.posting.SalaryMax,
		ApplyURL:          c.posting.ApplyURL,
		SourceURL:         c.posting.SourceURL,
		Source:            c.posting.Source,
		Description:       c.posting.Description,
		Status:            status,
		Score:             a.Score,
		LastVerifiedAt:    verifiedAt,
		VerificationNotes: verificationNotes(c.verdict, a),
	}

	id, err := r.Store.InsertJob(ctx, rec)
	if err != nil {
		res.Failed++
		res.recordError(fmt.Sprintf("insert %s at %s: %v", c.posting.Title, c.posting.Company, err))
		return
	}
	if id == 0 {
		// unique index caught a race with a previous run
		res.Skipped++
		return
	}
	res.Added++
	r.publish("job_verified", map[string]any{
		"id":      id,
		"company": rec.Company,
		"title":   rec.Title,
		"score":   rec.Score,
		"status":  rec.Status,
	})
}

func verificationNotes(v verify.Verdict, a legit.Assessment) string {
	parts := []string{
		fmt.Sprintf("score %d via %s", a.Score, a.Via),
		fmt.Sprintf("http %d", v.HTTPStatus),
	}
	if len(a.Concerns) > 0 {
		parts = append(parts, "concerns: "+strings.Join(a.Concerns, ", "))
	}
	return strings.Join(parts, "; ")
}
