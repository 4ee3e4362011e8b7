package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ghostcheck-engine/internal/store"
)

// RunReverification re-checks the links of VERIFIED records older than
// StaleAfter. Dead links move to BROKEN_LINK and fall out of the public
// listing; live ones get a fresh timestamp.
func (r *Runner) RunReverification(ctx context.Context) (SweepResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		return SweepResult{}, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	res := SweepResult{RunID: uuid.NewString(), Success: true}

	stale, err := r.Store.ListStaleVerified(ctx, r.StaleAfter)
	if err != nil {
		res.Success = false
		res.recordError(fmt.Sprintf("list stale: %v", err))
		return res, nil
	}
	if len(stale) == 0 {
		return res, nil
	}
	log.Printf("[sweep] re-checking %d stale records", len(stale))

	for i, rec := range stale {
		if i > 0 && !pause(ctx, r.SweepPause) {
			res.Success = false
			res.recordError("sweep interrupted: " + ctx.Err().Error())
			break
		}

		target := rec.ApplyURL
		if target == "" {
			target = rec.SourceURL
		}

		ok, status := r.Verifier.CheckURL(ctx, target)
		res.Checked++

		if ok {
			now := time.Now().UTC()
			note := fmt.Sprintf("re-checked ok, http %d", status)
			if err := r.Store.UpdateVerification(ctx, rec.ID, store.StatusVerified, &now, note); err != nil {
				res.recordError(fmt.Sprintf("update %d: %v", rec.ID, err))
			}
			continue
		}

		res.Expired++
		note := fmt.Sprintf("link check failed with status %d", status)
		log.Printf("[sweep] %q at %s is gone (http %d)", rec.Title, rec.Company, status)
		if err := r.Store.UpdateVerification(ctx, rec.ID, store.StatusBrokenLink, nil, note); err != nil {
			res.recordError(fmt.Sprintf("update %d: %v", rec.ID, err))
		}
	}

	r.setStatus(func(st *Status) {
		st.LastChecked = res.Checked
		st.LastExpired = res.Expired
	})
	r.publish("sweep_completed", res)
	log.Printf("[sweep] done checked=%d expired=%d", res.Checked, res.Expired)
	return res, nil
}
