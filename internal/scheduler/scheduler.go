package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs the task immediately and then on every tick until the
// context dies. Errors are logged, never fatal; the next tick still
// happens.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	EveryAfter(ctx, 0, interval, name, task)
}

// EveryAfter is Every with an initial delay, for staggering tasks that
// should not all fire at startup.
func EveryAfter(ctx context.Context, delay, interval time.Duration, name string, task Task) {
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	run := func() {
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}

	run()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
