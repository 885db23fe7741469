package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx ends. A tick
// arriving while the previous run is still in flight is skipped, so a slow
// crawl never stacks up behind itself.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	var busy atomic.Bool

	run := func() {
		if !busy.CompareAndSwap(false, true) {
			log.Printf("[%s] previous run still in flight, skipping tick", name)
			return
		}
		defer busy.Store(false)
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	go run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go run()
		}
	}
}
