package matchctl

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/pkg/logger"
)

const progressInterval = time.Second

// Seed posts profiles to the server with a pool of workers. Each profile gets
// a fresh idempotency key. A rejected profile is counted, not retried.
func Seed(ctx context.Context, c *Client, profiles []model.Profile, workers int) (SeedStats, error) {
	log := logger.Get().Named("seed")
	if workers < 1 {
		workers = 1
	}
	start := time.Now()
	log.Info(ctx, "submitting profiles", logger.Int("profiles", len(profiles)), logger.Int("workers", workers))

	var submitted, queued, duplicate, backpressure, failed int64
	var lastReport atomic.Int64

	work := make(chan model.Profile, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				st, err := c.PutProfile(ctx, p, uuid.NewString())
				atomic.AddInt64(&submitted, 1)
				var se *StatusError
				switch {
				case err == nil && st.Status == "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case err == nil:
					atomic.AddInt64(&queued, 1)
				case errors.As(err, &se) && se.Status == http.StatusTooManyRequests:
					atomic.AddInt64(&backpressure, 1)
				default:
					atomic.AddInt64(&failed, 1)
					log.Debug(ctx, "profile rejected", logger.String("profile_id", p.ID), logger.Error(err))
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int("submitted", int(atomic.LoadInt64(&submitted))),
						logger.Int("total", len(profiles)))
				}
			}
		}()
	}

	var err error
feed:
	for _, p := range profiles {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case work <- p:
		}
	}
	close(work)
	wg.Wait()

	stats := SeedStats{
		Submitted:    int(submitted),
		Queued:       int(queued),
		Duplicate:    int(duplicate),
		Backpressure: int(backpressure),
		Failed:       int(failed),
		Duration:     time.Since(start),
	}
	log.Info(ctx, "seeding finished",
		logger.Int("queued", stats.Queued),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("backpressure", stats.Backpressure),
		logger.Int("failed", stats.Failed),
		logger.Float64("per_second", stats.PerSecond()))
	return stats, err
}
