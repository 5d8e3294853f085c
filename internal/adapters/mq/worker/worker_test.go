package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/tutormatch/internal/adapters/mq/queue"
	worker "github.com/okian/tutormatch/internal/adapters/mq/worker"
	model "github.com/okian/tutormatch/internal/domain/model"
	logging "github.com/okian/tutormatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockRecomputer struct {
	mu     sync.Mutex
	calls  map[string]int
	errors map[string]error
}

func newMockRecomputer() *mockRecomputer {
	return &mockRecomputer{calls: map[string]int{}, errors: map[string]error{}}
}

func (m *mockRecomputer) Recompute(_ context.Context, profileID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[profileID]++
	if err := m.errors[profileID]; err != nil {
		return 0, err
	}
	return 3, nil
}

func (m *mockRecomputer) count(profileID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[profileID]
}

func (m *mockRecomputer) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func request(i int) model.RecomputeRequest {
	return model.RecomputeRequest{
		RequestID:   fmt.Sprintf("req-%d", i),
		ProfileID:   fmt.Sprintf("p-%d", i),
		RequestedAt: time.Now(),
	}
}

func TestInMemoryWorker(t *testing.T) {
	_ = logging.Init(logging.WithWriter(io.Discard))

	convey.Convey("Given a running worker", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		rec := newMockRecomputer()
		rec.errors["p-2"] = errors.New("store down")
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("w-test"))
		go w.Run(ctx)

		convey.Convey("When requests are queued", func() {
			for i := range 3 {
				convey.So(q.Enqueue(ctx, request(i)), convey.ShouldBeNil)
			}
			_ = q.Close()

			convey.Convey("Then each is recomputed and failures are counted", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not drain the queue")
				}
				convey.So(rec.count("p-0"), convey.ShouldEqual, 1)
				convey.So(rec.count("p-1"), convey.ShouldEqual, 1)
				convey.So(w.Processed(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When shut down twice", func() {
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then the second call returns immediately", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, newMockRecomputer())
		done := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(done)
		}()
		cancel()

		convey.Convey("Then it stops", func() {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("worker did not stop")
			}
		})
	})
}

func TestPool(t *testing.T) {
	_ = logging.Init(logging.WithWriter(io.Discard))

	convey.Convey("Given a pool of four workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		rec := newMockRecomputer()
		pool := worker.NewPool(4, q, rec)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many requests are processed and the pool shuts down", func() {
			pool.Start(ctx)
			for i := range 200 {
				convey.So(q.Enqueue(ctx, request(i)), convey.ShouldBeNil)
			}
			err := pool.Shutdown(ctx)

			convey.Convey("Then the queue is drained before workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.total(), convey.ShouldEqual, 200)
				convey.So(pool.Processed(), convey.ShouldEqual, 200)
				convey.So(pool.Failed(), convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a pool created with a non-positive count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockRecomputer())

		convey.Convey("Then it falls back to at least one worker", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
