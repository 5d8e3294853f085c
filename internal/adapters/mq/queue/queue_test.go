package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/tutormatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func req(id string) Request {
	return model.RecomputeRequest{RequestID: id, ProfileID: "p-" + id}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("Then it starts empty", func() {
			So(q.Len(), ShouldEqual, 0)
			So(q.Capacity(), ShouldEqual, 2)
		})

		Convey("When a request is enqueued and dequeued", func() {
			So(q.Enqueue(ctx, req("r1")), ShouldBeNil)
			So(q.Len(), ShouldEqual, 1)
			got := <-q.Dequeue()

			Convey("Then the same request comes out", func() {
				So(got.RequestID, ShouldEqual, "r1")
				So(got.ProfileID, ShouldEqual, "p-r1")
				So(q.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, req("r1")), ShouldBeNil)
			So(q.Enqueue(ctx, req("r2")), ShouldBeNil)
			err := q.Enqueue(ctx, req("r3"))

			Convey("Then the request is refused without blocking", func() {
				So(errors.Is(err, ErrFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then nothing is enqueued", func() {
				So(errors.Is(q.Enqueue(cctx, req("r1")), context.Canceled), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, req("r1")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then new requests are refused", func() {
				So(errors.Is(q.Enqueue(ctx, req("r2")), ErrClosed), ShouldBeTrue)
			})

			Convey("Then pending requests drain before the channel closes", func() {
				got, ok := <-q.Dequeue()
				So(ok, ShouldBeTrue)
				So(got.RequestID, ShouldEqual, "r1")
				_, ok = <-q.Dequeue()
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given concurrent producers and one consumer", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(1000))
		const producers, each = 10, 100

		var wg sync.WaitGroup
		for p := range producers {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := range each {
					_ = q.Enqueue(ctx, req(fmt.Sprintf("%d-%d", p, i)))
				}
			}(p)
		}
		wg.Wait()
		So(q.Close(), ShouldBeNil)

		seen := map[string]bool{}
		for r := range q.Dequeue() {
			seen[r.RequestID] = true
		}

		Convey("Then every request is delivered once", func() {
			So(len(seen), ShouldEqual, producers*each)
		})
	})
}
