package repository_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/okian/tutormatch/internal/adapters/repository"
	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMemoryStore_Profiles(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		Convey("When reading an unknown profile", func() {
			_, err := s.Get(ctx, "nobody")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When storing a profile without an id", func() {
			err := s.Upsert(ctx, model.Profile{})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidProfile), ShouldBeTrue)
			})
		})

		Convey("When profiles are stored", func() {
			So(s.Upsert(ctx, model.Profile{ID: "c", Public: true, SkillsOffered: []string{"Go"}}), ShouldBeNil)
			So(s.Upsert(ctx, model.Profile{ID: "a", Public: true}), ShouldBeNil)
			So(s.Upsert(ctx, model.Profile{ID: "b", Public: true, Banned: true}), ShouldBeNil)
			So(s.Upsert(ctx, model.Profile{ID: "d", Public: false}), ShouldBeNil)
			So(s.Upsert(ctx, model.Profile{ID: "e", Public: true}), ShouldBeNil)

			Convey("Then they are counted", func() {
				n, err := s.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 5)
			})

			Convey("Then the pool holds discoverable profiles in id order", func() {
				pool, err := s.DiscoverablePool(ctx, "e")
				So(err, ShouldBeNil)
				ids := []string{}
				for _, p := range pool {
					ids = append(ids, p.ID)
				}
				So(ids, ShouldResemble, []string{"a", "c"})
			})

			Convey("Then returned profiles do not alias stored state", func() {
				p, err := s.Get(ctx, "c")
				So(err, ShouldBeNil)
				p.SkillsOffered[0] = "Rust"
				again, _ := s.Get(ctx, "c")
				So(again.SkillsOffered, ShouldResemble, []string{"Go"})
			})

			Convey("Then an upsert replaces the profile", func() {
				So(s.Upsert(ctx, model.Profile{ID: "a", City: "Izmir"}), ShouldBeNil)
				p, err := s.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(p.City, ShouldEqual, "Izmir")
				So(p.Public, ShouldBeFalse)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.DiscoverablePool(cctx, "")

			Convey("Then the store reports itself unavailable", func() {
				So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_Suggestions(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		Convey("When nothing is stored for an owner", func() {
			got, err := s.List(ctx, "me")

			Convey("Then an empty list is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When suggestions are saved twice", func() {
			So(s.Save(ctx, "me", []model.MatchSuggestion{{TargetID: "x", Score: 10}, {TargetID: "y", Score: 5}}), ShouldBeNil)
			So(s.Save(ctx, "me", []model.MatchSuggestion{{TargetID: "z", Score: 70, CommonTopics: []string{"Go"}}}), ShouldBeNil)

			Convey("Then the latest save replaces the earlier one", func() {
				got, err := s.List(ctx, "me")
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].TargetID, ShouldEqual, "z")
				So(got[0].CommonTopics, ShouldResemble, []string{"Go"})
			})
		})
	})

	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("p%d", i)
				_ = s.Upsert(ctx, model.Profile{ID: id, Public: true})
				_ = s.Save(ctx, id, []model.MatchSuggestion{{TargetID: "x"}})
				_, _ = s.DiscoverablePool(ctx, id)
			}(i)
		}
		wg.Wait()

		Convey("Then every write lands", func() {
			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 50)
		})
	})
}
