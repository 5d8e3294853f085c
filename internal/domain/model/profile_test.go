package model_test

import (
	"testing"

	model "github.com/okian/tutormatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestProfile(t *testing.T) {
	convey.Convey("Given a profile", t, func() {
		p := model.Profile{ID: "u1", Public: true}

		convey.Convey("When it has no skills or needs", func() {
			convey.Convey("Then it neither offers nor wants anything", func() {
				convey.So(p.Offers(), convey.ShouldBeFalse)
				convey.So(p.Wants(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When it lists skills and needs", func() {
			p.SkillsOffered = []string{"Go"}
			p.SkillsWanted = []string{"Rust"}

			convey.Convey("Then both directions are available", func() {
				convey.So(p.Offers(), convey.ShouldBeTrue)
				convey.So(p.Wants(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When it is banned", func() {
			p.Banned = true

			convey.Convey("Then it is not discoverable", func() {
				convey.So(p.Discoverable(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When it is private", func() {
			p.Public = false

			convey.Convey("Then it is not discoverable", func() {
				convey.So(p.Discoverable(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestMatchInvolves(t *testing.T) {
	convey.Convey("Given a match between u1 and u2", t, func() {
		m := model.Match{ID: "m1", ParticipantIDs: [2]string{"u1", "u2"}}

		convey.Convey("Then it involves the pair in either order", func() {
			convey.So(m.Involves("u1", "u2"), convey.ShouldBeTrue)
			convey.So(m.Involves("u2", "u1"), convey.ShouldBeTrue)
		})

		convey.Convey("Then it does not involve other pairs", func() {
			convey.So(m.Involves("u1", "u3"), convey.ShouldBeFalse)
			convey.So(m.Involves("u1", "u1"), convey.ShouldBeFalse)
		})
	})
}
