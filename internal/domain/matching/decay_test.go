package matching_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/tutormatch/internal/domain/matching"
	"github.com/okian/tutormatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecay(t *testing.T) {
	Convey("Given a stored suggestion scoring 80", t, func() {
		s := model.MatchSuggestion{TargetID: "t", Score: 80}

		Convey("When no time has passed", func() {
			got, err := matching.Decay(s, 0)

			Convey("Then the score is unchanged", func() {
				So(err, ShouldBeNil)
				So(got, ShouldEqual, 80)
			})
		})

		Convey("When ten days have passed", func() {
			got, err := matching.Decay(s, 10)

			Convey("Then it decays exponentially and rounds to one decimal", func() {
				So(err, ShouldBeNil)
				So(got, ShouldEqual, 48.5)
				So(s.Score, ShouldEqual, 80)
			})
		})

		Convey("When the elapsed time is negative or NaN", func() {
			_, errNeg := matching.Decay(s, -1)
			_, errNaN := matching.Decay(s, math.NaN())

			Convey("Then the call is rejected", func() {
				So(errors.Is(errNeg, matching.ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(errNaN, matching.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("Then decay never increases with elapsed time", func() {
			prev := math.Inf(1)
			for d := 0.0; d <= 120; d += 0.5 {
				got, err := matching.Decay(s, d)
				So(err, ShouldBeNil)
				So(got, ShouldBeLessThanOrEqualTo, prev)
				prev = got
			}
		})
	})

	Convey("Given a suggestion computed at a known time", t, func() {
		computed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s := model.MatchSuggestion{Score: 80, ComputedAt: computed}

		Convey("When decaying to ten days later", func() {
			Convey("Then it matches the day-based decay", func() {
				So(matching.DecayAt(s, computed.Add(240*time.Hour)), ShouldEqual, 48.5)
			})
		})

		Convey("When the clock reads earlier than the computation", func() {
			Convey("Then no decay is applied", func() {
				So(matching.DecayAt(s, computed.Add(-time.Hour)), ShouldEqual, 80)
			})
		})
	})
}

func TestCompleteness(t *testing.T) {
	Convey("Given profiles with varying detail", t, func() {
		Convey("When the profile is empty", func() {
			So(matching.Completeness(model.Profile{}), ShouldEqual, 0)
		})

		Convey("When every field is set", func() {
			p := model.Profile{
				DisplayName:   "Ada",
				Bio:           "Teaching maths for years",
				Institution:   "METU",
				Department:    "MATH",
				City:          "Ankara",
				Experience:    "TA for Calculus",
				SkillsOffered: []string{"Calculus"},
				SkillsWanted:  []string{"Go"},
			}
			So(matching.Completeness(p), ShouldEqual, 1)
		})

		Convey("When the bio is exactly ten characters", func() {
			p := model.Profile{DisplayName: "Ada", Bio: "0123456789"}
			So(matching.Completeness(p), ShouldEqual, 0.125)
		})
	})
}
