package matching_test

import (
	"testing"

	"github.com/okian/tutormatch/internal/domain/matching"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEngine_Explain(t *testing.T) {
	Convey("Given two users with every kind of evidence", t, func() {
		engine := matching.NewEngine()
		a := profile("a", []string{"JavaScript", "React"}, []string{"Python"})
		b := profile("b", []string{"Python", "JavaScript"}, []string{"JavaScript"})
		a.Institution, b.Institution = "METU", "METU"
		a.City, b.City = "Ankara", "Ankara"

		Convey("When explaining the match", func() {
			reasons := engine.Explain(a, b)

			Convey("Then the lines come in a fixed order", func() {
				So(reasons, ShouldResemble, []string{
					"You can teach: JavaScript",
					"They can teach: Python",
					"Shared interests: JavaScript",
					"Same institution: METU",
					"Same city: Ankara",
				})
			})
		})

		Convey("When several skills flow one way", func() {
			b.SkillsWanted = []string{"React", "JavaScript"}
			reasons := engine.Explain(a, b)

			Convey("Then they are joined in the offered order", func() {
				So(reasons[0], ShouldEqual, "You can teach: JavaScript, React")
			})
		})
	})

	Convey("Given two users with nothing in common", t, func() {
		engine := matching.NewEngine()
		reasons := engine.Explain(profile("a", []string{"Go"}, nil), profile("b", []string{"Rust"}, nil))

		Convey("Then no reasons are returned", func() {
			So(reasons, ShouldNotBeNil)
			So(reasons, ShouldBeEmpty)
		})
	})

	Convey("Given only a one-way match", t, func() {
		engine := matching.NewEngine()
		reasons := engine.Explain(profile("a", nil, []string{"Go"}), profile("b", []string{"Go"}, nil))

		Convey("Then only the matching direction is listed", func() {
			So(reasons, ShouldResemble, []string{"They can teach: Go"})
		})
	})
}
