package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given a fresh logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat(FormatJSON)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "profile stored",
				String("profile_id", "p1"),
				Int("skills", 3),
				Bool("public", true),
				Duration("took", time.Millisecond),
				Strings("topics", []string{"Go"}),
			)

			Convey("Then the record carries every field and the caller", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "profile stored")
				So(rec["profile_id"], ShouldEqual, "p1")
				So(rec["skills"], ShouldEqual, 3)
				So(rec["public"], ShouldEqual, true)
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("ERROR"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "shown", Error(errors.New("boom")))

			Convey("Then only the error is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "boom")
			})

			Reset(func() { So(SetLevelString("info"), ShouldBeNil) })
		})

		Convey("When using a named logger with bound fields", func() {
			Named("worker").With(Int("id", 2)).Warn(ctx, "slow")

			Convey("Then fields are grouped under the name", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				group, ok := rec["worker"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["id"], ShouldEqual, 2)
			})
		})
	})

	Convey("Given a fatal call with a captured exit", t, func() {
		var buf bytes.Buffer
		code := -1
		So(Init(WithWriter(&buf), WithExitFunc(func(c int) { code = c })), ShouldBeNil)

		Get().Fatal(context.Background(), "giving up")

		Convey("Then the message is logged and exit is called with 1", func() {
			So(buf.String(), ShouldContainSubstring, "giving up")
			So(code, ShouldEqual, 1)
		})
	})

	Convey("Given invalid settings", t, func() {
		Convey("Then an unknown level is rejected", func() {
			So(Init(WithLevel("loud")), ShouldNotBeNil)
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})

		Convey("Then an unknown format is rejected", func() {
			So(Init(WithFormat("xml")), ShouldNotBeNil)
		})

		Reset(func() { So(SetLevelString("info"), ShouldBeNil) })
	})

	Convey("Sync never fails", t, func() {
		So(Sync(), ShouldBeNil)
	})
}
