package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/tutormatch/internal/adapters/repository"
	app "github.com/okian/tutormatch/internal/app"
	"github.com/okian/tutormatch/internal/config"
	"github.com/okian/tutormatch/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("TUTORMATCH_ADDR", ":8080")
		t.Setenv("TUTORMATCH_QUEUE_SIZE", "1000")
		t.Setenv("TUTORMATCH_WORKER_COUNT", "4")

		convey.Convey("Then configuration picks them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})
}

func TestOpenStores(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When opening stores", func() {
			st, err := openStores(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer st.close()

			convey.Convey("Then one memory store backs both roles", func() {
				_, ok := st.profiles.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(st.suggestions, convey.ShouldEqual, st.profiles)
			})
		})

		convey.Convey("When a redis address is configured", func() {
			mr := miniredis.RunT(t)
			cfg.RedisAddr = mr.Addr()
			st, err := openStores(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer st.close()

			convey.Convey("Then suggestion reads go through the cache", func() {
				_, ok := st.suggestions.(*repository.CachedSuggestions)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the assembled HTTP handler", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		svc := app.New(app.WithWorkerCount(1))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		h := newHandler(ctx, cfg, svc)

		for _, path := range []string{"/healthz", "/stats", "/openapi.yaml", "/api-docs", "/metrics"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}

		convey.Convey("When service metrics are refreshed", func() {
			updateServiceMetrics(ctx, svc)
			req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.Convey("Then the worker gauge matches the service", func() {
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "tutormatch_matching_worker_count 1")
			})
		})
	})
}
