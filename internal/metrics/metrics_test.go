package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it owns a private registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When creating two managers", func() {
			Convey("Then they do not collide on registration", func() {
				So(func() {
					NewManager()
					NewManager()
				}, ShouldNotPanic)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithRegistry(registry),
			)
			manager.RecordSegment()

			Convey("Then metric names follow the namespace and subsystem", func() {
				n, err := testutil.GatherAndCount(registry, "test_unit_segments_drawn_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		m := NewManager(WithRegistry(prometheus.NewRegistry()))

		Convey("When recording frames", func() {
			m.RecordFrame("draw", "Drawing", 10*time.Millisecond)
			m.RecordFrame("draw", "Drawing", 12*time.Millisecond)
			m.RecordFrame("idle", "No hand detected", time.Millisecond)

			Convey("Then frames are counted per intent and status", func() {
				So(testutil.ToFloat64(m.frames.WithLabelValues("draw", "Drawing")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.frames.WithLabelValues("idle", "No hand detected")), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.frameDuration), ShouldEqual, 1)
			})
		})

		Convey("When recording pipeline events", func() {
			m.RecordVerdict("rejected")
			m.RecordSegment()
			m.RecordSegment()
			m.RecordAction("clear")
			m.RecordCommand("save", "http")
			m.RecordSave(nil)
			m.RecordSave(errors.New("disk full"))
			m.RecordDetectorError()
			m.RecordDetectSkipped()
			m.AddStreamClients(2)
			m.AddStreamClients(-1)
			m.AddStatusListeners(1)

			Convey("Then every counter moves", func() {
				So(testutil.ToFloat64(m.filterVerdicts.WithLabelValues("rejected")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.segmentsDrawn), ShouldEqual, 2)
				So(testutil.ToFloat64(m.uiActions.WithLabelValues("clear")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.commands.WithLabelValues("save", "http")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.saves.WithLabelValues("ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.saves.WithLabelValues("error")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.detectorErrors), ShouldEqual, 1)
				So(testutil.ToFloat64(m.detectSkipped), ShouldEqual, 1)
				So(testutil.ToFloat64(m.streamClients), ShouldEqual, 1)
				So(testutil.ToFloat64(m.statusListeners), ShouldEqual, 1)
			})
		})

		Convey("When metrics are disabled", func() {
			off := NewManager(WithRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			off.RecordSegment()
			off.RecordSave(nil)

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(off.segmentsDrawn), ShouldEqual, 0)
				So(testutil.ToFloat64(off.saves.WithLabelValues("ok")), ShouldEqual, 0)
			})
		})
	})
}

func TestMetricsHandler(t *testing.T) {
	Convey("Given a manager with recorded data", t, func() {
		m := NewManager()
		m.RecordSegment()

		Convey("When scraping the handler", func() {
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			body, _ := io.ReadAll(rec.Body)

			Convey("Then the exposition contains pipeline and runtime metrics", func() {
				So(rec.Code, ShouldEqual, 200)
				So(string(body), ShouldContainSubstring, "fingerpaint_pipeline_segments_drawn_total 1")
				So(string(body), ShouldContainSubstring, "go_goroutines")
			})
		})
	})
}
