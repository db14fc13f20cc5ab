package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wayfare-dev/wayfare/pkg/dispatch"
	"github.com/wayfare-dev/wayfare/pkg/route"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func testNavigation(view, path string) *dispatch.Navigation {
	return &dispatch.Navigation{
		Target: path,
		Path:   path,
		Match:  route.Match{Name: view, Params: route.Params{}},
	}
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusMiddleware_RecordsSuccessAndError(t *testing.T) {
	t.Run("success increments success counter and duration", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		mw := Prometheus(WithRegistry(reg))
		nav := testNavigation("user", "/users/42")

		err := mw.Handle(context.Background(), nav, func() error { return nil })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		c := GetMetrics()
		if c == nil {
			t.Fatal("expected GetMetrics to return collector after initialization")
		}

		if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("user", "success")); got != 1 {
			t.Fatalf("navigations_total(success)=%v, want 1", got)
		}
		if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("user", "error")); got != 0 {
			t.Fatalf("navigations_total(error)=%v, want 0", got)
		}
		if got := metricHistogramCount(t, c.navigationDuration.WithLabelValues("user")); got == 0 {
			t.Fatal("expected navigation_duration_seconds histogram to have sample count > 0")
		}
	})

	t.Run("error increments error counter and categorizes", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		mw := Prometheus(WithRegistry(reg))
		nav := testNavigation("user", "/users/42")

		err := mw.Handle(context.Background(), nav, func() error { return errors.New("timeout exceeded") })
		if err == nil {
			t.Fatal("expected error to propagate")
		}

		c := GetMetrics()
		if c == nil {
			t.Fatal("expected GetMetrics to return collector after initialization")
		}

		if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("user", "error")); got != 1 {
			t.Fatalf("navigations_total(error)=%v, want 1", got)
		}
		if got := metricCounterValue(t, c.navigationErrors.WithLabelValues("user", "timeout")); got != 1 {
			t.Fatalf("navigation_errors_total(timeout)=%v, want 1", got)
		}
	})
}

func TestPrometheusMiddleware_EmptyViewNormalizes(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	mw := Prometheus(WithRegistry(reg))
	nav := testNavigation("", "/")

	if err := mw.Handle(context.Background(), nav, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := GetMetrics()
	if c == nil {
		t.Fatal("expected GetMetrics to return collector after initialization")
	}
	if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("unknown", "success")); got != 1 {
		t.Fatalf("navigations_total(unknown,success)=%v, want 1", got)
	}
}

func TestMetricsRecordFunctions_WithInitializedMetrics(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	_ = Prometheus(WithRegistry(reg)) // initialize global metrics
	c := GetMetrics()
	if c == nil {
		t.Fatal("expected GetMetrics to return collector after initialization")
	}

	RecordViewUpdate()
	RecordViewUpdate()
	RecordSessionOpen()
	RecordSessionOpen()
	RecordSessionClose()
	RecordWebSocketError("close")
	ObservePreload("user", dispatch.PreloadRun)
	ObservePreload("user", dispatch.PreloadHit)

	if got := metricCounterValue(t, c.viewUpdatesSent); got != 2 {
		t.Fatalf("view_updates_sent_total=%v, want 2", got)
	}
	if got := metricGaugeValue(t, c.activeSessions); got != 1 {
		t.Fatalf("active_sessions=%v, want 1 (open+open+close)", got)
	}
	if got := metricCounterValue(t, c.wsErrors.WithLabelValues("close")); got != 1 {
		t.Fatalf("websocket_errors_total(close)=%v, want 1", got)
	}
	if got := metricCounterValue(t, c.preloadOutcomes.WithLabelValues("user", "run")); got != 1 {
		t.Fatalf("preload_outcomes_total(run)=%v, want 1", got)
	}
	if got := metricCounterValue(t, c.preloadOutcomes.WithLabelValues("user", "hit")); got != 1 {
		t.Fatalf("preload_outcomes_total(hit)=%v, want 1", got)
	}
}

func TestMetricsRecordFunctions_UninitializedNoPanic(t *testing.T) {
	resetGlobalMetricsForTest()

	RecordViewUpdate()
	RecordSessionOpen()
	RecordSessionClose()
	RecordWebSocketError("close")
	ObservePreload("user", dispatch.PreloadRun)

	if GetMetrics() != nil {
		t.Fatal("expected GetMetrics to return nil before initialization")
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  string
		want string
	}{
		{"timeout exceeded", "timeout"},
		{"rate limit hit", "rate_limit"},
		{"dispatch: invalid navigation target", "invalid_target"},
		{"unauthorized access", "unauthorized"},
		{"forbidden", "forbidden"},
		{"websocket closed", "websocket"},
		{"something else", "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(errors.New(tt.err)); got != tt.want {
			t.Errorf("categorizeError(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
