package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wayfare-dev/wayfare/pkg/dispatch"
)

func TestOpenTelemetryMiddleware_CallsNext(t *testing.T) {
	mw := OpenTelemetry(
		WithTracerName("test"),
		WithIncludeParams(true),
		WithAttributeExtractor(func(*dispatch.Navigation) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)

	nav := testNavigation("user", "/users/42")
	nav.Match.Params["id"] = "42"

	nextCalled := false
	err := mw.Handle(context.Background(), nav, func() error {
		nextCalled = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nextCalled {
		t.Fatal("expected next to be called")
	}
}

func TestOpenTelemetryMiddleware_ErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	err := OpenTelemetry().Handle(context.Background(), testNavigation("user", "/users/1"), func() error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected error %v, got %v", wantErr, err)
	}
}

func TestOpenTelemetryMiddleware_FilterSkipsTracing(t *testing.T) {
	nextCalled := false
	err := OpenTelemetry(
		WithNavigationFilter(func(nav *dispatch.Navigation) bool {
			return nav.Path != "/healthz"
		}),
	).Handle(context.Background(), testNavigation("health", "/healthz"), func() error {
		nextCalled = true
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nextCalled {
		t.Fatal("expected next to be called when filter skips tracing")
	}
}
