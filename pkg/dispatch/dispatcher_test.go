package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/wayfare-dev/wayfare/pkg/route"
)

// newTestDispatcher builds a dispatcher over the shared test table.
func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	table, err := route.NewTable(
		route.MustNew("home", "/"),
		route.MustNew("about", "/about"),
		route.MustNew("user", "/users/:id:int"),
		route.MustNew("docs", "/docs/*rest"),
		route.MustNew("not-found", "/*rest"),
	)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(table, opts...)
}

func TestNavigateEmitsOneNotification(t *testing.T) {
	d := newTestDispatcher(t)

	var got []ViewChange
	d.Subscribe(func(v ViewChange) {
		got = append(got, v)
	})

	change, err := d.Navigate(context.Background(), "/users/42")
	if err != nil {
		t.Fatalf("Navigate error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d notifications, want exactly 1", len(got))
	}
	if got[0].Name != change.Name || got[0].Path != change.Path || got[0].Replace != change.Replace {
		t.Errorf("notification %+v != returned change %+v", got[0], change)
	}
	if change.Name != "user" {
		t.Errorf("Name = %q, want user", change.Name)
	}
	if change.Params["id"] != "42" {
		t.Errorf("Params[id] = %q, want 42", change.Params["id"])
	}
	if change.Path != "/users/42" {
		t.Errorf("Path = %q", change.Path)
	}
	if change.Replace {
		t.Error("Replace = true for a clean push navigation")
	}
}

func TestNavigateUnmatchedResolvesCatchAll(t *testing.T) {
	d := newTestDispatcher(t)

	change, err := d.Navigate(context.Background(), "/no/such/page")
	if err != nil {
		t.Fatalf("Navigate error: %v", err)
	}
	if change.Name != "not-found" {
		t.Errorf("Name = %q, want not-found", change.Name)
	}
	if change.Params["rest"] != "no/such/page" {
		t.Errorf("Params[rest] = %q", change.Params["rest"])
	}
}

func TestNavigateCanonicalizationForcesReplace(t *testing.T) {
	d := newTestDispatcher(t)

	change, err := d.Navigate(context.Background(), "/about/")
	if err != nil {
		t.Fatalf("Navigate error: %v", err)
	}
	if change.Path != "/about" {
		t.Errorf("Path = %q, want /about", change.Path)
	}
	if !change.Replace {
		t.Error("Replace = false, want true when canonicalization changed the path")
	}
}

func TestNavigateRejectsAbsoluteTargets(t *testing.T) {
	d := newTestDispatcher(t)

	for _, target := range []string{"http://evil.test/", "https://evil.test/", "//evil.test/", "relative"} {
		if _, err := d.Navigate(context.Background(), target); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("Navigate(%q) error = %v, want ErrInvalidTarget", target, err)
		}
	}
}

func TestNavigateRejectsMalformedPaths(t *testing.T) {
	d := newTestDispatcher(t)

	var notified int
	d.Subscribe(func(ViewChange) { notified++ })

	if _, err := d.Navigate(context.Background(), `/a\b`); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("error = %v, want ErrInvalidTarget", err)
	}
	if notified != 0 {
		t.Errorf("notified %d times for a rejected navigation, want 0", notified)
	}
}

func TestNavigateWithQuery(t *testing.T) {
	d := newTestDispatcher(t)

	change, err := d.Navigate(context.Background(), "/about", WithQuery(map[string]any{"tab": "team", "page": 2}))
	if err != nil {
		t.Fatalf("Navigate error: %v", err)
	}
	if change.Query != "page=2&tab=team" {
		t.Errorf("Query = %q, want page=2&tab=team", change.Query)
	}
	if change.URL() != "/about?page=2&tab=team" {
		t.Errorf("URL() = %q", change.URL())
	}
}

func TestNavigateTo(t *testing.T) {
	d := newTestDispatcher(t)

	change, err := d.NavigateTo(context.Background(), "user", route.Params{"id": "7"})
	if err != nil {
		t.Fatalf("NavigateTo error: %v", err)
	}
	if change.Path != "/users/7" {
		t.Errorf("Path = %q, want /users/7", change.Path)
	}
	if change.Name != "user" {
		t.Errorf("Name = %q, want user", change.Name)
	}
}

func TestNavigateToUnknownView(t *testing.T) {
	d := newTestDispatcher(t)

	if _, err := d.NavigateTo(context.Background(), "nope", nil); err == nil {
		t.Error("NavigateTo(nope) expected error")
	}
}

func TestCurrent(t *testing.T) {
	d := newTestDispatcher(t)

	if _, ok := d.Current(); ok {
		t.Error("Current should be unset before any navigation")
	}

	d.Navigate(context.Background(), "/about")
	cur, ok := d.Current()
	if !ok {
		t.Fatal("Current unset after navigation")
	}
	if cur.Name != "about" {
		t.Errorf("Current Name = %q, want about", cur.Name)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	d := newTestDispatcher(t)

	var a, b int
	unsubA := d.Subscribe(func(ViewChange) { a++ })
	d.Subscribe(func(ViewChange) { b++ })

	d.Navigate(context.Background(), "/about")
	unsubA()
	d.Navigate(context.Background(), "/users/1")

	if a != 1 {
		t.Errorf("a = %d, want 1", a)
	}
	if b != 2 {
		t.Errorf("b = %d, want 2", b)
	}
}

func TestMiddlewareOrderAndAbort(t *testing.T) {
	d := newTestDispatcher(t)

	var order []string
	d.Use(
		MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func() error) error {
			order = append(order, "outer-before")
			err := next()
			order = append(order, "outer-after")
			return err
		}),
		MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func() error) error {
			order = append(order, "inner")
			return next()
		}),
	)

	if _, err := d.Navigate(context.Background(), "/about"); err != nil {
		t.Fatalf("Navigate error: %v", err)
	}

	want := []string{"outer-before", "inner", "outer-after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestMiddlewareAbortSuppressesNotification(t *testing.T) {
	d := newTestDispatcher(t)

	boom := errors.New("denied")
	d.Use(MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func() error) error {
		return boom
	}))

	var notified int
	d.Subscribe(func(ViewChange) { notified++ })

	if _, err := d.Navigate(context.Background(), "/about"); !errors.Is(err, boom) {
		t.Errorf("error = %v, want the middleware error", err)
	}
	if notified != 0 {
		t.Errorf("notified %d times for an aborted navigation, want 0", notified)
	}
	if _, ok := d.Current(); ok {
		t.Error("Current should remain unset after an aborted navigation")
	}
}

func TestMiddlewareSeesMatch(t *testing.T) {
	d := newTestDispatcher(t)

	var seen string
	d.Use(MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func() error) error {
		seen = nav.Match.Name
		return next()
	}))

	d.Navigate(context.Background(), "/docs/guide")
	if seen != "docs" {
		t.Errorf("middleware saw view %q, want docs", seen)
	}
}
