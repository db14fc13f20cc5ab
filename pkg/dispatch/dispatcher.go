package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/wayfare-dev/wayfare/pkg/route"
	"github.com/wayfare-dev/wayfare/pkg/urlpath"
)

// Dispatch errors.
var (
	// ErrInvalidTarget is returned when a navigation target is not a
	// relative path (absolute URLs are rejected) or fails canonicalization.
	ErrInvalidTarget = errors.New("dispatch: invalid navigation target")

	// ErrNoHistory is returned by Back/Forward when there is no entry to
	// move to.
	ErrNoHistory = errors.New("dispatch: no history entry")
)

// ViewChange is the single notification emitted per navigation. It carries
// everything a subscriber needs to present the new view: the view name, the
// extracted params, and the canonical URL the view lives at.
type ViewChange struct {
	// Name is the view identifier of the matched route.
	Name string

	// Params are the extracted route parameters.
	Params route.Params

	// Path is the canonical path (without query string).
	Path string

	// Query is the query string (without leading "?"), possibly empty.
	Query string

	// Replace indicates the client should replace its current history
	// entry instead of pushing a new one.
	Replace bool
}

// URL returns the full navigation URL (path plus query).
func (v ViewChange) URL() string {
	if v.Query != "" {
		return v.Path + "?" + v.Query
	}
	return v.Path
}

// Subscriber receives view change notifications. Subscribers are invoked
// synchronously, in subscription order, exactly once per navigation. A
// subscriber must not call back into the dispatcher synchronously.
type Subscriber func(ViewChange)

// Navigation is the in-flight state passed through the middleware chain.
type Navigation struct {
	// Target is the URL as requested, before canonicalization.
	Target string

	// Path is the canonical path being navigated to.
	Path string

	// Query is the query string for the navigation.
	Query string

	// Replace indicates a history replace rather than a push.
	Replace bool

	// Match is the resolved route.
	Match route.Match
}

// Middleware wraps navigation dispatch. Returning an error aborts the
// navigation: no notification is emitted and no preload runs.
type Middleware interface {
	Handle(ctx context.Context, nav *Navigation, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ctx context.Context, nav *Navigation, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, nav *Navigation, next func() error) error {
	return f(ctx, nav, next)
}

// Dispatcher turns URL changes into view change notifications. It owns the
// route table, the current-view cell, the navigation history, and the
// preload registry. Navigations are serialized: the dispatcher processes
// one at a time, in arrival order.
type Dispatcher struct {
	mu sync.Mutex

	table  *route.Table
	logger *slog.Logger

	middleware  []Middleware
	subscribers []subscription
	nextSubID   int

	preloads        map[string]PreloadFunc
	preloadCfg      *PreloadConfig
	preloadCache    *preloadCache
	preloadLimiter  *preloadRateLimiter
	preloadSem      *preloadSemaphore
	preloadObserver func(name string, outcome PreloadOutcome)

	current    ViewChange
	hasCurrent bool

	history      []string // full URLs (path?query), oldest first
	histPos      int      // index of the current entry, -1 when empty
	historyLimit int
}

type subscription struct {
	id int
	fn Subscriber
}

// New creates a dispatcher over a validated route table.
func New(table *route.Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		table:        table,
		logger:       slog.Default(),
		preloads:     make(map[string]PreloadFunc),
		preloadCfg:   DefaultPreloadConfig(),
		histPos:      -1,
		historyLimit: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.preloadCache = newPreloadCache(d.preloadCfg.TTL, d.preloadCfg.MaxEntries)
	d.preloadLimiter = newPreloadRateLimiter(d.preloadCfg.RateLimit)
	d.preloadSem = newPreloadSemaphore(d.preloadCfg.Concurrency)
	return d
}

// Table returns the dispatcher's route table.
func (d *Dispatcher) Table() *route.Table {
	return d.table
}

// Use appends middleware to the dispatch chain. Middleware runs in the
// order added, outermost first.
func (d *Dispatcher) Use(mw ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middleware = append(d.middleware, mw...)
}

// Subscribe registers a view change subscriber and returns a function that
// removes it.
func (d *Dispatcher) Subscribe(fn Subscriber) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextSubID
	d.nextSubID++
	d.subscribers = append(d.subscribers, subscription{id: id, fn: fn})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.subscribers {
			if s.id == id {
				d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
				return
			}
		}
	}
}

// OnPreload registers a preload effect for a view name. Registering for a
// name that already has an effect replaces it.
func (d *Dispatcher) OnPreload(name string, fn PreloadFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preloads[name] = fn
}

// Preloaded returns the cached preload result for a canonical URL, if a
// fresh one exists.
func (d *Dispatcher) Preloaded(url string) (any, bool) {
	return d.preloadCache.get(url)
}

// Current returns the current view, if any navigation has happened.
func (d *Dispatcher) Current() (ViewChange, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.hasCurrent
}

// PathFor generates the canonical URL for a view. See route.Table.PathFor.
func (d *Dispatcher) PathFor(name string, params route.Params) (string, error) {
	return d.table.PathFor(name, params)
}

// Navigate dispatches a navigation to a URL. The target must be a relative
// path ("/users/42", optionally with a query string); absolute URLs are
// rejected. The path is canonicalized, matched against the table (always
// resolving, thanks to the catch-all), and exactly one ViewChange is
// emitted. If the route has a preload effect it is triggered once,
// asynchronously; Navigate does not wait for it.
//
// If canonicalization changed the path, the history action is forced to
// replace so the client does not accumulate duplicate entries.
func (d *Dispatcher) Navigate(ctx context.Context, target string, opts ...NavigateOption) (ViewChange, error) {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") {
		return ViewChange{}, ErrInvalidTarget
	}
	if !strings.HasPrefix(target, "/") {
		return ViewChange{}, ErrInvalidTarget
	}

	res, err := urlpath.Canonicalize(target)
	if err != nil {
		return ViewChange{}, errors.Join(ErrInvalidTarget, err)
	}

	nav := &Navigation{
		Target:  target,
		Path:    res.Path,
		Query:   encodeQuery(res.Query, o.Query),
		Replace: o.Replace || res.Changed,
		Match:   d.table.Match(res.Path),
	}

	return d.dispatch(ctx, nav, o.SkipPreload)
}

// NavigateTo dispatches a programmatic navigation to a named view,
// generating the URL with PathFor first.
func (d *Dispatcher) NavigateTo(ctx context.Context, name string, params route.Params, opts ...NavigateOption) (ViewChange, error) {
	path, err := d.table.PathFor(name, params)
	if err != nil {
		return ViewChange{}, err
	}
	return d.Navigate(ctx, path, opts...)
}

// dispatch runs the middleware chain around the commit step. The
// dispatcher mutex is held for the whole dispatch, which serializes
// navigations and keeps the notification order deterministic.
func (d *Dispatcher) dispatch(ctx context.Context, nav *Navigation, skipPreload bool) (ViewChange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var change ViewChange
	core := func() error {
		change = d.commitLocked(nav)
		return nil
	}

	handler := core
	for i := len(d.middleware) - 1; i >= 0; i-- {
		mw := d.middleware[i]
		next := handler
		handler = func() error { return mw.Handle(ctx, nav, next) }
	}

	if err := handler(); err != nil {
		d.logger.Error("navigation aborted",
			"target", nav.Target,
			"view", nav.Match.Name,
			"error", err)
		return ViewChange{}, err
	}

	d.logger.Debug("navigated",
		"view", change.Name,
		"path", change.Path,
		"replace", change.Replace)

	if !skipPreload {
		d.triggerPreloadLocked(change, nav.Match)
	}

	return change, nil
}

// commitLocked updates the current-view cell and history, then emits the
// notification. Callers hold d.mu.
func (d *Dispatcher) commitLocked(nav *Navigation) ViewChange {
	change := ViewChange{
		Name:    nav.Match.Name,
		Params:  nav.Match.Params,
		Path:    nav.Path,
		Query:   nav.Query,
		Replace: nav.Replace,
	}

	d.current = change
	d.hasCurrent = true
	d.recordHistoryLocked(change.URL(), nav.Replace)
	d.emitLocked(change)
	return change
}

// emitLocked delivers the notification to every subscriber in order.
func (d *Dispatcher) emitLocked(change ViewChange) {
	for _, s := range d.subscribers {
		s.fn(change)
	}
}

// triggerPreloadLocked starts the preload effect for a navigation, if one
// is registered. At most one effect runs per navigation; the effect is
// asynchronous and unordered with respect to subsequent navigations.
func (d *Dispatcher) triggerPreloadLocked(change ViewChange, m route.Match) {
	fn, ok := d.preloads[change.Name]
	if !ok {
		return
	}

	url := change.URL()

	if _, hit := d.preloadCache.get(url); hit {
		d.observePreload(change.Name, PreloadHit)
		return
	}

	if !d.preloadLimiter.allow() {
		d.logger.Debug("preload rate limited", "view", change.Name, "url", url)
		d.observePreload(change.Name, PreloadDropped)
		return
	}

	if !d.preloadSem.acquire() {
		d.logger.Debug("preload concurrency limit reached", "view", change.Name, "url", url)
		d.observePreload(change.Name, PreloadDropped)
		return
	}

	go d.runPreload(fn, change.Name, url, m)
}

// runPreload executes one preload effect with the configured timeout.
func (d *Dispatcher) runPreload(fn PreloadFunc, name, url string, m route.Match) {
	defer d.preloadSem.release()

	ctx, cancel := context.WithTimeout(context.Background(), d.preloadCfg.Timeout)
	defer cancel()

	result, err := fn(ctx, m)
	if err != nil {
		d.logger.Warn("preload failed", "view", name, "url", url, "error", err)
		d.observePreload(name, PreloadError)
		return
	}

	d.preloadCache.set(url, result)
	d.observePreload(name, PreloadRun)
}

func (d *Dispatcher) observePreload(name string, outcome PreloadOutcome) {
	if d.preloadObserver != nil {
		d.preloadObserver(name, outcome)
	}
}
