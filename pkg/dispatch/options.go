package dispatch

import (
	"fmt"
	"log/slog"
	"net/url"
)

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithPreloadConfig overrides the preload cache, rate limit, and
// concurrency settings.
func WithPreloadConfig(cfg *PreloadConfig) Option {
	return func(d *Dispatcher) {
		if cfg != nil {
			d.preloadCfg = cfg
		}
	}
}

// WithHistoryLimit bounds the navigation history stack. Older entries are
// discarded once the limit is reached. Default: 100.
func WithHistoryLimit(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.historyLimit = n
		}
	}
}

// WithPreloadObserver registers a callback invoked once per navigation
// with the preload outcome for the entered view. Used to hook metrics in
// without coupling the dispatcher to a metrics backend.
func WithPreloadObserver(fn func(name string, outcome PreloadOutcome)) Option {
	return func(d *Dispatcher) {
		d.preloadObserver = fn
	}
}

// NavigateOptions configures a single navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query are query parameters to add to the target URL.
	Query map[string]any

	// SkipPreload suppresses the preload effect for this navigation.
	SkipPreload bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds query parameters to the navigation target.
func WithQuery(query map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = query
	}
}

// WithoutPreload suppresses the preload effect for this navigation.
func WithoutPreload() NavigateOption {
	return func(o *NavigateOptions) {
		o.SkipPreload = true
	}
}

// encodeQuery merges option query parameters into an existing query string.
func encodeQuery(existing string, extra map[string]any) string {
	if len(extra) == 0 {
		return existing
	}
	q, err := url.ParseQuery(existing)
	if err != nil {
		q = url.Values{}
	}
	for k, v := range extra {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	return q.Encode()
}
