package dispatch

import "context"

// recordHistoryLocked applies a navigation to the history stack. A push
// truncates any forward entries (navigating after going back discards the
// abandoned branch, the way browser history does); a replace overwrites
// the current entry. Callers hold d.mu.
func (d *Dispatcher) recordHistoryLocked(url string, replace bool) {
	if replace && d.histPos >= 0 {
		d.history[d.histPos] = url
		return
	}

	// Drop the forward branch.
	d.history = d.history[:d.histPos+1]
	d.history = append(d.history, url)
	d.histPos++

	// Bound the stack.
	if len(d.history) > d.historyLimit {
		drop := len(d.history) - d.historyLimit
		d.history = d.history[drop:]
		d.histPos -= drop
	}
}

// Back moves one entry back in the navigation history and re-dispatches
// it. The resulting notification carries Replace=true: the movement is a
// pointer change, not a new entry. Returns ErrNoHistory at the oldest
// entry.
func (d *Dispatcher) Back(ctx context.Context) (ViewChange, error) {
	d.mu.Lock()
	if d.histPos <= 0 {
		d.mu.Unlock()
		return ViewChange{}, ErrNoHistory
	}
	d.histPos--
	target := d.history[d.histPos]
	d.mu.Unlock()

	return d.redispatch(ctx, target)
}

// Forward moves one entry forward in the navigation history and
// re-dispatches it. Returns ErrNoHistory at the newest entry.
func (d *Dispatcher) Forward(ctx context.Context) (ViewChange, error) {
	d.mu.Lock()
	if d.histPos < 0 || d.histPos >= len(d.history)-1 {
		d.mu.Unlock()
		return ViewChange{}, ErrNoHistory
	}
	d.histPos++
	target := d.history[d.histPos]
	d.mu.Unlock()

	return d.redispatch(ctx, target)
}

// HistoryLen returns the number of history entries.
func (d *Dispatcher) HistoryLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}

// redispatch emits a navigation for a history entry without recording a
// new one.
func (d *Dispatcher) redispatch(ctx context.Context, target string) (ViewChange, error) {
	path, query := splitURL(target)
	nav := &Navigation{
		Target:  target,
		Path:    path,
		Query:   query,
		Replace: true,
		Match:   d.table.Match(path),
	}
	return d.dispatchHistory(ctx, nav)
}

// dispatchHistory is dispatch without the history record: the pointer has
// already been moved by Back/Forward.
func (d *Dispatcher) dispatchHistory(ctx context.Context, nav *Navigation) (ViewChange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var change ViewChange
	core := func() error {
		change = ViewChange{
			Name:    nav.Match.Name,
			Params:  nav.Match.Params,
			Path:    nav.Path,
			Query:   nav.Query,
			Replace: true,
		}
		d.current = change
		d.hasCurrent = true
		d.emitLocked(change)
		return nil
	}

	handler := core
	for i := len(d.middleware) - 1; i >= 0; i-- {
		mw := d.middleware[i]
		next := handler
		handler = func() error { return mw.Handle(ctx, nav, next) }
	}

	if err := handler(); err != nil {
		return ViewChange{}, err
	}

	d.triggerPreloadLocked(change, nav.Match)
	return change, nil
}

// splitURL separates a stored history URL into path and query.
func splitURL(url string) (path, query string) {
	for i := 0; i < len(url); i++ {
		if url[i] == '?' {
			return url[:i], url[i+1:]
		}
	}
	return url, ""
}
