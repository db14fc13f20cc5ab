package route

import (
	"strings"

	"github.com/wayfare-dev/wayfare/pkg/urlpath"
)

// Match is the result of resolving a path against a table.
type Match struct {
	// Name is the view name of the matched route.
	Name string

	// Params are the extracted, decoded parameter values.
	Params Params

	// Route is the matched route.
	Route *Route
}

// Table is an immutable, ordered route table. Matching is first-match-wins
// in declaration order; the last route is always a catch-all, which makes
// Match total. Build one with NewTable and share it freely: a Table is
// read-only after construction and safe for concurrent use.
type Table struct {
	routes []Route
	byName map[string]*Route
}

// NewTable validates the given routes and builds a table from them.
// The order of the arguments is the match order. Validation fails when the
// catch-all is missing, misplaced, or duplicated, or when two routes share
// a name; all violations are reported together in a *MultiValidationError.
func NewTable(routes ...Route) (*Table, error) {
	if err := validateOrder(routes); err != nil {
		return nil, err
	}

	t := &Table{
		routes: make([]Route, len(routes)),
		byName: make(map[string]*Route, len(routes)),
	}
	copy(t.routes, routes)
	for i := range t.routes {
		t.byName[t.routes[i].Name] = &t.routes[i]
	}
	return t, nil
}

// MustNewTable is like NewTable but panics on validation failure. Intended
// for tables declared at program start, where a bad table is a bug.
func MustNewTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Match resolves a path to a view. The path should already be canonical
// (see urlpath.Canonicalize); any query string is ignored. Match is total:
// a path no earlier route accepts falls through to the catch-all.
func (t *Table) Match(path string) Match {
	path, _ = urlpath.Split(path)
	segments := splitPath(path)

	for i := range t.routes {
		if params, ok := matchRoute(&t.routes[i], segments); ok {
			return Match{
				Name:   t.routes[i].Name,
				Params: params,
				Route:  &t.routes[i],
			}
		}
	}

	// Unreachable for a validated table: the catch-all accepts everything.
	last := &t.routes[len(t.routes)-1]
	return Match{
		Name:   last.Name,
		Params: Params{},
		Route:  last,
	}
}

// Lookup returns the route registered under a view name.
func (t *Table) Lookup(name string) (*Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Routes returns the routes in match order.
func (t *Table) Routes() []Route {
	routes := make([]Route, len(t.routes))
	copy(routes, t.routes)
	return routes
}

// Len returns the number of routes in the table.
func (t *Table) Len() int {
	return len(t.routes)
}

// matchRoute attempts to match one route against the path segments.
func matchRoute(r *Route, segments []string) (Params, bool) {
	params := make(Params)
	si := 0

	for _, seg := range r.segments {
		switch {
		case seg.isCatchAll:
			// Consumes everything remaining, including nothing.
			rest := strings.Join(segments[si:], "/")
			decoded, err := urlpath.DecodeSegment(rest, true)
			if err != nil {
				return nil, false
			}
			params[seg.paramName] = decoded
			return params, true

		case seg.isParam:
			if si >= len(segments) {
				return nil, false
			}
			decoded, err := urlpath.DecodeSegment(segments[si], false)
			if err != nil {
				return nil, false
			}
			if ValidateParam(decoded, seg.paramType) != nil {
				// Typed mismatch: let a later route claim this path.
				return nil, false
			}
			params[seg.paramName] = decoded
			si++

		default:
			if si >= len(segments) || segments[si] != seg.literal {
				return nil, false
			}
			si++
		}
	}

	if si != len(segments) {
		return nil, false
	}
	return params, true
}

// splitPath splits a canonical path into segments. Root yields none.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
