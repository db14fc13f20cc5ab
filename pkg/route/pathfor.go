package route

import (
	"fmt"
	"net/url"
	"strings"
)

// Path generation errors.
type PathError struct {
	// Name is the view name PathFor was called with.
	Name string

	// Param is the parameter involved, if the error concerns one.
	Param string

	// Reason describes what went wrong.
	Reason string
}

func (e *PathError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("route: path for %q: param %q: %s", e.Name, e.Param, e.Reason)
	}
	return fmt.Sprintf("route: path for %q: %s", e.Name, e.Reason)
}

// PathFor generates the canonical URL path for a view, substituting params
// into the route's pattern. It is the inverse of Match: for any route
// without a catch-all segment, Match(PathFor(name, params)) yields the same
// name and params.
//
// Every declared parameter must be present in params, and typed parameters
// must satisfy their constraint. Params not declared by the pattern are
// rejected rather than silently dropped.
func (t *Table) PathFor(name string, params Params) (string, error) {
	r, ok := t.byName[name]
	if !ok {
		return "", &PathError{Name: name, Reason: "unknown view name"}
	}

	used := make(map[string]bool, len(params))
	var sb strings.Builder

	for _, seg := range r.segments {
		switch {
		case seg.isCatchAll:
			value, ok := params[seg.paramName]
			if !ok {
				return "", &PathError{Name: name, Param: seg.paramName, Reason: "missing value"}
			}
			used[seg.paramName] = true
			if value == "" {
				continue
			}
			// Escape each element but keep the slashes that join them.
			parts := strings.Split(value, "/")
			for i, p := range parts {
				parts[i] = url.PathEscape(p)
			}
			sb.WriteByte('/')
			sb.WriteString(strings.Join(parts, "/"))

		case seg.isParam:
			value, ok := params[seg.paramName]
			if !ok {
				return "", &PathError{Name: name, Param: seg.paramName, Reason: "missing value"}
			}
			if value == "" {
				return "", &PathError{Name: name, Param: seg.paramName, Reason: "empty value"}
			}
			if err := ValidateParam(value, seg.paramType); err != nil {
				return "", &PathError{Name: name, Param: seg.paramName, Reason: err.Error()}
			}
			used[seg.paramName] = true
			sb.WriteByte('/')
			sb.WriteString(url.PathEscape(value))

		default:
			sb.WriteByte('/')
			sb.WriteString(seg.literal)
		}
	}

	for pname := range params {
		if !used[pname] {
			return "", &PathError{Name: name, Param: pname, Reason: "not declared by pattern"}
		}
	}

	if sb.Len() == 0 {
		return "/", nil
	}
	return sb.String(), nil
}
