package route

import (
	"fmt"
	"strings"
)

// Params maps parameter names to their raw string values.
type Params map[string]string

// ParamDef describes a named parameter declared by a pattern.
type ParamDef struct {
	// Name is the parameter name (e.g., "id").
	Name string

	// Type is the parameter type constraint ("string", "int", "uuid", ...).
	// The catch-all parameter always has type "path".
	Type string
}

// segment is one compiled element of a route pattern.
type segment struct {
	// literal is the static text this segment matches (empty for dynamic).
	literal string

	// isParam indicates a single-segment parameter (:id).
	isParam bool

	// isCatchAll indicates a catch-all parameter (*rest).
	isCatchAll bool

	// paramName is the parameter name (without : or *).
	paramName string

	// paramType is the declared type constraint for the parameter.
	paramType string
}

// Route binds a URL pattern to a view name.
type Route struct {
	// Name identifies the view this route resolves to. Unique per table.
	Name string

	// Pattern is the original pattern string (e.g., "/users/:id:int").
	Pattern string

	segments []segment
	catchAll bool
	params   []ParamDef
}

// New compiles a pattern into a Route. The pattern must start with "/" and
// may contain static segments, :name or :name:type parameters, and a single
// trailing *name catch-all.
func New(name, pattern string) (Route, error) {
	if name == "" {
		return Route{}, fmt.Errorf("route: name must not be empty")
	}
	if !strings.HasPrefix(pattern, "/") {
		return Route{}, fmt.Errorf("route %q: pattern %q must start with %q", name, pattern, "/")
	}

	r := Route{Name: name, Pattern: pattern}

	seen := make(map[string]bool)
	for _, raw := range splitPattern(pattern) {
		if r.catchAll {
			return Route{}, fmt.Errorf("route %q: segment after catch-all in %q", name, pattern)
		}

		switch {
		case strings.HasPrefix(raw, "*"):
			pname := raw[1:]
			if pname == "" {
				return Route{}, fmt.Errorf("route %q: catch-all segment in %q is missing a name", name, pattern)
			}
			if seen[pname] {
				return Route{}, fmt.Errorf("route %q: duplicate parameter %q in %q", name, pname, pattern)
			}
			seen[pname] = true
			r.segments = append(r.segments, segment{
				isCatchAll: true,
				paramName:  pname,
				paramType:  "path",
			})
			r.catchAll = true
			r.params = append(r.params, ParamDef{Name: pname, Type: "path"})

		case strings.HasPrefix(raw, ":"):
			pname, ptype, err := parseParamSegment(raw)
			if err != nil {
				return Route{}, fmt.Errorf("route %q: %w", name, err)
			}
			if seen[pname] {
				return Route{}, fmt.Errorf("route %q: duplicate parameter %q in %q", name, pname, pattern)
			}
			seen[pname] = true
			r.segments = append(r.segments, segment{
				isParam:   true,
				paramName: pname,
				paramType: ptype,
			})
			r.params = append(r.params, ParamDef{Name: pname, Type: ptype})

		case raw == "":
			return Route{}, fmt.Errorf("route %q: empty segment in %q", name, pattern)

		default:
			r.segments = append(r.segments, segment{literal: raw})
		}
	}

	return r, nil
}

// MustNew is like New but panics on a malformed pattern. It is intended for
// route tables declared as package-level literals.
func MustNew(name, pattern string) Route {
	r, err := New(name, pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// IsCatchAll reports whether the route ends in a catch-all segment.
func (r Route) IsCatchAll() bool {
	return r.catchAll
}

// isSentinel reports whether the route is a universal catch-all ("/*name"),
// the fallback that accepts any URL whatsoever.
func (r Route) isSentinel() bool {
	return r.catchAll && len(r.segments) == 1
}

// ParamDefs returns the parameters declared by the pattern, in order.
func (r Route) ParamDefs() []ParamDef {
	defs := make([]ParamDef, len(r.params))
	copy(defs, r.params)
	return defs
}

// splitPattern splits a pattern into raw segments. The root pattern "/"
// yields no segments.
func splitPattern(pattern string) []string {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int".
func parseParamSegment(raw string) (name, paramType string, err error) {
	body := raw[1:]
	if body == "" {
		return "", "", fmt.Errorf("parameter segment %q is missing a name", raw)
	}
	if idx := strings.Index(body, ":"); idx != -1 {
		name, paramType = body[:idx], body[idx+1:]
		if name == "" || paramType == "" {
			return "", "", fmt.Errorf("malformed parameter segment %q", raw)
		}
		if !knownParamType(paramType) {
			return "", "", fmt.Errorf("unknown parameter type %q in segment %q", paramType, raw)
		}
		return name, paramType, nil
	}
	return body, "string", nil
}

// knownParamType reports whether a type annotation is supported.
func knownParamType(t string) bool {
	switch t {
	case "string", "int", "int64", "int32", "uint", "uint64", "uint32", "float", "float64", "bool", "uuid":
		return true
	}
	return false
}
