// Package route implements Wayfare's route table: an immutable ordered
// sequence of URL patterns mapped to view names.
//
// The route package provides:
//   - Pattern compilation with typed parameters (:id, :id:int, :ref:uuid)
//     and a catch-all segment (*rest)
//   - First-match-wins matching over the ordered table
//   - Parameter extraction with type coercion into tagged structs
//   - PathFor, the inverse of Match, for generating canonical URLs
//   - Construction-time validation of the table
//
// # Patterns
//
// Dynamic route segments are declared with a leading colon:
//
//	:id          -> id (string by default)
//	:id:int      -> id (must parse as an integer)
//	:ref:uuid    -> ref (must be a UUID)
//	*rest        -> rest (catch-all, consumes the remainder of the path)
//
// # Ordering
//
// Matching walks the table in declaration order and stops at the first route
// whose pattern accepts the path. The table is a sequence, not a map: two
// overlapping patterns are legal, and the earlier one wins. The final route
// must be a catch-all so that every URL resolves to some view; a table
// without one, or with the catch-all anywhere but last, fails validation
// when it is built.
//
// # Usage
//
//	table, err := route.NewTable(
//	    route.MustNew("home", "/"),
//	    route.MustNew("user", "/users/:id:int"),
//	    route.MustNew("docs", "/docs/*rest"),
//	    route.MustNew("not-found", "/*rest"),
//	)
//
//	m := table.Match("/users/42")
//	// m.Name == "user", m.Params["id"] == "42"
//
//	path, _ := table.PathFor("user", route.Params{"id": "42"})
//	// path == "/users/42"
package route
