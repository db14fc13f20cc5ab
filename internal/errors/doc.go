// Package errors provides structured, actionable error messages for Wayfare.
//
// Each error carries a stable code (e.g., "W101") that maps to a short
// message, a detailed explanation, and a documentation URL. Errors support
// errors.Is/As through Unwrap, and the CLI renders them with Format.
//
// # Error Categories
//
//   - config: wayfare.json loading and validation errors
//   - route: route table construction errors (catch-all position, duplicates)
//   - protocol: wire protocol errors (invalid frames, oversized payloads)
//   - session: live session errors (unknown session, malformed URLs)
//
// # Usage
//
//	err := errors.New("W102").
//	    WithDetail("catch-all %q is at position %d of %d", pattern, i, n).
//	    WithSuggestion("move the catch-all route to the end of the table")
package errors
