package route

import (
	"fmt"
	"strings"
)

// ValidationErrorType categorizes table validation errors.
type ValidationErrorType string

const (
	// ErrorMissingCatchAll indicates the table has no catch-all route, so
	// some URLs would resolve to no view at all.
	ErrorMissingCatchAll ValidationErrorType = "MISSING_CATCH_ALL"

	// ErrorCatchAllNotLast indicates a catch-all route appears before the
	// end of the table, shadowing every route after it.
	ErrorCatchAllNotLast ValidationErrorType = "CATCH_ALL_NOT_LAST"

	// ErrorDuplicateName indicates two routes share a view name.
	ErrorDuplicateName ValidationErrorType = "DUPLICATE_NAME"

	// ErrorEmptyTable indicates the table has no routes.
	ErrorEmptyTable ValidationErrorType = "EMPTY_TABLE"
)

// ValidationError describes one way a route table is malformed. Tables are
// validated when they are built, never at match time: a malformed table is
// a startup configuration error, not a navigation error.
type ValidationError struct {
	// Type is the error category.
	Type ValidationErrorType

	// Message is the human-readable error message.
	Message string

	// Routes names the routes involved (view names).
	Routes []string

	// Pattern is the offending URL pattern, if there is one.
	Pattern string
}

func (e ValidationError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Pattern)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// MultiValidationError wraps every validation error found in one table.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route table errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// validateOrder checks the structural invariants of an ordered table:
// at least one route, unique names, and exactly one catch-all in the final
// position.
func validateOrder(routes []Route) error {
	var errs []ValidationError

	if len(routes) == 0 {
		errs = append(errs, ValidationError{
			Type:    ErrorEmptyTable,
			Message: "route table must contain at least one route",
		})
		return &MultiValidationError{Errors: errs}
	}

	// Unique view names.
	byName := make(map[string][]string)
	for _, r := range routes {
		byName[r.Name] = append(byName[r.Name], r.Pattern)
	}
	for name, patterns := range byName {
		if len(patterns) > 1 {
			errs = append(errs, ValidationError{
				Type:    ErrorDuplicateName,
				Message: fmt.Sprintf("view name %q is registered %d times", name, len(patterns)),
				Routes:  []string{name},
				Pattern: strings.Join(patterns, ", "),
			})
		}
	}

	// The sentinel (a bare "/*name" catch-all) must be last. Anywhere
	// earlier it would absorb every URL before later routes are tried.
	// Catch-alls under a static prefix ("/docs/*rest") only shadow their
	// own subtree and may appear anywhere.
	for i, r := range routes {
		if r.isSentinel() && i != len(routes)-1 {
			errs = append(errs, ValidationError{
				Type:    ErrorCatchAllNotLast,
				Message: fmt.Sprintf("catch-all route %q at position %d shadows %d later route(s)", r.Name, i, len(routes)-1-i),
				Routes:  []string{r.Name},
				Pattern: r.Pattern,
			})
		}
	}

	if !routes[len(routes)-1].isSentinel() {
		errs = append(errs, ValidationError{
			Type:    ErrorMissingCatchAll,
			Message: "the last route must be a catch-all matching any URL so every path resolves to a view",
			Routes:  []string{routes[len(routes)-1].Name},
			Pattern: routes[len(routes)-1].Pattern,
		})
	}

	if len(errs) > 0 {
		// Deterministic order for multi-error output.
		sortValidationErrors(errs)
		return &MultiValidationError{Errors: errs}
	}
	return nil
}

// sortValidationErrors orders errors by type then message.
func sortValidationErrors(errs []ValidationError) {
	for i := 1; i < len(errs); i++ {
		for j := i; j > 0; j-- {
			a, b := errs[j-1], errs[j]
			if a.Type < b.Type || (a.Type == b.Type && a.Message <= b.Message) {
				break
			}
			errs[j-1], errs[j] = b, a
		}
	}
}
