package route

import (
	"errors"
	"testing"
)

// mustValidationErrors builds a table and requires validation to fail,
// returning the individual errors.
func mustValidationErrors(t *testing.T, routes ...Route) []ValidationError {
	t.Helper()
	_, err := NewTable(routes...)
	if err == nil {
		t.Fatal("NewTable expected validation error")
	}
	var multi *MultiValidationError
	if !errors.As(err, &multi) {
		t.Fatalf("error type = %T, want *MultiValidationError", err)
	}
	return multi.Errors
}

func hasErrorType(errs []ValidationError, typ ValidationErrorType) bool {
	for _, e := range errs {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestValidateEmptyTable(t *testing.T) {
	errs := mustValidationErrors(t)
	if !hasErrorType(errs, ErrorEmptyTable) {
		t.Errorf("errors = %v, want EMPTY_TABLE", errs)
	}
}

func TestValidateMissingCatchAll(t *testing.T) {
	errs := mustValidationErrors(t,
		MustNew("home", "/"),
		MustNew("about", "/about"),
	)
	if !hasErrorType(errs, ErrorMissingCatchAll) {
		t.Errorf("errors = %v, want MISSING_CATCH_ALL", errs)
	}
}

func TestValidateCatchAllNotLast(t *testing.T) {
	// Regression guard: a catch-all anywhere but last would change every
	// match after it, so construction must refuse the table outright.
	errs := mustValidationErrors(t,
		MustNew("not-found", "/*rest"),
		MustNew("about", "/about"),
	)
	if !hasErrorType(errs, ErrorCatchAllNotLast) {
		t.Errorf("errors = %v, want CATCH_ALL_NOT_LAST", errs)
	}
	if !hasErrorType(errs, ErrorMissingCatchAll) {
		t.Errorf("errors = %v, want MISSING_CATCH_ALL too", errs)
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	errs := mustValidationErrors(t,
		MustNew("page", "/a"),
		MustNew("page", "/b"),
		MustNew("not-found", "/*rest"),
	)
	if !hasErrorType(errs, ErrorDuplicateName) {
		t.Errorf("errors = %v, want DUPLICATE_NAME", errs)
	}
}

func TestValidateScopedCatchAllAllowed(t *testing.T) {
	// A catch-all under a static prefix is not the sentinel; only the
	// final route needs to be one, and prefix catch-alls may precede it.
	_, err := NewTable(
		MustNew("docs", "/docs/*rest"),
		MustNew("not-found", "/*rest"),
	)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
}

func TestValidateReportsAllErrorsAtOnce(t *testing.T) {
	errs := mustValidationErrors(t,
		MustNew("dup", "/a"),
		MustNew("dup", "/b"),
		MustNew("tail", "/tail"),
	)
	if len(errs) < 2 {
		t.Errorf("got %d errors, want duplicate-name and missing-catch-all together", len(errs))
	}
}

func TestMustNewTablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewTable should panic on invalid table")
		}
	}()
	MustNewTable(MustNew("about", "/about"))
}
