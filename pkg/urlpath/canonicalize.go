// Package urlpath normalizes URL paths before they reach the route table.
//
// Every navigation target passes through Canonicalize so that the matcher
// only ever sees one spelling of a path: no duplicate slashes, no trailing
// slash (except root), no "." or ".." segments. Inputs that cannot be made
// safe (backslashes, NUL bytes, escapes out of root) are rejected outright.
package urlpath

import (
	"errors"
	"net/url"
	"strings"
)

// Result contains the outcome of path canonicalization.
type Result struct {
	// Path is the canonicalized path (without query string).
	Path string

	// Query is the query string (without leading "?").
	Query string

	// Changed indicates if the path was modified during canonicalization.
	Changed bool
}

// Canonicalization errors.
var (
	ErrInvalidPath           = errors.New("urlpath: invalid path")
	ErrBackslashInPath       = errors.New("urlpath: path contains backslash")
	ErrNullByteInPath        = errors.New("urlpath: path contains null byte")
	ErrInvalidPercentEscape  = errors.New("urlpath: invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("urlpath: path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("urlpath: encoded slash (%2F) in non-catch-all segment")
)

// Canonicalize normalizes a URL path for matching.
//
// The following transformations are applied:
//   - ensure a leading slash
//   - remove the trailing slash (except for root "/")
//   - collapse multiple slashes (/blog//post -> /blog/post)
//   - remove "." segments (/blog/./post -> /blog/post)
//   - resolve ".." segments (/blog/../other -> /other)
//
// The following inputs are rejected with an error:
//   - paths containing backslash (\)
//   - paths containing a NUL byte, literal or encoded
//   - invalid percent-escapes (e.g., %GG, a truncated %2)
//   - ".." that would escape root (e.g., /../secret)
//
// The input may include a query string, which is preserved but not
// canonicalized.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	path, query, _ := strings.Cut(input, "?")

	// SECURITY: Reject backslash.
	if strings.Contains(path, "\\") {
		return Result{}, ErrBackslashInPath
	}

	// SECURITY: Reject NUL byte (both literal and encoded).
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Result{}, ErrNullByteInPath
	}

	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Result{}, err
		}
	}

	original := path

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	// Normalize "." and ".." segment by segment.
	segments := strings.Split(path, "/")
	var result []string

	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) > 0 {
				result = result[:len(result)-1]
			} else {
				// SECURITY: ".." escapes root.
				return Result{}, ErrPathEscapesRoot
			}
		default:
			result = append(result, seg)
		}
	}

	path = "/" + strings.Join(result, "/")

	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}

	return Result{
		Path:    path,
		Query:   query,
		Changed: path != original,
	}, nil
}

// CanonicalizeNavTarget canonicalizes and validates a navigation target.
//
// Navigation targets must be relative paths: they must start with "/" and
// must not be full URLs ("http://", "https://", protocol-relative "//").
// Absolute URLs are rejected to prevent open-redirect style targets from
// entering the dispatcher.
//
// Returns the canonicalized path with any query string reattached.
func CanonicalizeNavTarget(target string) (string, error) {
	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") {
		return "", ErrInvalidPath
	}
	if !strings.HasPrefix(target, "/") {
		return "", ErrInvalidPath
	}

	result, err := Canonicalize(target)
	if err != nil {
		return "", err
	}

	if result.Query != "" {
		return result.Path + "?" + result.Query, nil
	}
	return result.Path, nil
}

// DecodeSegment decodes a single path segment.
//
// For non-catch-all params, a decoded "/" (i.e., %2F in the raw segment)
// is rejected as a path smuggling attempt.
func DecodeSegment(segment string, isCatchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}

	if !isCatchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}

	return decoded, nil
}

// Split splits an input into path and query components.
// The query is returned without the leading "?".
func Split(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// validatePercentEscapes checks that all percent-escapes are valid.
// Valid escapes are %XX where X is a hex digit (0-9, a-f, A-F).
func validatePercentEscapes(path string) error {
	i := 0
	for i < len(path) {
		if path[i] == '%' {
			if i+2 >= len(path) {
				return ErrInvalidPercentEscape
			}
			if !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
				return ErrInvalidPercentEscape
			}
			i += 3
		} else {
			i++
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
