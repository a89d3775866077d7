// Package errorkinds declares the four error kinds of §7, using
// gopkg.in/src-d/go-errors.v1's Kind the way the teacher's auth package
// declares ErrNotAuthorized/ErrNoPermission.
package errorkinds

import "gopkg.in/src-d/go-errors.v1"

var (
	// InvalidSyntax is surfaced by the front-end when a query string
	// lacks SELECT/FROM, has unbalanced parentheses, or contains a
	// malformed atom. Propagates to the caller (fatal).
	InvalidSyntax = errors.NewKind("invalid syntax: %s")

	// Validation is returned when a tree fails the invariants in §3.2:
	// missing tag, cyclic/aliased reference, or arity mismatch.
	// Propagates to the caller (fatal).
	Validation = errors.NewKind("validation failed: %s")

	// AmbiguousAttribute is raised when a predicate or projection
	// attribute can't be resolved to a single side of a join during R7
	// or R8. Non-fatal: logged as a warning, the rule falls back to the
	// documented default bucket (both for R7, left for R8).
	AmbiguousAttribute = errors.NewKind("ambiguous attribute %q")

	// UnknownStatistics is raised when a relation named in the tree has
	// no entry in the statistics provider. Non-fatal: logged as a
	// warning, default statistics are substituted.
	UnknownStatistics = errors.NewKind("no statistics for relation %q")
)
