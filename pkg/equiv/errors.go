// pkg/equiv/errors.go
package equiv

import "errors"

// Configuration errors surfaced by Config.Build. Ordinary mismatches are
// never errors; they are reported as Failures inside a Result.
var (
	// ErrMalformedPattern indicates an include/exclude pattern that does
	// not parse.
	ErrMalformedPattern = errors.New("malformed member pattern")

	// ErrNoMatchingRule indicates a plan without an active matching rule.
	ErrNoMatchingRule = errors.New("comparison plan has no matching rule")

	// ErrInvalidMaxDepth indicates a non-positive depth limit.
	ErrInvalidMaxDepth = errors.New("maximum comparison depth must be positive")

	// ErrNilOverride indicates an assertion override registered without a
	// predicate or comparison function.
	ErrNilOverride = errors.New("assertion override needs a predicate and a comparison")
)
