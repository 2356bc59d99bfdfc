// pkg/equiv/assertion.go
package equiv

import (
	"bytes"
	"reflect"
	"time"
)

/*
 * Assertion rules.
 *
 * An assertion rule overrides structural recursion for the values its
 * predicate claims. The plan keeps rules most recently registered first
 * and the engine takes the first predicate hit, so a later registration
 * wins over an earlier one for overlapping types. When no rule claims a
 * pair, recursive plans descend structurally and non-recursive plans fall
 * back to direct value equality.
 *
 * Predicates are plain functions over a Target, not subtype checks, so
 * type-based and path-based targeting compose the same way.
 *
 * Two rules are seeded into every preset:
 *   - time.Time pairs compare via time.Time.Equal. The struct has no
 *     exported fields, so naive recursion would find nothing to compare
 *     and pass different instants as equal.
 *   - []byte pairs compare as text via bytes.Equal instead of element by
 *     element, and report as strings.
 */

// Target identifies a value pair for assertion predicates: where it sits,
// what the member declared, and what the subject actually holds. Declared
// is nil at the comparison root; Runtime is never nil.
type Target struct {
	Path     Path
	Declared reflect.Type
	Runtime  reflect.Type
}

// LeafFunc compares a pair as an indivisible unit. A nil return means
// equal; a Failure reports the difference at path.
type LeafFunc func(subject, expectation reflect.Value, path Path) *Failure

// Rule pairs a predicate over targets with the leaf comparison applied
// when the predicate claims the pair.
type Rule struct {
	Predicate func(Target) bool
	Compare   LeafFunc
}

// ForType builds a predicate claiming targets whose runtime or declared
// type is t, points to t, or is assignable to it. Use with
// Config.Overriding for manual rule construction.
func ForType(t reflect.Type) func(Target) bool {
	return func(tg Target) bool {
		return typeMatches(tg.Runtime, t) || typeMatches(tg.Declared, t)
	}
}

func typeMatches(t, want reflect.Type) bool {
	if t == nil || want == nil {
		return false
	}
	if t == want {
		return true
	}
	if t.Kind() == reflect.Pointer && t.Elem() == want {
		return true
	}
	if want.Kind() == reflect.Pointer && want.Elem() == t {
		return true
	}
	if want.Kind() == reflect.Interface && t.Implements(want) {
		return true
	}
	return t.AssignableTo(want)
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// timeRule compares time.Time and *time.Time pairs by instant, ignoring
// location and monotonic clock.
func timeRule() Rule {
	return Rule{
		Predicate: ForType(timeType),
		Compare: func(subject, expectation reflect.Value, path Path) *Failure {
			st, sok := asTime(subject)
			et, eok := asTime(expectation)
			if !sok || !eok {
				return valueMismatch(path, subject, expectation)
			}
			if st.Equal(et) {
				return nil
			}
			return &Failure{
				Path:     path,
				Subject:  st,
				Expected: et,
				Reason:   "expected %s, found %s",
				Args:     []any{et.Format(time.RFC3339Nano), st.Format(time.RFC3339Nano)},
			}
		},
	}
}

func asTime(v reflect.Value) (time.Time, bool) {
	v = indirect(v)
	if !v.IsValid() || v.Type() != timeType || !v.CanInterface() {
		return time.Time{}, false
	}
	return v.Interface().(time.Time), true
}

// bytesRule compares []byte pairs as text content.
func bytesRule() Rule {
	return Rule{
		Predicate: ForType(bytesType),
		Compare: func(subject, expectation reflect.Value, path Path) *Failure {
			sb, sok := asBytes(subject)
			eb, eok := asBytes(expectation)
			if !sok || !eok {
				return valueMismatch(path, subject, expectation)
			}
			if bytes.Equal(sb, eb) {
				return nil
			}
			return &Failure{
				Path:     path,
				Subject:  string(sb),
				Expected: string(eb),
				Reason:   "expected %q, found %q",
				Args:     []any{string(eb), string(sb)},
			}
		},
	}
}

func asBytes(v reflect.Value) ([]byte, bool) {
	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	if b, ok := v.Interface().([]byte); ok {
		return b, true
	}
	// A string counterpart compares as its bytes, so decoded documents can
	// stand in for raw content.
	if v.Kind() == reflect.String {
		return []byte(v.String()), true
	}
	return nil, false
}
