// pkg/equiv/value.go
package equiv

import (
	"math"
	"reflect"
)

/*
 * Value predicates shared by the traversal.
 *
 * Absence folds reflect's two nil shapes into one: an invalid Value (a nil
 * interface at the root, a missing map key) and a nil pointer-like value
 * behave identically everywhere the engine asks "is there anything here".
 *
 * Leaf equality is deliberately tolerant across numeric kinds: an int(1)
 * subject equals a float64(1) expectation. Decoded documents surface
 * numbers as float64 while typed values carry int kinds, and a structural
 * comparator that fails on that distinction would be useless for the
 * document/typed mix. Integer pairs compare as integers, never through
 * float64; a float equals an integer only when it is integral and converts
 * back without loss. All other kind mixes compare unequal.
 */

// isAbsent reports whether v holds nothing: an invalid value or a nil
// pointer, interface, map, slice, channel or function.
func isAbsent(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// sameIdentity reports whether both values are the same reference: equal
// pointer, same map, or the same slice window. Value equality never counts.
func sameIdentity(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}
	if a.Kind() != b.Kind() || a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	}
	return false
}

// indirect strips pointer and interface wrappers. Returns an invalid value
// when the chain ends in nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// display extracts a value for failure reporting. Invalid values report as
// nil, matching how they print.
func display(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.CanInterface() {
		return v.Interface()
	}
	return v.String()
}

// leafEqual compares two values as indivisible units. Numeric kinds compare
// by value across kind boundaries; identical types compare natively; any
// other combination is unequal.
func leafEqual(subject, expectation reflect.Value) bool {
	s, e := indirect(subject), indirect(expectation)
	if !s.IsValid() || !e.IsValid() {
		return !s.IsValid() && !e.IsValid()
	}

	if isNumeric(s) && isNumeric(e) {
		return numericEqual(s, e)
	}

	if s.Type() != e.Type() {
		return false
	}
	if s.Comparable() {
		return s.Equal(e)
	}
	if s.CanInterface() && e.CanInterface() {
		return reflect.DeepEqual(s.Interface(), e.Interface())
	}
	return false
}

func isNumeric(v reflect.Value) bool {
	return v.CanInt() || v.CanUint() || v.CanFloat()
}

// numericEqual compares two numeric values without rounding either side.
// Integer pairs stay in integer arithmetic whatever their kinds; float64
// cannot represent every int64 or uint64.
func numericEqual(s, e reflect.Value) bool {
	switch {
	case s.CanInt() && e.CanInt():
		return s.Int() == e.Int()
	case s.CanUint() && e.CanUint():
		return s.Uint() == e.Uint()
	case s.CanInt() && e.CanUint():
		return s.Int() >= 0 && uint64(s.Int()) == e.Uint()
	case s.CanUint() && e.CanInt():
		return e.Int() >= 0 && s.Uint() == uint64(e.Int())
	case s.CanFloat() && e.CanFloat():
		return s.Float() == e.Float()
	case s.CanFloat() && e.CanInt():
		return floatEqualsInt(s.Float(), e.Int())
	case s.CanInt() && e.CanFloat():
		return floatEqualsInt(e.Float(), s.Int())
	case s.CanFloat() && e.CanUint():
		return floatEqualsUint(s.Float(), e.Uint())
	case s.CanUint() && e.CanFloat():
		return floatEqualsUint(e.Float(), s.Uint())
	}
	return false
}

// floatEqualsInt requires f to be integral and inside int64 range, where
// the conversion back is exact at every magnitude.
func floatEqualsInt(f float64, n int64) bool {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return false
	}
	return int64(f) == n
}

func floatEqualsUint(f float64, u uint64) bool {
	if f != math.Trunc(f) || f < 0 || f >= 1<<64 {
		return false
	}
	return uint64(f) == u
}
