// pkg/equiv/tracker.go
package equiv

import "reflect"

/*
 * Cyclic reference tracking.
 *
 * The tracker records the identity of every pointer-like subject currently
 * on the active descent, so re-entering one is detected before it recurses
 * forever. Identity is {address, type, length-for-slices}, never value
 * equality: two distinct but value-equal nodes must not be conflated, and
 * a slice re-sliced to a different window is a different identity even at
 * the same address.
 *
 * One tracker exists per Compare invocation. It is created on entry and
 * abandoned on return; nothing is shared across comparisons, so concurrent
 * Compare calls on one Plan need no locking.
 */

// CyclePolicy selects what happens when the traversal re-enters a value
// already on the active descent path.
type CyclePolicy int

const (
	// CycleFail records a "circular reference detected" failure at the
	// re-entry path.
	CycleFail CyclePolicy = iota
	// CycleIgnore treats the re-entered pair as equal and stops descending.
	CycleIgnore
)

// String returns the policy name used in configuration and logs.
func (p CyclePolicy) String() string {
	switch p {
	case CycleFail:
		return "fail"
	case CycleIgnore:
		return "ignore"
	}
	return "unknown"
}

// identity is the tracker's key. The type pointer disambiguates a struct
// from its first field, which share an address.
type identity struct {
	addr uintptr
	typ  reflect.Type
	n    int
}

type tracker struct {
	active map[identity]struct{}
	stack  []identity
}

func newTracker() *tracker {
	return &tracker{active: make(map[identity]struct{})}
}

// trackable reports whether v carries an identity worth recording. Only
// pointer-like kinds can close a cycle; an empty slice cannot.
func trackable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.UnsafePointer:
		return !v.IsNil()
	case reflect.Slice:
		return !v.IsNil() && v.Len() > 0
	}
	return false
}

// Enter records v on the active path. revisit reports that v's identity is
// already there; pushed reports that the caller owes a matching Exit.
func (t *tracker) Enter(v reflect.Value) (pushed, revisit bool) {
	if !trackable(v) {
		return false, false
	}
	id := identity{addr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		id.n = v.Len()
	}
	if _, ok := t.active[id]; ok {
		return false, true
	}
	t.active[id] = struct{}{}
	t.stack = append(t.stack, id)
	return true, false
}

// Exit removes the most recently entered identity. Callers pair it with
// every Enter that reported pushed, success or failure alike.
func (t *tracker) Exit() {
	last := len(t.stack) - 1
	delete(t.active, t.stack[last])
	t.stack = t.stack[:last]
}
