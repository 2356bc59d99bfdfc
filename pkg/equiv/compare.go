// pkg/equiv/compare.go
package equiv

import (
	"reflect"
)

/*
 * Comparison traversal.
 *
 * Compare walks subject and expectation in lockstep under an immutable
 * Plan, collecting every difference instead of stopping at the first:
 * sibling members are all checked, and failures arrive in deterministic
 * traversal order (declaration order for struct fields, sorted order for
 * map keys, ascending index for sequences).
 *
 * Per node, in order:
 *   1. identity short-circuit: same reference or both absent is equal,
 *      no rules consulted;
 *   2. absence asymmetry: exactly one side absent fails at the path;
 *   3. cycle tracking: a re-entered subject identity applies the plan's
 *      cycle policy, the tracker entry is released on return;
 *   4. assertion overrides: first claiming rule compares the pair as a
 *      leaf, most recent registration first;
 *   5. kind dispatch on the subject: pointers and interfaces unwrap in
 *      place; structs and maps run the selection/matching member
 *      pipeline; slices and arrays compare index-wise with a length
 *      check; everything else is a leaf.
 *
 * The depth guard applies where depth is made: right before a structural
 * descent. A leaf sitting at the boundary still compares; the subtree
 * below it does not, and fails closed with one failure per cut branch.
 *
 * Non-recursive plans run the member pipeline at the root only and
 * compare member values by direct value equality.
 *
 * A comparison is purely synchronous: no goroutines, no locks, no I/O.
 * State lives in the walker, one per invocation.
 */

// Compare evaluates subject against expectation under plan and reports
// every difference found. It never panics on ordinary mismatches and
// never returns an error; misconfiguration is caught by Config.Build.
func Compare(plan *Plan, subject, expectation any) Result {
	w := &walker{plan: plan, tracker: newTracker()}
	w.compare(reflect.ValueOf(subject), reflect.ValueOf(expectation), nil, nil, 0)
	return Result{Failures: w.failures}
}

type walker struct {
	plan     *Plan
	tracker  *tracker
	failures []Failure
}

func (w *walker) fail(f *Failure) {
	w.failures = append(w.failures, *f)
}

func (w *walker) compare(subject, expectation reflect.Value, declared reflect.Type, path Path, depth int) {
	if sameIdentity(subject, expectation) {
		return
	}

	sa, ea := isAbsent(subject), isAbsent(expectation)
	if sa && ea {
		return
	}
	if sa != ea {
		w.fail(valueMismatch(path, subject, expectation))
		return
	}

	if pushed, revisit := w.tracker.Enter(subject); revisit {
		if w.plan.cycles == CycleFail {
			w.fail(&Failure{
				Path:     path,
				Subject:  display(subject),
				Expected: display(expectation),
				Reason:   "circular reference detected",
			})
		}
		return
	} else if pushed {
		defer w.tracker.Exit()
	}

	if leaf := w.plan.resolve(Target{Path: path, Declared: declared, Runtime: subject.Type()}); leaf != nil {
		if f := leaf(subject, expectation, path); f != nil {
			w.fail(f)
		}
		return
	}

	structural := w.plan.recurse || depth == 0

	switch subject.Kind() {
	case reflect.Pointer, reflect.Interface:
		// Unwrapping is not descent; same path, same depth.
		w.compare(subject.Elem(), unwrapOne(expectation), declared, path, depth)

	case reflect.Struct, reflect.Map:
		if !structural {
			w.leaf(subject, expectation, path)
			return
		}
		if w.depthExceeded(subject, expectation, path, depth) {
			return
		}
		w.members(subject, expectation, path, depth)

	case reflect.Slice, reflect.Array:
		if !structural {
			w.leaf(subject, expectation, path)
			return
		}
		if w.depthExceeded(subject, expectation, path, depth) {
			return
		}
		w.sequence(subject, expectation, path, depth)

	default:
		w.leaf(subject, expectation, path)
	}
}

// depthExceeded fails closed when a structural descent would pass the
// configured limit, cutting the subtree with a single failure.
func (w *walker) depthExceeded(subject, expectation reflect.Value, path Path, depth int) bool {
	if depth <= w.plan.maxDepth {
		return false
	}
	w.fail(&Failure{
		Path:     path,
		Subject:  display(subject),
		Expected: display(expectation),
		Reason:   "maximum comparison depth %d exceeded",
		Args:     []any{w.plan.maxDepth},
	})
	return true
}

// members runs the selection pipeline on the subject node and compares
// each selected member against its matched counterpart.
func (w *walker) members(subject, expectation reflect.Value, path Path, depth int) {
	exp := indirect(expectation)
	if k := exp.Kind(); k != reflect.Struct && k != reflect.Map {
		w.fail(valueMismatch(path, subject, exp))
		return
	}

	ctx := Context{Path: path, Type: subject.Type(), Value: subject}
	var selected []Member
	for _, rule := range w.plan.selection {
		selected = rule.Select(selected, ctx)
	}
	selected = dedupMembers(selected)

	for _, m := range selected {
		childPath := path.extend(m.Segment())

		sv, err := m.Read(subject)
		if err != nil {
			w.fail(readFailure(childPath, err))
			continue
		}

		cm, mf := w.plan.matching.Match(m, exp, path)
		if mf != nil {
			w.fail(mf)
			continue
		}
		if cm == nil {
			continue
		}

		ev, err := cm.Read(exp)
		if err != nil {
			w.fail(readFailure(childPath, err))
			continue
		}

		w.compare(sv, ev, m.Type(), childPath, depth+1)
	}
}

// sequence compares slices and arrays index-wise over the common prefix,
// then reports a length difference once.
func (w *walker) sequence(subject, expectation reflect.Value, path Path, depth int) {
	exp := indirect(expectation)
	if k := exp.Kind(); k != reflect.Slice && k != reflect.Array {
		w.fail(valueMismatch(path, subject, exp))
		return
	}

	n := subject.Len()
	if exp.Len() < n {
		n = exp.Len()
	}
	for i := 0; i < n; i++ {
		w.compare(subject.Index(i), exp.Index(i), subject.Type().Elem(), path.Element(i), depth+1)
	}

	if subject.Len() != exp.Len() {
		w.fail(&Failure{
			Path:     path,
			Subject:  display(subject),
			Expected: display(exp),
			Reason:   "expected length %d, found %d",
			Args:     []any{exp.Len(), subject.Len()},
		})
	}
}

func (w *walker) leaf(subject, expectation reflect.Value, path Path) {
	if !leafEqual(subject, expectation) {
		w.fail(valueMismatch(path, subject, expectation))
	}
}

// unwrapOne strips a single pointer or interface level, keeping the two
// sides roughly aligned while the subject unwraps.
func unwrapOne(v reflect.Value) reflect.Value {
	if v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && !v.IsNil() {
		return v.Elem()
	}
	return v
}

func valueMismatch(path Path, subject, expectation reflect.Value) *Failure {
	return &Failure{
		Path:     path,
		Subject:  display(subject),
		Expected: display(expectation),
		Reason:   "expected %v, found %v",
		Args:     []any{display(expectation), display(subject)},
	}
}

func readFailure(path Path, err error) *Failure {
	return &Failure{
		Path:   path,
		Reason: "cannot read member: %v",
		Args:   []any{err},
	}
}
