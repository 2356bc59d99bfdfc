// pkg/equiv/matching.go
package equiv

import "reflect"

/*
 * Matching rules.
 *
 * After selection picks a subject member, matching locates its counterpart
 * on the expectation. Lookup is by name for struct fields and by key for
 * map entries, uniformly: a key missing on the expectation map is exactly
 * as absent as a field missing on the expectation type.
 *
 * Exactly one matching rule is active per plan. The two stances differ
 * only in what a missing counterpart means: a recorded failure under
 * strict matching, a silent skip under best effort. Neither is ever an
 * engine error.
 */

// MatchingRule locates the expectation counterpart of a subject member.
// A nil Member with a nil Failure means the member is skipped.
type MatchingRule interface {
	Match(m Member, expectation reflect.Value, path Path) (Member, *Failure)
}

type strictMatching struct{}

func (strictMatching) Match(m Member, expectation reflect.Value, path Path) (Member, *Failure) {
	if cm := counterpart(m, expectation); cm != nil {
		return cm, nil
	}
	return nil, &Failure{
		Path:     path.extend(m.Segment()),
		Expected: display(expectation),
		Reason:   "expectation has no member %s",
		Args:     []any{m.Name()},
	}
}

type bestEffortMatching struct{}

func (bestEffortMatching) Match(m Member, expectation reflect.Value, path Path) (Member, *Failure) {
	if cm := counterpart(m, expectation); cm != nil {
		return cm, nil
	}
	return nil, nil
}
