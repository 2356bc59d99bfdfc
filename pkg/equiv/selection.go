// pkg/equiv/selection.go
package equiv

import "reflect"

/*
 * Selection rules.
 *
 * Selection decides which members of the subject participate in a
 * comparison. Rules form an ordered pipeline: each receives the member set
 * produced so far and returns the transformed set, so a rule added later
 * layers on top of, and may contradict, an earlier one. The engine runs
 * the pipeline at every structural node and deduplicates by member name
 * afterwards, first occurrence winning.
 *
 * Rule kinds:
 *   - declaredFieldsRule / runtimeFieldsRule: contribute every exported
 *     field of a struct subject, declared-only or promotion-flattened.
 *   - mapKeysRule: contributes one member per key of a map subject.
 *   - includeRule: contributes the members its pattern covers, enumerating
 *     candidates itself. Choosing members explicitly replaces any
 *     include-everything base, so Config.Including strips base rules when
 *     it appends one of these. Multiple includes union.
 *   - excludeRule: removes members whose path the pattern names exactly.
 *     Excluding a path that was never included is a no-op.
 *
 * Include covers ancestors on purpose: "Address.Street" must keep the
 * Address member at the root, or the street could never be reached.
 */

// Context describes the structural node whose members are being selected.
type Context struct {
	Path  Path
	Type  reflect.Type
	Value reflect.Value
}

// SelectionRule transforms the running member set for one node. Rules run
// in the order they were added to the configuration.
type SelectionRule interface {
	Select(prior []Member, ctx Context) []Member
}

// baseSelection marks the include-everything rules that an explicit
// include replaces.
type baseSelection interface {
	baseSelection()
}

type declaredFieldsRule struct{}

func (declaredFieldsRule) baseSelection() {}

func (declaredFieldsRule) Select(prior []Member, ctx Context) []Member {
	if ctx.Type.Kind() != reflect.Struct {
		return prior
	}
	return append(prior, declaredFields(ctx.Type)...)
}

type runtimeFieldsRule struct{}

func (runtimeFieldsRule) baseSelection() {}

func (runtimeFieldsRule) Select(prior []Member, ctx Context) []Member {
	if ctx.Type.Kind() != reflect.Struct {
		return prior
	}
	return append(prior, runtimeFields(ctx.Type)...)
}

type mapKeysRule struct{}

func (mapKeysRule) baseSelection() {}

func (mapKeysRule) Select(prior []Member, ctx Context) []Member {
	if ctx.Type.Kind() != reflect.Map {
		return prior
	}
	return append(prior, mapKeys(ctx.Value)...)
}

type includeRule struct {
	pat Pattern
}

func (r includeRule) Select(prior []Member, ctx Context) []Member {
	for _, m := range enumerate(ctx) {
		if r.pat.Covers(ctx.Path.extend(m.Segment())) {
			prior = append(prior, m)
		}
	}
	return prior
}

type excludeRule struct {
	pat Pattern
}

func (r excludeRule) Select(prior []Member, ctx Context) []Member {
	kept := make([]Member, 0, len(prior))
	for _, m := range prior {
		if !r.pat.Matches(ctx.Path.extend(m.Segment())) {
			kept = append(kept, m)
		}
	}
	return kept
}

// enumerate lists every member an include rule may pick from: the
// promotion-flattened fields of a struct or the keys of a map.
func enumerate(ctx Context) []Member {
	switch ctx.Type.Kind() {
	case reflect.Struct:
		return runtimeFields(ctx.Type)
	case reflect.Map:
		return mapKeys(ctx.Value)
	}
	return nil
}

// dedupMembers drops later duplicates by name, preserving order. Stacked
// base rules and overlapping includes otherwise visit a member twice.
func dedupMembers(ms []Member) []Member {
	if len(ms) < 2 {
		return ms
	}
	seen := make(map[string]bool, len(ms))
	out := make([]Member, 0, len(ms))
	for _, m := range ms {
		if seen[m.Name()] {
			continue
		}
		seen[m.Name()] = true
		out = append(out, m)
	}
	return out
}
