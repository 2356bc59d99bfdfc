// pkg/equiv/config.go
package equiv

import (
	"fmt"
	"reflect"
)

/*
 * Configuration builder and plan.
 *
 * A Config is the mutable assembly stage: fluent modifiers append or
 * replace rules and every modifier returns the receiver for chaining.
 * Build freezes the assembly into a Plan, copying every rule list, so the
 * Plan is immutable and safely shared by concurrent Compare calls while
 * the Config can keep evolving.
 *
 * Misuse is a build-time error, never a comparison failure: a malformed
 * pattern, a missing matching rule, a non-positive depth limit or a nil
 * override all surface from Build. Pattern errors are remembered when the
 * modifier runs and reported once.
 *
 * Presets:
 *   - Default: recursive, declared fields plus map keys, strict matching,
 *     the time and byte leaf rules, failing on cycles, depth limit 32.
 *   - Empty: strict matching only, non-recursive, failing on cycles. No
 *     selection base, so members participate only when included. The two
 *     leaf rules are still seeded; a plan without them would read time
 *     internals and byte elements no caller wants compared.
 */

// defaultMaxDepth bounds descent when the configuration does not say
// otherwise. Deep enough for any sane document, shallow enough to fail
// closed long before the goroutine stack is at risk.
const defaultMaxDepth = 32

// maxPatternDepth bounds include/exclude pattern length at parse time.
const maxPatternDepth = 16

// Config assembles a comparison plan through fluent chaining. Zero value
// is not usable; start from Default or Empty.
type Config struct {
	selection []SelectionRule
	matching  MatchingRule
	overrides []Rule // registration order, oldest first
	recurse   bool
	cycles    CyclePolicy
	maxDepth  int
	err       error
}

// Default returns the standard starting point: recursive comparison over
// all declared fields and map keys with strict matching.
func Default() *Config {
	return &Config{
		selection: []SelectionRule{declaredFieldsRule{}, mapKeysRule{}},
		matching:  strictMatching{},
		overrides: []Rule{timeRule(), bytesRule()},
		recurse:   true,
		cycles:    CycleFail,
		maxDepth:  defaultMaxDepth,
	}
}

// Empty returns the minimal starting point: strict matching, no selection
// base, no recursion. Layer includes and overrides on top.
func Empty() *Config {
	return &Config{
		matching:  strictMatching{},
		overrides: []Rule{timeRule(), bytesRule()},
		recurse:   false,
		cycles:    CycleFail,
		maxDepth:  defaultMaxDepth,
	}
}

// IncludingAllDeclaredFields selects every exported field written on the
// subject's type, plus map keys. Replaces any previous selection base.
func (c *Config) IncludingAllDeclaredFields() *Config {
	c.setBase(declaredFieldsRule{})
	return c
}

// IncludingAllRuntimeFields selects every exported field a selector can
// reach, including promotion through embedded structs, plus map keys.
// Replaces any previous selection base.
func (c *Config) IncludingAllRuntimeFields() *Config {
	c.setBase(runtimeFieldsRule{})
	return c
}

// setBase strips existing base rules and appends the new base with map key
// enumeration. Bases are mutually exclusive; the last call wins.
func (c *Config) setBase(base SelectionRule) {
	c.selection = withoutBases(c.selection)
	c.selection = append(c.selection, base, mapKeysRule{})
}

// Including keeps only the members the pattern covers, layered as a union
// with any previously included patterns. Replaces an include-everything
// base: choosing members explicitly is mutually exclusive with selecting
// all of them.
func (c *Config) Including(pattern string) *Config {
	pat, err := ParsePattern(pattern)
	if err != nil {
		c.fail(err)
		return c
	}
	c.selection = append(withoutBases(c.selection), includeRule{pat: pat})
	return c
}

// Excluding removes the members the pattern names exactly, whatever base
// or include produced them. Excluding a path that never appears is a
// no-op.
func (c *Config) Excluding(pattern string) *Config {
	pat, err := ParsePattern(pattern)
	if err != nil {
		c.fail(err)
		return c
	}
	c.selection = append(c.selection, excludeRule{pat: pat})
	return c
}

// MatchingStrictly makes a missing expectation counterpart a comparison
// failure. Replaces the active matching rule.
func (c *Config) MatchingStrictly() *Config {
	c.matching = strictMatching{}
	return c
}

// MatchingBestEffort makes a missing expectation counterpart a silent
// skip. Replaces the active matching rule.
func (c *Config) MatchingBestEffort() *Config {
	c.matching = bestEffortMatching{}
	return c
}

// Recursive descends into member values structurally.
func (c *Config) Recursive() *Config {
	c.recurse = true
	return c
}

// NonRecursive compares member values by direct value equality instead of
// descending into them. The root's own members are still enumerated.
func (c *Config) NonRecursive() *Config {
	c.recurse = false
	return c
}

// IgnoringCycles treats a re-entered reference as equal instead of
// failing.
func (c *Config) IgnoringCycles() *Config {
	c.cycles = CycleIgnore
	return c
}

// FailingOnCycles records a failure when a reference re-enters the active
// descent path.
func (c *Config) FailingOnCycles() *Config {
	c.cycles = CycleFail
	return c
}

// MaxDepth bounds structural descent. Exceeding it fails the comparison
// closed instead of exhausting the stack.
func (c *Config) MaxDepth(n int) *Config {
	c.maxDepth = n
	return c
}

// Overriding registers an assertion rule claiming every pair the predicate
// accepts. Later registrations win over earlier ones for overlapping
// targets.
func (c *Config) Overriding(predicate func(Target) bool, compare LeafFunc) *Config {
	if predicate == nil || compare == nil {
		c.fail(ErrNilOverride)
		return c
	}
	c.overrides = append(c.overrides, Rule{Predicate: predicate, Compare: compare})
	return c
}

// OverridingForType registers an assertion rule for values of sample's
// type, its pointer form, or anything assignable to it.
func (c *Config) OverridingForType(sample any, compare LeafFunc) *Config {
	t := reflect.TypeOf(sample)
	if t == nil {
		c.fail(fmt.Errorf("%w: untyped nil sample", ErrNilOverride))
		return c
	}
	return c.Overriding(ForType(t), compare)
}

// fail remembers the first configuration error for Build to report.
func (c *Config) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Build freezes the configuration into an immutable Plan. The Config
// remains usable and further changes do not affect the returned Plan.
func (c *Config) Build() (*Plan, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.matching == nil {
		return nil, ErrNoMatchingRule
	}
	if c.maxDepth <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxDepth, c.maxDepth)
	}

	p := &Plan{
		selection: make([]SelectionRule, len(c.selection)),
		matching:  c.matching,
		overrides: make([]Rule, len(c.overrides)),
		recurse:   c.recurse,
		cycles:    c.cycles,
		maxDepth:  c.maxDepth,
	}
	copy(p.selection, c.selection)
	// Stored most recently registered first, so resolution is a forward
	// scan with first hit winning.
	for i, r := range c.overrides {
		p.overrides[len(c.overrides)-1-i] = r
	}
	return p, nil
}

// MustBuild is Build for statically known configurations, panicking on
// configuration errors.
func (c *Config) MustBuild() *Plan {
	p, err := c.Build()
	if err != nil {
		panic(err)
	}
	return p
}

// withoutBases filters include-everything rules out, preserving the order
// of everything else.
func withoutBases(rules []SelectionRule) []SelectionRule {
	kept := make([]SelectionRule, 0, len(rules))
	for _, r := range rules {
		if _, ok := r.(baseSelection); ok {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// Plan is an immutable comparison policy. One Plan serves any number of
// concurrent Compare calls; nothing in it is written after Build.
type Plan struct {
	selection []SelectionRule
	matching  MatchingRule
	overrides []Rule // most recently registered first
	recurse   bool
	cycles    CyclePolicy
	maxDepth  int
}

// resolve returns the first override claiming the target, or nil when
// structural handling applies.
func (p *Plan) resolve(t Target) LeafFunc {
	for _, r := range p.overrides {
		if r.Predicate(t) {
			return r.Compare
		}
	}
	return nil
}
