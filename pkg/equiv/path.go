// pkg/equiv/path.go
package equiv

import (
	"fmt"
	"strconv"
	"strings"
)

/*
 * Property paths and member patterns.
 *
 * A Path names the chain of members walked from the comparison root to the
 * value currently under comparison, rendered as "Customer.Address.Street",
 * "Items[2].ID" or "Labels[env]" in failure reports. Paths grow by one
 * segment per descent and are extended by copy, so a Failure holding a Path
 * stays valid after the traversal has moved on to siblings.
 *
 * A Pattern is the parsed form of an include/exclude argument. Patterns use
 * the same dotted syntax as rendered paths plus a wildcard: "*" or "[*]"
 * matches exactly one segment of any kind. Parse errors surface when the
 * configuration is built, never during a comparison.
 *
 * Matching semantics:
 *   - Matches: pattern and path agree segment for segment, same length.
 *     Used by exclude rules, which remove exactly the named path.
 *   - Covers: pattern and path agree over their common prefix. Used by
 *     include rules, which must keep ancestors of an included member (to
 *     reach it) and everything below it (the included subtree).
 */

// Segment is one step of a property path: a struct field, a collection
// index, or a map key.
type Segment struct {
	Name    string // field name or map key label
	Index   int    // element position when IsIndex
	IsIndex bool
	IsKey   bool
}

// String renders the segment the way it appears inside a path.
func (s Segment) String() string {
	switch {
	case s.IsIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case s.IsKey:
		return "[" + s.Name + "]"
	default:
		return s.Name
	}
}

// Path is the ordered segment chain from the comparison root. The root
// itself has a nil Path.
type Path []Segment

// Child returns a copy of p extended by a field segment.
func (p Path) Child(name string) Path {
	return p.extend(Segment{Name: name})
}

// Key returns a copy of p extended by a map key segment.
func (p Path) Key(label string) Path {
	return p.extend(Segment{Name: label, IsKey: true})
}

// Element returns a copy of p extended by a collection index segment.
func (p Path) Element(i int) Path {
	return p.extend(Segment{Index: i, IsIndex: true})
}

// extend copies before appending. Failures retain their Path after the
// walk moves on, so siblings must never share a backing array.
func (p Path) extend(s Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = s
	return out
}

// String renders the dotted form used in failure reports. The root path
// renders as the empty string.
func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		if !s.IsIndex && !s.IsKey && b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// patternSegment matches one path segment. A wildcard segment matches any
// single segment regardless of kind.
type patternSegment struct {
	name     string
	index    int
	isIndex  bool
	wildcard bool
}

func (ps patternSegment) match(s Segment) bool {
	if ps.wildcard {
		return true
	}
	if ps.isIndex || s.IsIndex {
		return ps.isIndex && s.IsIndex && ps.index == s.Index
	}
	// Field and map key segments match by name; the bracket spelling in the
	// pattern is not significant.
	return ps.name == s.Name
}

// Pattern is a parsed include/exclude target.
type Pattern struct {
	raw  string
	segs []patternSegment
}

// ParsePattern parses a dotted member pattern such as "Address.Street",
// "Items[*].ID" or "Labels[env]". Returns ErrMalformedPattern for empty
// patterns, empty segments, unterminated brackets, or patterns deeper than
// maxPatternDepth.
func ParsePattern(s string) (Pattern, error) {
	if strings.TrimSpace(s) == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrMalformedPattern)
	}

	var segs []patternSegment
	rest := s
	for rest != "" {
		var name string
		i := strings.IndexAny(rest, ".[")
		switch {
		case i < 0:
			name, rest = rest, ""
		case rest[i] == '.':
			name, rest = rest[:i], rest[i+1:]
			if name == "" {
				return Pattern{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedPattern, s)
			}
			if rest == "" {
				return Pattern{}, fmt.Errorf("%w: %q ends with a dot", ErrMalformedPattern, s)
			}
		default: // '['
			name, rest = rest[:i], rest[i:]
		}

		if name != "" {
			segs = append(segs, namedSegment(name))
		}

		// Consume any run of bracket selectors following the name.
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return Pattern{}, fmt.Errorf("%w: %q has an unterminated bracket", ErrMalformedPattern, s)
			}
			inner := rest[1:end]
			if inner == "" {
				return Pattern{}, fmt.Errorf("%w: %q has an empty bracket", ErrMalformedPattern, s)
			}
			segs = append(segs, bracketSegment(inner))
			rest = rest[end+1:]
			if strings.HasPrefix(rest, ".") {
				rest = rest[1:]
				if rest == "" {
					return Pattern{}, fmt.Errorf("%w: %q ends with a dot", ErrMalformedPattern, s)
				}
			}
		}
	}

	if len(segs) > maxPatternDepth {
		return Pattern{}, fmt.Errorf("%w: %q exceeds %d segments", ErrMalformedPattern, s, maxPatternDepth)
	}
	return Pattern{raw: s, segs: segs}, nil
}

func namedSegment(name string) patternSegment {
	if name == "*" {
		return patternSegment{wildcard: true}
	}
	return patternSegment{name: name}
}

func bracketSegment(inner string) patternSegment {
	if inner == "*" {
		return patternSegment{wildcard: true}
	}
	if n, err := strconv.Atoi(inner); err == nil {
		return patternSegment{index: n, isIndex: true}
	}
	return patternSegment{name: inner}
}

// String returns the pattern as written.
func (pat Pattern) String() string { return pat.raw }

// Matches reports whether the pattern names exactly this path, segment for
// segment.
func (pat Pattern) Matches(p Path) bool {
	if len(pat.segs) != len(p) {
		return false
	}
	for i, ps := range pat.segs {
		if !ps.match(p[i]) {
			return false
		}
	}
	return true
}

// Covers reports whether the path lies on the pattern's route: every
// segment of the shorter of the two matches the corresponding segment of
// the longer. Ancestors of the named member and members below it are both
// covered.
func (pat Pattern) Covers(p Path) bool {
	n := len(pat.segs)
	if len(p) < n {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		if !pat.segs[i].match(p[i]) {
			return false
		}
	}
	return true
}
