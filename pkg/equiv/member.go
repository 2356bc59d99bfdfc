// pkg/equiv/member.go
package equiv

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

/*
 * Member descriptors and enumeration.
 *
 * A Member is the engine's only view of "one comparable part of a value":
 * a name, a declared type, and a read capability. Selection rules produce
 * Members, matching rules pair them across the two sides, and the engine
 * reads values exclusively through them.
 *
 * Two concrete kinds:
 *   - fieldMember: a struct field addressed by its reflect index chain,
 *     embedded-promotion safe. Reading through a nil embedded pointer
 *     yields an absent value, not an error.
 *   - keyMember: a map entry addressed by its key value. A key missing on
 *     an instance reads as absent.
 *
 * Enumeration is cached per reflect.Type. Declared enumeration lists the
 * fields written on the type itself, with an embedded struct appearing as
 * a single member under its type name. Runtime enumeration flattens
 * promotion the way selectors see it: breadth-first over embedded structs,
 * shallower declarations shadowing deeper ones, same-depth collisions
 * dropped as ambiguous. Map keys enumerate from the instance and sort by
 * rendered label for deterministic order.
 */

// Member names one comparable member of a value and how to read it.
type Member interface {
	// Name identifies the member for matching across subject and expectation.
	Name() string
	// Type is the member's declared type; for map entries, the map value type.
	Type() reflect.Type
	// Read fetches the member's value from a parent instance. An invalid
	// value with a nil error means the member is absent on this instance.
	Read(parent reflect.Value) (reflect.Value, error)
	// Segment is the path step this member contributes on descent.
	Segment() Segment
}

type fieldMember struct {
	name  string
	typ   reflect.Type
	index []int
}

func (m fieldMember) Name() string       { return m.name }
func (m fieldMember) Type() reflect.Type { return m.typ }
func (m fieldMember) Segment() Segment   { return Segment{Name: m.name} }

func (m fieldMember) Read(parent reflect.Value) (reflect.Value, error) {
	v := parent
	for _, i := range m.index {
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return reflect.Value{}, nil
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("cannot read field %s from %s value", m.name, v.Kind())
		}
		v = v.Field(i)
	}
	return v, nil
}

type keyMember struct {
	key   reflect.Value
	typ   reflect.Type
	label string
}

func newKeyMember(key reflect.Value, valueType reflect.Type) keyMember {
	return keyMember{key: key, typ: valueType, label: keyLabel(key)}
}

func (m keyMember) Name() string       { return m.label }
func (m keyMember) Type() reflect.Type { return m.typ }
func (m keyMember) Segment() Segment   { return Segment{Name: m.label, IsKey: true} }

func (m keyMember) Read(parent reflect.Value) (reflect.Value, error) {
	if parent.Kind() != reflect.Map {
		return reflect.Value{}, fmt.Errorf("cannot read key %s from %s value", m.label, parent.Kind())
	}
	return parent.MapIndex(m.key), nil
}

// keyLabel renders a map key for paths and matching. Non-string keys render
// through fmt, so 2 and "2" share a label.
func keyLabel(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	if key.CanInterface() {
		return fmt.Sprintf("%v", key.Interface())
	}
	return key.String()
}

// Enumeration caches, keyed by reflect.Type. Computed once per type and
// shared by concurrent comparisons.
var (
	declaredCache sync.Map // reflect.Type -> []Member
	runtimeCache  sync.Map // reflect.Type -> []Member
)

// declaredFields lists the exported fields written on the struct type
// itself, in declaration order. An embedded struct is one member under its
// type name, not a source of promoted members.
func declaredFields(t reflect.Type) []Member {
	if cached, ok := declaredCache.Load(t); ok {
		return cached.([]Member)
	}
	var out []Member
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		out = append(out, fieldMember{name: f.Name, typ: f.Type, index: f.Index})
	}
	cached, _ := declaredCache.LoadOrStore(t, out)
	return cached.([]Member)
}

// runtimeFields lists the exported fields a selector on the type can reach,
// including promotion through exported embedded structs. Breadth-first so a
// shallower field shadows a deeper one of the same name; two fields at the
// same depth cancel as ambiguous, and shadow deeper ones all the same.
func runtimeFields(t reflect.Type) []Member {
	if cached, ok := runtimeCache.Load(t); ok {
		return cached.([]Member)
	}

	type level struct {
		typ   reflect.Type
		index []int
	}

	var out []Member
	taken := make(map[string]bool)
	visited := map[reflect.Type]bool{t: true}
	current := []level{{typ: t}}

	for len(current) > 0 {
		var next []level
		var found []fieldMember
		arity := make(map[string]int)

		for _, lv := range current {
			for i := 0; i < lv.typ.NumField(); i++ {
				f := lv.typ.Field(i)
				if f.PkgPath != "" {
					continue
				}
				chain := make([]int, len(lv.index)+1)
				copy(chain, lv.index)
				chain[len(lv.index)] = i

				if f.Anonymous {
					et := f.Type
					if et.Kind() == reflect.Pointer {
						et = et.Elem()
					}
					if et.Kind() == reflect.Struct {
						if !visited[et] {
							visited[et] = true
							next = append(next, level{typ: et, index: chain})
						}
						continue
					}
				}

				found = append(found, fieldMember{name: f.Name, typ: f.Type, index: chain})
				arity[f.Name]++
			}
		}

		for _, m := range found {
			if !taken[m.name] && arity[m.name] == 1 {
				out = append(out, m)
			}
		}
		for name := range arity {
			taken[name] = true
		}
		current = next
	}

	cached, _ := runtimeCache.LoadOrStore(t, out)
	return cached.([]Member)
}

// mapKeys lists one member per key of the map instance, sorted by rendered
// label so traversal and failure order are deterministic.
func mapKeys(v reflect.Value) []Member {
	if v.Kind() != reflect.Map {
		return nil
	}
	keys := v.MapKeys()
	out := make([]Member, 0, len(keys))
	for _, k := range keys {
		out = append(out, newKeyMember(k, v.Type().Elem()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// counterpart locates the expectation-side member corresponding to m, by
// name for struct fields and by key for map entries. A struct member can
// match a map key and vice versa, which lets typed values be compared
// against decoded documents. Differently keyed maps pair by rendered label,
// never by reflect conversion (integer to string converts as a rune).
// Returns nil when no counterpart exists.
func counterpart(m Member, expectation reflect.Value) Member {
	switch expectation.Kind() {
	case reflect.Struct:
		f, ok := expectation.Type().FieldByName(m.Name())
		if !ok || f.PkgPath != "" {
			return nil
		}
		return fieldMember{name: f.Name, typ: f.Type, index: f.Index}

	case reflect.Map:
		keyType := expectation.Type().Key()
		var key reflect.Value
		if km, ok := m.(keyMember); ok {
			key = km.key
		} else {
			key = reflect.ValueOf(m.Name())
		}
		if key.Type().AssignableTo(keyType) {
			if !expectation.MapIndex(key).IsValid() {
				return nil
			}
			return newKeyMember(key, expectation.Type().Elem())
		}
		for _, ek := range expectation.MapKeys() {
			if keyLabel(ek) == m.Name() {
				return newKeyMember(ek, expectation.Type().Elem())
			}
		}
		return nil
	}
	return nil
}
