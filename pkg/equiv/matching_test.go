// pkg/equiv/matching_test.go
package equiv

import (
	"reflect"
	"testing"
)

type narrowExpectation struct {
	Name string
}

func subjectMember(t *testing.T, v any, name string) Member {
	t.Helper()
	for _, m := range runtimeFields(reflect.TypeOf(v)) {
		if m.Name() == name {
			return m
		}
	}
	t.Fatalf("no member %s on %T", name, v)
	return nil
}

func TestStrictMatching_FindsCounterpart(t *testing.T) {
	m := subjectMember(t, testCustomer{}, "Name")
	exp := reflect.ValueOf(testCustomer{Name: "A"})

	cm, failure := strictMatching{}.Match(m, exp, nil)
	if failure != nil {
		t.Fatalf("Match() failure = %v, want nil", failure.Message())
	}
	if cm == nil || cm.Name() != "Name" {
		t.Errorf("Match() counterpart = %v, want member Name", cm)
	}
}

func TestStrictMatching_MissingCounterpartFails(t *testing.T) {
	m := subjectMember(t, testCustomer{}, "Age")
	exp := reflect.ValueOf(narrowExpectation{})

	cm, failure := strictMatching{}.Match(m, exp, Path{}.Child("Order"))
	if cm != nil {
		t.Errorf("Match() counterpart = %v, want nil", cm.Name())
	}
	if failure == nil {
		t.Fatal("Match() failure = nil, want missing member failure")
	}
	if got, want := failure.Message(), "Order.Age: expectation has no member Age"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
}

func TestBestEffortMatching_MissingCounterpartSkips(t *testing.T) {
	m := subjectMember(t, testCustomer{}, "Age")
	exp := reflect.ValueOf(narrowExpectation{})

	cm, failure := bestEffortMatching{}.Match(m, exp, nil)
	if cm != nil {
		t.Errorf("Match() counterpart = %v, want nil", cm.Name())
	}
	if failure != nil {
		t.Errorf("Match() failure = %v, want silent skip", failure.Message())
	}
}

func TestMatching_MapKeys(t *testing.T) {
	subject := reflect.ValueOf(map[string]int{"present": 1, "missing": 2})
	exp := reflect.ValueOf(map[string]int{"present": 1})

	var present, missing Member
	for _, m := range mapKeys(subject) {
		switch m.Name() {
		case "present":
			present = m
		case "missing":
			missing = m
		}
	}

	if cm, failure := (strictMatching{}).Match(present, exp, nil); cm == nil || failure != nil {
		t.Errorf("Match(present) = (%v, %v), want counterpart and no failure", cm, failure)
	}
	if cm, failure := (strictMatching{}).Match(missing, exp, nil); cm != nil || failure == nil {
		t.Errorf("Match(missing) = (%v, %v), want nil counterpart and a failure", cm, failure)
	}
	if cm, failure := (bestEffortMatching{}).Match(missing, exp, nil); cm != nil || failure != nil {
		t.Errorf("best effort Match(missing) = (%v, %v), want silent skip", cm, failure)
	}
}

func TestCounterpart_StructMemberAgainstMap(t *testing.T) {
	m := subjectMember(t, testCustomer{}, "Name")
	exp := reflect.ValueOf(map[string]any{"Name": "A"})

	cm := counterpart(m, exp)
	if cm == nil {
		t.Fatal("counterpart() = nil, want map key member")
	}
	v, err := cm.Read(exp)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := v.Interface(); got != any("A") {
		t.Errorf("Read() = %v, want A", got)
	}
}

func TestCounterpart_CrossKeyedMaps(t *testing.T) {
	members := mapKeys(reflect.ValueOf(map[int]string{65: "x"}))
	if len(members) != 1 {
		t.Fatalf("mapKeys() = %d members, want 1", len(members))
	}
	m := members[0]

	t.Run("integer key pairs with its rendered label", func(t *testing.T) {
		exp := reflect.ValueOf(map[string]string{"65": "x"})
		cm := counterpart(m, exp)
		if cm == nil {
			t.Fatal("counterpart() = nil, want key 65 paired with \"65\"")
		}
		v, err := cm.Read(exp)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got := v.Interface(); got != any("x") {
			t.Errorf("Read() = %v, want x", got)
		}
	})

	t.Run("integer key never pairs as a rune", func(t *testing.T) {
		exp := reflect.ValueOf(map[string]string{"A": "x"})
		if cm := counterpart(m, exp); cm != nil {
			t.Errorf("counterpart() = %v, want nil against key A", cm.Name())
		}
	})

	t.Run("integer kinds pair across key widths", func(t *testing.T) {
		exp := reflect.ValueOf(map[int64]string{65: "x"})
		if cm := counterpart(m, exp); cm == nil {
			t.Fatal("counterpart() = nil, want int64 key 65")
		}
	})

	t.Run("engine compares across key widths", func(t *testing.T) {
		subject := map[int]int{2: 5}
		expectation := map[int64]int{2: 5}

		if res := Compare(mustPlan(t, Default()), subject, expectation); !res.OK() {
			t.Errorf("failures = %v, want keys matched by label", failurePaths(res))
		}
	})
}

func TestFieldMember_NilEmbeddedPointerReadsAbsent(t *testing.T) {
	type Inner struct {
		Value string
	}
	type Outer struct {
		*Inner
	}

	m := subjectMember(t, Outer{}, "Value")
	v, err := m.Read(reflect.ValueOf(Outer{}))
	if err != nil {
		t.Fatalf("Read() error = %v, want nil", err)
	}
	if v.IsValid() {
		t.Errorf("Read() through nil embedded pointer = %v, want absent", v)
	}
}
