// pkg/equiv/tracker_test.go
package equiv

import (
	"reflect"
	"testing"
)

func TestTracker_DetectsRevisitOnActivePath(t *testing.T) {
	tr := newTracker()
	node := &testCustomer{}
	v := reflect.ValueOf(node)

	pushed, revisit := tr.Enter(v)
	if !pushed || revisit {
		t.Fatalf("first Enter() = (pushed %v, revisit %v), want (true, false)", pushed, revisit)
	}
	if pushed, revisit = tr.Enter(v); pushed || !revisit {
		t.Errorf("second Enter() = (pushed %v, revisit %v), want (false, true)", pushed, revisit)
	}

	tr.Exit()
	if pushed, revisit = tr.Enter(v); !pushed || revisit {
		t.Errorf("Enter() after Exit = (pushed %v, revisit %v), want (true, false)", pushed, revisit)
	}
}

func TestTracker_IdentityNotValueEquality(t *testing.T) {
	tr := newTracker()
	a := &testCustomer{Name: "same"}
	b := &testCustomer{Name: "same"}

	if _, revisit := tr.Enter(reflect.ValueOf(a)); revisit {
		t.Fatal("Enter(a) revisit = true, want false")
	}
	if _, revisit := tr.Enter(reflect.ValueOf(b)); revisit {
		t.Error("Enter(b) revisit = true for a distinct but value-equal node")
	}
}

func TestTracker_DistinguishesTypesAtOneAddress(t *testing.T) {
	type head struct {
		First testAddress
	}
	tr := newTracker()
	h := &head{}

	if _, revisit := tr.Enter(reflect.ValueOf(h)); revisit {
		t.Fatal("Enter(head) revisit = true, want false")
	}
	// First field shares the struct's address but is a different type.
	if _, revisit := tr.Enter(reflect.ValueOf(&h.First)); revisit {
		t.Error("Enter(&head.First) revisit = true, want distinct identity")
	}
}

func TestTracker_UntrackedKinds(t *testing.T) {
	tr := newTracker()

	tests := []struct {
		name  string
		value any
	}{
		{name: "scalar", value: 42},
		{name: "string", value: "x"},
		{name: "struct value", value: testCustomer{}},
		{name: "empty slice", value: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if pushed, revisit := tr.Enter(reflect.ValueOf(tt.value)); pushed || revisit {
				t.Errorf("Enter(%s) = (pushed %v, revisit %v), want untracked", tt.name, pushed, revisit)
			}
		})
	}
}

func TestTracker_SliceWindows(t *testing.T) {
	tr := newTracker()
	backing := []int{1, 2, 3}

	if _, revisit := tr.Enter(reflect.ValueOf(backing)); revisit {
		t.Fatal("Enter(backing) revisit = true, want false")
	}
	if _, revisit := tr.Enter(reflect.ValueOf(backing[:2])); revisit {
		t.Error("Enter(backing[:2]) revisit = true, want distinct identity for a shorter window")
	}
	if _, revisit := tr.Enter(reflect.ValueOf(backing)); !revisit {
		t.Error("Enter(backing) again revisit = false, want true for the same window")
	}
}
