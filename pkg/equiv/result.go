// pkg/equiv/result.go
package equiv

import (
	"fmt"
	"strings"
)

// Failure describes one structural difference: where it was found, what
// both sides held, and a reason template with its arguments. Never a bare
// boolean.
type Failure struct {
	Path     Path
	Subject  any
	Expected any
	Reason   string
	Args     []any
}

// Message renders the failure as "path: reason". Root-level failures render
// the reason alone.
func (f *Failure) Message() string {
	reason := f.Reason
	if len(f.Args) > 0 {
		reason = fmt.Sprintf(f.Reason, f.Args...)
	}
	if len(f.Path) == 0 {
		return reason
	}
	return f.Path.String() + ": " + reason
}

// Result is the outcome of one comparison. Failures appear in traversal
// order: sibling members are all checked, so one mismatch does not hide
// the next.
type Result struct {
	Failures []Failure
}

// OK reports whether the comparison found the two sides equivalent.
func (r Result) OK() bool { return len(r.Failures) == 0 }

// String renders one failure per line, for logs and CLI output.
func (r Result) String() string {
	if r.OK() {
		return "equivalent"
	}
	lines := make([]string, len(r.Failures))
	for i := range r.Failures {
		lines[i] = r.Failures[i].Message()
	}
	return strings.Join(lines, "\n")
}
