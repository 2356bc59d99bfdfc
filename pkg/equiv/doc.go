// Package equiv compares two values structurally under a configurable
// rule pipeline: selection rules decide which members participate,
// matching rules pair them across the two sides, assertion rules override
// recursion for specific types, and a per-invocation tracker keeps cyclic
// graphs from recursing forever.
//
// A caller assembles a Config fluently, freezes it into an immutable Plan
// with Build, and hands the Plan to Compare together with a subject and
// an expectation. The Result carries one Failure per difference with the
// full dotted path from the root, both values, and a reason. Plans are
// safe for concurrent use; one comparison is purely synchronous.
//
//	plan, err := equiv.Default().
//		Excluding("Audit.ModifiedAt").
//		Build()
//	if err != nil {
//		return err
//	}
//	if res := equiv.Compare(plan, got, want); !res.OK() {
//		for _, f := range res.Failures {
//			log.Println(f.Message())
//		}
//	}
package equiv
