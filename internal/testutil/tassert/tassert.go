// Package tassert provides small test assertion helpers in place of a
// third-party assertion library. No example repo in the retrieval pack
// ships its own tutils/tassert source, only call sites referencing it
// (fs/walk_test.go, xaction/registry/xaction_test.go), so this package
// reconstructs the calling convention those call sites imply rather than
// importing an un-grounded library; see DESIGN.md.
package tassert

import "testing"

// Fatalf calls t.Fatalf(format, args...) if cond is false.
func Fatalf(t *testing.T, cond bool, format string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// Errorf calls t.Errorf(format, args...) if cond is false.
func Errorf(t *testing.T, cond bool, format string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Errorf(format, args...)
	}
}

// CheckFatal fails the test immediately if err is non-nil.
func CheckFatal(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
