package cmn

// Assert panics if cond is false. Used sparingly, for invariants the rest of
// the core relies on (e.g. §3's "the DAG always contains every node
// referenced by any edge") rather than for validating external input.
func Assert(cond bool) {
	if !cond {
		panic("cmn: assertion failed")
	}
}

// AssertMsg is Assert with a custom panic message.
func AssertMsg(cond bool, msg string) {
	if !cond {
		panic("cmn: " + msg)
	}
}
