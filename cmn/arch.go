package cmn

import "runtime"

// goarch is split out so tests can't accidentally stub runtime.GOARCH but
// can still exercise HostArch's dispatch logic via the Arch type directly.
func goarch() string { return runtime.GOARCH }
