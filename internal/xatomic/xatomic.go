// Package xatomic re-exports the handful of go.uber.org/atomic types used
// across the tree, mirroring the teacher's 3rdparty/atomic indirection so
// that call sites never import the underlying library directly.
package xatomic

import "go.uber.org/atomic"

type (
	Int32 = atomic.Int32
	Int64 = atomic.Int64
	Bool  = atomic.Bool
)

func NewInt32(v int32) *Int32 { return atomic.NewInt32(v) }
func NewInt64(v int64) *Int64 { return atomic.NewInt64(v) }
func NewBool(v bool) *Bool    { return atomic.NewBool(v) }
