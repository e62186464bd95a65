// Package xlog is a thin indirection over glog, the way 3rdparty/glog
// insulates the rest of the tree from the logging library of choice.
package xlog

import "github.com/golang/glog"

type Level = glog.Level

func Infof(format string, args ...interface{})    { glog.Infof(format, args...) }
func Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func Errorf(format string, args ...interface{})   { glog.Errorf(format, args...) }

func V(level Level) glog.Verbose { return glog.V(level) }

// Flush flushes any pending log I/O; callers should defer this at startup.
func Flush() { glog.Flush() }
