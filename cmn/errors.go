// Package cmn provides common low-level types and utilities shared by every
// package in the core: error kinds, sync primitives, the HTTP client
// factory, and the hash-string grammar.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"fmt"

	"github.com/pkg/errors"
)

// Bucket errors.
type (
	ErrBucketAlreadyExists struct{ Name string }
	ErrBucketAddRemoteRequired struct{ Name string }
	ErrBucketNotFound struct{ Name string }
	// ErrBareBucketFound is reserved for future enforcement (spec.md §7);
	// nothing constructs it yet.
	ErrBareBucketFound struct{ Name string }
)

func (e *ErrBucketAlreadyExists) Error() string { return fmt.Sprintf("bucket %q already exists", e.Name) }
func (e *ErrBucketAddRemoteRequired) Error() string {
	return fmt.Sprintf("bucket %q is not a known bucket, a remote url is required", e.Name)
}
func (e *ErrBucketNotFound) Error() string   { return fmt.Sprintf("bucket %q not found", e.Name) }
func (e *ErrBareBucketFound) Error() string  { return fmt.Sprintf("bucket %q has no manifests", e.Name) }

// Config errors.
type (
	ErrConfigInUse       struct{}
	ErrInvalidConfigKey   struct{ Key string }
	ErrInvalidConfigValue struct{ Value string }
)

func (e *ErrConfigInUse) Error() string         { return "config is currently borrowed for reading" }
func (e *ErrInvalidConfigKey) Error() string    { return fmt.Sprintf("invalid config key: %q", e.Key) }
func (e *ErrInvalidConfigValue) Error() string  { return fmt.Sprintf("invalid config value: %q", e.Value) }

// Package errors.
type (
	ErrPackageNotFound struct{ Query string }
	ErrPackageMultipleCandidates struct{ Name string }
	ErrPackageDependentFound struct{ Pairs []DependentPair }
	ErrPackageCascadeRemoveHold struct{ Name string }
	ErrPackageHoldNotInstalled  struct{ Name string }
	ErrPackageHoldBrokenInstall struct{ Name string }

	// DependentPair is a (dependent, dependency) pair reported by
	// ErrPackageDependentFound.
	DependentPair struct {
		Dependent  string
		Dependency string
	}
)

func (e *ErrPackageNotFound) Error() string { return fmt.Sprintf("could not find package %q", e.Query) }
func (e *ErrPackageMultipleCandidates) Error() string {
	return fmt.Sprintf("found multiple candidates for %q", e.Name)
}
func (e *ErrPackageDependentFound) Error() string {
	return fmt.Sprintf("%d package(s) still depend on the package(s) being removed", len(e.Pairs))
}
func (e *ErrPackageCascadeRemoveHold) Error() string {
	return fmt.Sprintf("package %q is held and would be cascade-removed", e.Name)
}
func (e *ErrPackageHoldNotInstalled) Error() string {
	return fmt.Sprintf("package %q is not installed", e.Name)
}
func (e *ErrPackageHoldBrokenInstall) Error() string {
	return fmt.Sprintf("package %q has a broken install", e.Name)
}

// Integrity errors.
type (
	ErrHashMismatch struct {
		Name, URL, Expected, Actual string
	}
	ErrUnsupportedHashAlgorithm struct{ Algo string }
	ErrInvalidHashString        struct{ Raw string }
)

func (e *ErrHashMismatch) Error() string {
	return fmt.Sprintf("hash mismatch for %s (%s): expected %s, got %s", e.Name, e.URL, e.Expected, e.Actual)
}
func (e *ErrUnsupportedHashAlgorithm) Error() string {
	return fmt.Sprintf("unsupported hash algorithm: %q", e.Algo)
}
func (e *ErrInvalidHashString) Error() string { return fmt.Sprintf("invalid hash string: %q", e.Raw) }

// Graph errors.
type ErrCyclicDependency struct {
	Edges []Edge
}

// Edge is a directed n->d dependency edge; resolver converts dag's own
// edges to it when reporting a cycle.
type Edge struct{ From, To string }

func (e *ErrCyclicDependency) Error() string {
	return fmt.Sprintf("cyclic dependency detected among %d edge(s)", len(e.Edges))
}

// ErrInvalidAnswer is returned when the caller answers a prompt out of range.
type ErrInvalidAnswer struct{ Index int }

func (e *ErrInvalidAnswer) Error() string { return fmt.Sprintf("invalid answer index: %d", e.Index) }

// Wrap and Wrapf delegate to github.com/pkg/errors, kept as named helpers so
// call sites read identically to the teacher's error-wrapping convention.
func Wrap(err error, msg string) error                    { return errors.Wrap(err, msg) }
func Wrapf(err error, format string, args ...interface{}) error { return errors.Wrapf(err, format, args...) }
