// Package xfs provides the filesystem-walking half of C3: fast JSON
// directory enumeration (manifests, cache entries) and recursive
// empty/remove helpers, built on github.com/karrick/godirwalk the way the
// teacher's fs/walk.go walks mountpaths.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package xfs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
)

// WalkJSONFiles invokes fn for every regular *.json file directly under dir
// (non-recursive - bucket layouts never nest manifests more than one
// category directory deep, and callers that need recursion call this once
// per category). Entries are visited in an implementation-defined order;
// per spec.md §4.5 "ordering of the returned list is not stable", callers
// that need a stable order sort afterwards.
func WalkJSONFiles(dir string, fn func(path string) error) error {
	entries, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := fn(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// WalkFiles invokes fn for every regular file directly under dir, in
// lexical order (used by the cache store, where a deterministic walk makes
// tests reproducible even though the spec doesn't require it there).
func WalkFiles(dir string, fn func(name string) error) error {
	entries, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := fn(name); err != nil {
			return err
		}
	}
	return nil
}

// Subdirs returns the immediate subdirectory names of dir, sorted.
func Subdirs(dir string) ([]string, error) {
	entries, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// IsEmptyDir reports whether dir exists, is a directory, and has no entries.
func IsEmptyDir(dir string) bool {
	entries, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return false
	}
	return len(entries) == 0
}

// RemoveIfEmpty removes dir if it exists and is empty; a no-op otherwise.
func RemoveIfEmpty(dir string) error {
	if IsEmptyDir(dir) {
		return os.Remove(dir)
	}
	return nil
}

// RemoveAllContents removes every entry inside dir without removing dir
// itself - the semantics the cache store's "*" removal needs (spec.md §4.6:
// "clears the cache directory contents (not the directory itself)").
func RemoveAllContents(dir string) error {
	entries, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
