// Package xpath provides the leaf/stem path helpers C3 of the spec calls
// for, plus filename sanitization used by the cache store and the download
// pipeline's URL-to-fragment folding.
package xpath

import (
	"path/filepath"
	"strings"

	"github.com/hok-pm/hok/cmn"
)

// Leaf returns the final path element (the directory or file name),
// equivalent to Rust's Path::file_name().
func Leaf(path string) string {
	return filepath.Base(filepath.Clean(path))
}

// Stem returns Leaf with its extension removed, equivalent to
// Path::file_stem().
func Stem(path string) string {
	leaf := Leaf(path)
	if ext := filepath.Ext(leaf); ext != "" && ext != leaf {
		return strings.TrimSuffix(leaf, ext)
	}
	return leaf
}

// Sanitize replaces any run of characters outside [A-Za-z0-9._-] with a
// single underscore, the rule spec.md §3 defines for folding a URL into the
// cache filename's third field.
func Sanitize(s string) string {
	return cmn.RegexSanitize.ReplaceAllString(s, "_")
}

// Category returns the V3 bucket-layout category for a manifest name: its
// first lowercase ASCII letter, or '#' if that character isn't a..z
// (spec.md §4.5).
func Category(name string) string {
	if name == "" {
		return "#"
	}
	c := strings.ToLower(name)[0]
	if c >= 'a' && c <= 'z' {
		return string(c)
	}
	return "#"
}
