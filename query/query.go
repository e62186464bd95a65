// Package query implements C9: parsing search queries, matching them
// against installed and synced packages, and resolving an unprefixed query
// to exactly one candidate via the tie-breaking rule of spec.md §4.7.
package query

import (
	"regexp"
	"strings"

	"github.com/hok-pm/hok/manifest"
)

// Options are the matching modifiers spec.md §4.7 names beyond the bare
// pattern: Explicit disables regex semantics beyond ^...$ anchoring, Binary
// also matches shim names, Description also matches description text, and
// Upgradable restricts results to packages strictly behind their bucket's
// current version.
type Options struct {
	Explicit    bool
	Binary      bool
	Description bool
	Upgradable  bool
}

// Query is a parsed search expression: either a bare pattern or a
// "bucket/pattern" pair restricting the search to one bucket.
type Query struct {
	Bucket  string
	Pattern string
}

// Parse splits raw on the first "/" into a bucket-scoped query, or treats
// the whole string as an unscoped pattern if there is no "/".
func Parse(raw string) Query {
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		return Query{Bucket: raw[:i], Pattern: raw[i+1:]}
	}
	return Query{Pattern: raw}
}

// Matcher compiles q's pattern per opts.Explicit: case-insensitive
// multi-line regex by default, or a literal string anchored with ^...$
// when Explicit disables regex semantics beyond that anchoring.
func (q Query) Matcher(opts Options) (*regexp.Regexp, error) {
	pattern := q.Pattern
	if opts.Explicit {
		return regexp.Compile("^" + regexp.QuoteMeta(pattern) + "$")
	}
	return regexp.Compile("(?im)" + pattern)
}

// Candidate is one synced-manifest match: the bucket it came from, its
// name, and the parsed manifest.
type Candidate struct {
	Bucket   string
	Name     string
	Manifest *manifest.Manifest
}

// matches reports whether m satisfies re under opts: by name always, by
// shim name when Binary is set, by description text when Description is
// set.
func matches(name string, m *manifest.Manifest, re *regexp.Regexp, opts Options) bool {
	if re.MatchString(name) {
		return true
	}
	if opts.Binary {
		for _, shim := range m.Shims() {
			if re.MatchString(shim) {
				return true
			}
		}
	}
	if opts.Description && re.MatchString(m.Description()) {
		return true
	}
	return false
}
