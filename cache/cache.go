// Package cache implements C8: the name-scheme, enumeration, and removal
// rules for the download cache directory. A CacheFile is purely a parsed
// filename descriptor - Store never touches file contents, following the
// same "describe, don't open" discipline as the teacher's fs/mountpath.go
// (MountpathInfo never reads the mounted filesystem itself).
package cache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/internal/xfs"
)

// CacheFile describes one entry in the cache directory by its filename
// alone: app#version#sanitizedURL (spec.md §6).
type CacheFile struct {
	App          string
	Version      string
	SanitizedURL string
}

// Filename renders c back to its on-disk name.
func (c CacheFile) Filename() string {
	return c.App + "#" + c.Version + "#" + c.SanitizedURL
}

// SanitizeURL folds url into the cache-filename alphabet by replacing any
// run of disallowed characters with a single underscore (spec.md §6).
func SanitizeURL(url string) string {
	return cmn.RegexSanitize.ReplaceAllString(url, "_")
}

// Parse decodes name into a CacheFile, or reports ok=false if name doesn't
// match the cache filename grammar (spec.md §6 invariant 1: non-matching
// entries are ignored, not errors).
func Parse(name string) (CacheFile, bool) {
	m := cmn.RegexCacheFilename.FindStringSubmatch(name)
	if m == nil {
		return CacheFile{}, false
	}
	return CacheFile{App: m[1], Version: m[2], SanitizedURL: m[3]}, true
}

// Store enumerates and mutates the cache directory rooted at dir.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// Add composes name's CacheFile descriptor and its on-disk path. It does
// not create any file - the caller writes to DownloadPath(name) and renames
// to Path(name) on successful completion (spec.md §6: "Add does not create
// the file, only the CacheFile descriptor").
func (s *Store) Add(app, version, url string) (CacheFile, string) {
	cf := CacheFile{App: app, Version: version, SanitizedURL: SanitizeURL(url)}
	return cf, s.Path(cf)
}

// Path returns cf's final on-disk path within the store.
func (s *Store) Path(cf CacheFile) string {
	return filepath.Join(s.dir, cf.Filename())
}

// DownloadPath returns the ".download" temp-partial path cf is written to
// while the download is in flight (spec.md §6).
func (s *Store) DownloadPath(cf CacheFile) string {
	return s.Path(cf) + cmn.DownloadSuffix
}

// Enumerate lists every CacheFile in the store whose app field contains
// query as a substring. An empty string or "*" matches everything.
// Unparseable filenames (including ".download" partials) are skipped
// silently (spec.md §6).
func (s *Store) Enumerate(query string) ([]CacheFile, error) {
	wildcard := query == "" || query == "*"
	var out []CacheFile
	err := xfs.WalkFiles(s.dir, func(name string) error {
		if strings.HasSuffix(name, cmn.DownloadSuffix) {
			return nil
		}
		cf, ok := Parse(name)
		if !ok {
			return nil
		}
		if wildcard || strings.Contains(cf.App, query) {
			out = append(out, cf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes every entry matched by query. "*" clears the directory's
// contents without removing the directory itself (spec.md §6).
func (s *Store) Remove(query string) error {
	if query == "*" {
		return xfs.RemoveAllContents(s.dir)
	}
	matches, err := s.Enumerate(query)
	if err != nil {
		return err
	}
	for _, cf := range matches {
		if err := os.Remove(s.Path(cf)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
