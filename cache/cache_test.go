package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hok-pm/hok/cache"
)

func TestSanitizeURLFoldsDisallowedRuns(t *testing.T) {
	got := cache.SanitizeURL("https://x/a?b=c")
	if got != "https_x_a_b_c" {
		t.Fatalf("unexpected sanitized url: %q", got)
	}
}

// TestCacheFilenameBijection covers the property from spec.md §8 item 5:
// for any (pkg, ver, url), round-tripping through the filename recovers the
// original fields modulo URL sanitization.
func TestCacheFilenameBijection(t *testing.T) {
	cases := []struct{ app, version, url string }{
		{"foo", "1.0", "https://x/a?b"},
		{"some-app", "2.3.4-beta", "https://example.com/download/file.zip"},
	}
	for _, c := range cases {
		cf, _ := cache.NewStore(t.TempDir()).Add(c.app, c.version, c.url)
		reparsed, ok := cache.Parse(cf.Filename())
		if !ok {
			t.Fatalf("failed to reparse generated filename %q", cf.Filename())
		}
		if reparsed.App != c.app || reparsed.Version != c.version || reparsed.SanitizedURL != cache.SanitizeURL(c.url) {
			t.Fatalf("bijection broken: got %+v", reparsed)
		}
	}
}

func TestParseIgnoresMalformedNames(t *testing.T) {
	if _, ok := cache.Parse("not-a-cache-file"); ok {
		t.Fatalf("expected malformed name to be rejected")
	}
	if _, ok := cache.Parse("too#many#separators#here"); ok {
		t.Fatalf("expected a name with extra separators to be rejected")
	}
}

// TestEnumerateSkipsPartialsAndFiltersBySubstring covers S3-adjacent
// enumeration behavior: a .download partial is never listed, and a
// substring query against the app field filters results.
func TestEnumerateSkipsPartialsAndFiltersBySubstring(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo#1.0#a_b.exe")
	touch(t, dir, "bar#2.0#c_d.exe")
	touch(t, dir, "foo#1.1#e_f.exe.download")

	s := cache.NewStore(dir)
	all, err := s.Enumerate("")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 complete entries, got %d: %+v", len(all), all)
	}

	filtered, err := s.Enumerate("foo")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(filtered) != 1 || filtered[0].App != "foo" {
		t.Fatalf("expected one foo entry, got %+v", filtered)
	}
}

// TestS3CacheReuseBySanitizedName mirrors scenario S3: a cache dir already
// contains foo#1.0#https_x_a_b.exe; the entry for url "https://x/a?b.exe" at
// version 1.0 is recognized by name match without re-downloading.
func TestS3CacheReuseBySanitizedName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo#1.0#https_x_a_b.exe")

	s := cache.NewStore(dir)
	cf, path := s.Add("foo", "1.0", "https://x/a?b.exe")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected existing cache file to be found at computed path: %v", err)
	}
	if cf.Filename() != "foo#1.0#https_x_a_b.exe" {
		t.Fatalf("unexpected computed filename: %q", cf.Filename())
	}
}

func TestRemoveWildcardClearsContentsNotDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo#1.0#a_b.exe")
	touch(t, dir, "bar#2.0#c_d.exe")

	s := cache.NewStore(dir)
	if err := s.Remove("*"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected cache directory itself to survive: %v", err)
	}
	entries, err := s.Enumerate("*")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty cache after wildcard remove, got %+v", entries)
	}
}

func TestRemoveBySubstringRemovesOnlyMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo#1.0#a_b.exe")
	touch(t, dir, "bar#2.0#c_d.exe")

	s := cache.NewStore(dir)
	if err := s.Remove("foo"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	remaining, err := s.Enumerate("*")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(remaining) != 1 || remaining[0].App != "bar" {
		t.Fatalf("expected only bar to remain, got %+v", remaining)
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}
