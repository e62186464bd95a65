package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hok-pm/hok/manifest"
)

func writeManifest(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestParseMinimalManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "7zip", `{
		"version": "23.01",
		"homepage": "https://www.7-zip.org/",
		"license": "LGPL-2.1",
		"url": "https://example.com/7z.exe",
		"hash": "sha256:`+sha256zeros()+`"
	}`)

	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name() != "7zip" {
		t.Fatalf("expected name 7zip, got %q", m.Name())
	}
	if m.Version() != "23.01" {
		t.Fatalf("unexpected version %q", m.Version())
	}
	if len(m.URL()) != 1 || m.URL()[0] != "https://example.com/7z.exe" {
		t.Fatalf("unexpected url %v", m.URL())
	}
	if got := m.License().Display(); got != "LGPL-2.1 (https://spdx.org/licenses/LGPL-2.1.html)" {
		t.Fatalf("unexpected license display: %q", got)
	}
}

func sha256zeros() string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

func TestInvalidHashRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "bad", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/a.zip",
		"hash": "not-a-hash"
	}`)

	if _, err := manifest.Parse(path); err == nil {
		t.Fatalf("expected an error for invalid hash grammar")
	}
}

func TestVectorizedScalarAndArray(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "notes-case", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": ["https://example.com/a.zip", "https://example.com/b.zip"],
		"notes": "single note"
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.URL()) != 2 {
		t.Fatalf("expected 2 urls, got %v", m.URL())
	}
	if len(m.Notes()) != 1 || m.Notes()[0] != "single note" {
		t.Fatalf("expected single-element notes, got %v", m.Notes())
	}
}

func TestArchitectureOverrideWinsOverNoarch(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "arched", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/noarch.zip",
		"architecture": {
			"32bit": { "url": "https://example.com/x86.zip" },
			"64bit": { "url": "https://example.com/x64.zip" },
			"arm64": { "url": "https://example.com/arm64.zip" }
		}
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	urls := m.URL()
	if len(urls) != 1 {
		t.Fatalf("expected exactly one resolved url, got %v", urls)
	}
	if urls[0] == "https://example.com/noarch.zip" {
		t.Fatalf("expected the host architecture's override url, got %v", urls)
	}
}

func TestCheckverGithubShorthand(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "gh", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/a.zip",
		"checkver": "github"
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cv := m.Checkver()
	if cv == nil {
		t.Fatalf("expected checkver to be parsed")
	}
	if cv.Regex == "" {
		t.Fatalf("expected github shorthand to expand a regex")
	}
}

func TestCheckverGithubObjectShorthand(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "gh2", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/a.zip",
		"checkver": { "github": "https://github.com/owner/repo" }
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cv := m.Checkver()
	if cv == nil || cv.URL != "https://github.com/owner/repo/releases/latest" {
		t.Fatalf("unexpected checkver url: %+v", cv)
	}
}

func TestSourceforgeShorthand(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "sf", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/a.zip",
		"checkver": { "sourceforge": "myproj/files" }
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cv := m.Checkver()
	if cv == nil || cv.Sourceforge == nil {
		t.Fatalf("expected sourceforge to be parsed")
	}
	if cv.Sourceforge.Project != "myproj" || cv.Sourceforge.Path != "files" {
		t.Fatalf("unexpected sourceforge fields: %+v", cv.Sourceforge)
	}
}

func TestDependenciesDerivesInnounpFromInnosetup(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "instd", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/a.exe",
		"innosetup": true,
		"depends": "main/somelib"
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	deps := m.Dependencies()
	found := map[string]bool{}
	for _, d := range deps {
		found[d] = true
	}
	if !found["innounp"] {
		t.Fatalf("expected innounp in derived deps, got %v", deps)
	}
	if !found["main/somelib"] {
		t.Fatalf("expected explicit depend carried through, got %v", deps)
	}
}

func TestDependenciesDerivesFromHookScript(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "hookd", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/a.zip",
		"pre_install": "Expand-7zipArchive -ArchiveFileName a.zip"
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	deps := m.Dependencies()
	found := false
	for _, d := range deps {
		if d == "7zip" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 7zip dependency derived from hook script, got %v", deps)
	}
}

func TestShimsPicksRenameWhenPresent(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "shimd", `{
		"version": "1.0",
		"homepage": "https://example.com",
		"license": "MIT",
		"url": "https://example.com/a.zip",
		"bin": [["bin/foo.exe"], ["bin/bar.exe", "baz"]]
	}`)
	m, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	shims := m.Shims()
	if len(shims) != 2 || shims[0] != "foo" || shims[1] != "baz" {
		t.Fatalf("unexpected shims: %v", shims)
	}
}
