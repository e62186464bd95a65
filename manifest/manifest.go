// Package manifest implements the manifest model C5: parsing a package
// manifest JSON file into a typed tree, exposing architecture-aware field
// accessors, validating hash strings at parse time, and deriving the full
// (explicit + implicit) dependency set and the shim name list. Modeled on
// the teacher's cmn/jsp load discipline for the read path, generalized with
// the polymorphic field shapes original_source's package/manifest.rs
// defines.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package manifest

import (
	"io/ioutil"
	"sort"
	"strings"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/internal/xlog"
	"github.com/hok-pm/hok/internal/xpath"
)

// ManifestSpec is the raw, deserialized shape of a manifest JSON document
// (spec.md §3's field list, plus the carried-through fields).
type ManifestSpec struct {
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Homepage    string `json:"homepage"`
	License     License `json:"license"`

	Depends      Vectorized[string] `json:"depends,omitempty"`
	Innosetup    bool               `json:"innosetup,omitempty"`
	Cookie       map[string]string  `json:"cookie,omitempty"`
	Architecture *Architecture      `json:"architecture,omitempty"`

	URL        Vectorized[string]              `json:"url,omitempty"`
	Hash       Vectorized[HashString]          `json:"hash,omitempty"`
	ExtractDir Vectorized[string]              `json:"extract_dir,omitempty"`
	ExtractTo  Vectorized[string]              `json:"extract_to,omitempty"`

	PreInstall    Vectorized[string] `json:"pre_install,omitempty"`
	Installer     *Installer         `json:"installer,omitempty"`
	PostInstall   Vectorized[string] `json:"post_install,omitempty"`
	PreUninstall  Vectorized[string] `json:"pre_uninstall,omitempty"`
	Uninstaller   *Uninstaller       `json:"uninstaller,omitempty"`
	PostUninstall Vectorized[string] `json:"post_uninstall,omitempty"`

	Bin        Vectorized[Vectorized[string]] `json:"bin,omitempty"`
	EnvAddPath Vectorized[string]             `json:"env_add_path,omitempty"`
	EnvSet     map[string]string              `json:"env_set,omitempty"`
	Shortcuts  [][]string                     `json:"shortcuts,omitempty"`
	Persist    Vectorized[Vectorized[string]] `json:"persist,omitempty"`
	Psmodule   *Psmodule                      `json:"psmodule,omitempty"`

	Suggest   map[string]Vectorized[string] `json:"suggest,omitempty"`
	Checkver  *Checkver                     `json:"checkver,omitempty"`
	Autoupdate *Autoupdate                  `json:"autoupdate,omitempty"`
	Notes     Vectorized[string]            `json:"notes,omitempty"`
}

// Manifest is the immutable, parsed view of a manifest file (spec.md §3:
// "Manifest (immutable once parsed)").
type Manifest struct {
	path string
	spec ManifestSpec
}

// Parse reads path and decodes it into a Manifest. A parse failure is
// reported at V(1): per spec.md §7, an invalid manifest is "ignored,
// logged" by callers that enumerate many manifests at once (bucket/query),
// not fatal to the whole walk.
func Parse(path string) (*Manifest, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec ManifestSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		xlog.V(1).Infof("failed to parse manifest %s: %v", path, err)
		return nil, cmn.Wrapf(err, "failed to parse manifest %s", path)
	}
	return &Manifest{path: path, spec: spec}, nil
}

// Path returns the file path this manifest was parsed from.
func (m *Manifest) Path() string { return m.path }

// Name is the manifest's package name, derived from its file stem
// (spec.md §4.5: manifests are named "<name>.json").
func (m *Manifest) Name() string { return xpath.Stem(m.path) }

func (m *Manifest) Version() string     { return m.spec.Version }
func (m *Manifest) Description() string { return m.spec.Description }
func (m *Manifest) Homepage() string    { return m.spec.Homepage }
func (m *Manifest) License() License    { return m.spec.License }
func (m *Manifest) Cookie() map[string]string { return m.spec.Cookie }
func (m *Manifest) Architecture() *Architecture { return m.spec.Architecture }
func (m *Manifest) Checkver() *Checkver { return m.spec.Checkver }
func (m *Manifest) Autoupdate() *Autoupdate { return m.spec.Autoupdate }
func (m *Manifest) Suggest() map[string]Vectorized[string] { return m.spec.Suggest }
func (m *Manifest) Psmodule() *Psmodule { return m.spec.Psmodule }
func (m *Manifest) Notes() []string { return m.spec.Notes.Slice() }

// Depends returns the explicit dependency list only; Dependencies returns
// the full derived set including implicit additions.
func (m *Manifest) Depends() []string { return m.spec.Depends.Slice() }

// Persist returns the list of files/directories preserved across
// uninstall/reinstall.
func (m *Manifest) Persist() [][]string { return flatten2(m.spec.Persist) }

// archSpec returns the ArchitectureSpec matching the running host, or nil
// if the manifest declares no architecture block or no override for it
// (cmn.HostArch mirrors the original's cfg!(target_arch) dispatch).
func (m *Manifest) archSpec() *ArchitectureSpec {
	if m.spec.Architecture == nil {
		return nil
	}
	switch cmn.HostArch() {
	case cmn.ArchIA32:
		return m.spec.Architecture.IA32
	case cmn.ArchAArch64:
		return m.spec.Architecture.AARCH64
	default:
		return m.spec.Architecture.AMD64
	}
}

func flatten2(v Vectorized[Vectorized[string]]) [][]string {
	if v == nil {
		return nil
	}
	out := make([][]string, 0, len(v))
	for _, inner := range v {
		out = append(out, inner.Slice())
	}
	return out
}

// Bin returns the shim definitions, architecture value winning over noarch
// when present (spec.md §3).
func (m *Manifest) Bin() [][]string {
	if as := m.archSpec(); as != nil && as.Bin != nil {
		return flatten2(as.Bin)
	}
	return flatten2(m.spec.Bin)
}

func (m *Manifest) EnvAddPath() []string {
	if as := m.archSpec(); as != nil && as.EnvAddPath != nil {
		return as.EnvAddPath.Slice()
	}
	return m.spec.EnvAddPath.Slice()
}

func (m *Manifest) EnvSet() map[string]string {
	if as := m.archSpec(); as != nil && as.EnvSet != nil {
		return as.EnvSet
	}
	return m.spec.EnvSet
}

func (m *Manifest) ExtractDir() []string {
	if as := m.archSpec(); as != nil && as.ExtractDir != nil {
		return as.ExtractDir.Slice()
	}
	return m.spec.ExtractDir.Slice()
}

// ExtractTo is noarch-only (SPEC_FULL.md §6 item 4): it names an explicit
// rename for each extracted archive, independent of ExtractDir.
func (m *Manifest) ExtractTo() []string { return m.spec.ExtractTo.Slice() }

func (m *Manifest) Innosetup() bool { return m.spec.Innosetup }

func (m *Manifest) PreInstall() []string {
	if as := m.archSpec(); as != nil && as.PreInstall != nil {
		return as.PreInstall.Slice()
	}
	return m.spec.PreInstall.Slice()
}

func (m *Manifest) PostInstall() []string {
	if as := m.archSpec(); as != nil && as.PostInstall != nil {
		return as.PostInstall.Slice()
	}
	return m.spec.PostInstall.Slice()
}

func (m *Manifest) PreUninstall() []string {
	if as := m.archSpec(); as != nil && as.PreUninstall != nil {
		return as.PreUninstall.Slice()
	}
	return m.spec.PreUninstall.Slice()
}

func (m *Manifest) PostUninstall() []string {
	if as := m.archSpec(); as != nil && as.PostUninstall != nil {
		return as.PostUninstall.Slice()
	}
	return m.spec.PostUninstall.Slice()
}

func (m *Manifest) Installer() *Installer {
	if as := m.archSpec(); as != nil && as.Installer != nil {
		return as.Installer
	}
	return m.spec.Installer
}

func (m *Manifest) Uninstaller() *Uninstaller {
	if as := m.archSpec(); as != nil && as.Uninstaller != nil {
		return as.Uninstaller
	}
	return m.spec.Uninstaller
}

func (m *Manifest) Shortcuts() [][]string {
	if as := m.archSpec(); as != nil && as.Shortcuts != nil {
		return as.Shortcuts
	}
	return m.spec.Shortcuts
}

// URL returns the download url(s), architecture value winning over noarch
// (spec.md §3's "amd64: 64bit urls if available else noarch urls", etc.).
func (m *Manifest) URL() []string {
	if as := m.archSpec(); as != nil && as.URL != nil {
		return as.URL.Slice()
	}
	return m.spec.URL.Slice()
}

// Hash returns the file hash(es) matching URL() in order.
func (m *Manifest) Hash() []HashString {
	if as := m.archSpec(); as != nil && as.Hash != nil {
		return as.Hash.Slice()
	}
	return m.spec.Hash.Slice()
}

// Dependencies returns the full derived dependency set: explicit depends
// plus implicit additions inferred from innosetup/hook scripts (spec.md
// §3's "Derived dependency set").
func (m *Manifest) Dependencies() []string {
	set := make(map[string]struct{})
	for _, d := range m.Depends() {
		set[d] = struct{}{}
	}
	if m.Innosetup() {
		set["innounp"] = struct{}{}
	}

	var hooks []string
	hooks = append(hooks, m.PreInstall()...)
	hooks = append(hooks, m.PostInstall()...)
	if inst := m.Installer(); inst != nil {
		hooks = append(hooks, inst.Script.Slice()...)
	}
	if uninst := m.Uninstaller(); uninst != nil {
		hooks = append(hooks, uninst.Script.Slice()...)
	}
	hooks = append(hooks, m.PreUninstall()...)
	hooks = append(hooks, m.PostUninstall()...)
	joined := strings.Join(hooks, "\r\n")

	if strings.Contains(joined, "Expand-InnoArchive") {
		set["innounp"] = struct{}{}
	}
	if strings.Contains(joined, "Expand-7zipArchive") {
		set["7zip"] = struct{}{}
	}
	if strings.Contains(joined, "Expand-MsiArchive") {
		set["lessmsi"] = struct{}{}
	}
	if strings.Contains(joined, "Expand-DarkArchive") {
		set["dark"] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Shims returns the shim names defined by Bin(): a single element is both
// the source and the shim name, minus its extension and directory
// (spec.md §4.4); a second element (the rename) is used verbatim instead.
func (m *Manifest) Shims() []string {
	bins := m.Bin()
	shims := make([]string, 0, len(bins))
	for _, def := range bins {
		switch len(def) {
		case 0:
			xlog.V(1).Infof("invalid shim definition in %s: %v", m.path, def)
			continue
		case 1:
			shims = append(shims, xpath.Stem(def[0]))
		default:
			shims = append(shims, def[1])
		}
	}
	return shims
}
