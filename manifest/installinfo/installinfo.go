// Package installinfo implements the per-installation metadata model C6:
// parsing and serializing apps/<name>/current/install.json. Built on
// cmn/jsp for the same atomic load/save discipline the config and manifest
// packages use.
package installinfo

import (
	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/cmn/jsp"
)

// InstallInfo is the per-installation record (spec.md §3). Absent Bucket
// marks an isolated install (from a raw URL/path) - SPEC_FULL.md §6 item 5
// renders such installs as the bare name with no "bucket/" prefix.
type InstallInfo struct {
	Architecture string `json:"architecture"`
	Bucket       string `json:"bucket,omitempty"`
	URL          string `json:"url,omitempty"`
	Hold         bool   `json:"hold,omitempty"`
}

// Load parses the install-info record at path.
func Load(path string) (*InstallInfo, error) {
	info, err := jsp.Load[InstallInfo](path)
	if err != nil {
		return nil, cmn.Wrapf(err, "failed to load install info %s", path)
	}
	return info, nil
}

// Save writes info to path, truncating and atomically renaming per the
// same discipline cmn/jsp uses for every persisted document.
func Save(path string, info *InstallInfo) error {
	return jsp.Save(path, info, true)
}

// IsIsolated reports whether this install has no originating bucket.
func (i *InstallInfo) IsIsolated() bool { return i.Bucket == "" }

// Ident renders the package identity this install info belongs to: bare
// name for an isolated install, "bucket/name" otherwise.
func (i *InstallInfo) Ident(name string) string {
	if i.IsIsolated() {
		return name
	}
	return i.Bucket + "/" + name
}
