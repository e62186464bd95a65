package query

import (
	"path/filepath"

	"github.com/hok-pm/hok/bucket"
	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/internal/xfs"
	"github.com/hok-pm/hok/manifest"
	"github.com/hok-pm/hok/manifest/installinfo"
)

// Installed is one matched currently-installed package (spec.md §4.7).
type Installed struct {
	Name     string
	Info     *installinfo.InstallInfo
	Manifest *manifest.Manifest
}

// QueryInstalled walks appsDir (config.Config.AppsDir()), matching
// installed packages against raw under opts. "scoop" itself is always
// skipped. An install missing either current/manifest.json or
// current/install.json, or failing to parse either, is skipped - the
// installed-package walk is tolerant of a broken single install the same
// way the bucket walk is tolerant of a single bad manifest (spec.md §7).
//
// When opts.Upgradable is set, buckets resolves the installed bucket's
// current manifest for a strict version comparison (spec.md §9); a nil
// buckets with Upgradable set matches nothing, since there is nothing to
// compare against.
func QueryInstalled(appsDir string, raw string, opts Options, buckets *bucket.Manager) ([]Installed, error) {
	q := Parse(raw)
	re, err := q.Matcher(opts)
	if err != nil {
		return nil, err
	}

	names, err := xfs.Subdirs(appsDir)
	if err != nil {
		return nil, err
	}

	var out []Installed
	for _, name := range names {
		if name == "scoop" {
			continue
		}
		current := filepath.Join(appsDir, name, "current")
		manPath := filepath.Join(current, "manifest.json")
		infoPath := filepath.Join(current, "install.json")

		man, err := manifest.Parse(manPath)
		if err != nil {
			continue
		}
		info, err := installinfo.Load(infoPath)
		if err != nil {
			continue
		}

		if q.Bucket != "" {
			if info.IsIsolated() || info.Bucket != q.Bucket {
				continue
			}
		}

		if !matches(name, man, re, opts) {
			continue
		}

		if opts.Upgradable && !isUpgradable(name, man, info, buckets) {
			continue
		}

		out = append(out, Installed{Name: name, Info: info, Manifest: man})
	}
	return out, nil
}

func isUpgradable(name string, installed *manifest.Manifest, info *installinfo.InstallInfo, buckets *bucket.Manager) bool {
	if buckets == nil || info.IsIsolated() {
		return false
	}
	b, ok := buckets.Get(info.Bucket)
	if !ok {
		return false
	}
	current, ok := b.ParseManifest(name)
	if !ok {
		return false
	}
	return cmn.CompareVersions(installed.Version(), current.Version()) < 0
}
