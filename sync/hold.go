package sync

import (
	"path/filepath"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/cmn/jsp"
	"github.com/hok-pm/hok/manifest/installinfo"
)

// Hold flips name's hold flag and persists it (SPEC_FULL.md §6 item 6). A
// package with no current install fails with ErrPackageHoldNotInstalled;
// one whose install.json exists but can't be parsed fails with
// ErrPackageHoldBrokenInstall.
func (p *Planner) Hold(name string, flag bool) error {
	infoPath := filepath.Join(p.appsDir, name, "current", "install.json")
	if !jsp.Exists(infoPath) {
		return &cmn.ErrPackageHoldNotInstalled{Name: name}
	}
	info, err := installinfo.Load(infoPath)
	if err != nil {
		return &cmn.ErrPackageHoldBrokenInstall{Name: name}
	}
	info.Hold = flag
	if err := installinfo.Save(infoPath, info); err != nil {
		return &cmn.ErrPackageHoldBrokenInstall{Name: name}
	}
	return nil
}
