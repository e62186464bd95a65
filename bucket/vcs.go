package bucket

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/hok-pm/hok/cmn"
)

// VCS is the source-control collaborator spec.md §1 scopes out of the core:
// only "clone a URL into a path" and "reset a working tree to remote HEAD"
// are consumed.
type VCS interface {
	Clone(ctx context.Context, url, dest string) error
	ResetToRemoteHEAD(ctx context.Context, dest string) error
	RemoteURL(dest string) (string, bool)
}

// GitVCS is the default VCS implementation, shelling out to the system git
// binary - the teacher scopes its own VCS-adjacent concerns (bucket update)
// no differently: invoke an external binary and surface its exit status.
type GitVCS struct{}

var _ VCS = GitVCS{}

func (GitVCS) Clone(ctx context.Context, url, dest string) error {
	cmdline := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dest)
	var stderr bytes.Buffer
	cmdline.Stderr = &stderr
	if err := cmdline.Run(); err != nil {
		return cmn.Wrapf(err, "git clone %s: %s", url, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (GitVCS) ResetToRemoteHEAD(ctx context.Context, dest string) error {
	fetch := exec.CommandContext(ctx, "git", "-C", dest, "fetch", "--depth", "1", "origin")
	var fetchErr bytes.Buffer
	fetch.Stderr = &fetchErr
	if err := fetch.Run(); err != nil {
		return cmn.Wrapf(err, "git fetch in %s: %s", dest, strings.TrimSpace(fetchErr.String()))
	}

	reset := exec.CommandContext(ctx, "git", "-C", dest, "reset", "--hard", "origin/HEAD")
	var resetErr bytes.Buffer
	reset.Stderr = &resetErr
	if err := reset.Run(); err != nil {
		return cmn.Wrapf(err, "git reset in %s: %s", dest, strings.TrimSpace(resetErr.String()))
	}
	return nil
}

func (GitVCS) RemoteURL(dest string) (string, bool) {
	cmdline := exec.Command("git", "-C", dest, "remote", "get-url", "origin")
	out, err := cmdline.Output()
	if err != nil {
		return "", false
	}
	url := strings.TrimSpace(string(out))
	if url == "" {
		return "", false
	}
	return url, true
}
