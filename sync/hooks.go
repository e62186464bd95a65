package sync

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/hok-pm/hok/cmn"
)

// HookRunner is the external shell collaborator spec.md §4.10 step 3 calls
// for: pre/post install/uninstall scripts and installer/uninstaller
// scripts are PowerShell snippets, run with the working directory set to
// the package's version directory. Modeled on bucket.VCS's shell-out
// shape: one interface method per distinct external action, a default
// implementation that shells out and surfaces stderr on failure.
type HookRunner interface {
	Run(ctx context.Context, script, workDir string) error
}

// PowerShellRunner is the default HookRunner, invoking "powershell -NoProfile
// -NonInteractive -Command <script>" the same way the teacher's GitVCS shells
// out to git.
type PowerShellRunner struct{}

var _ HookRunner = PowerShellRunner{}

func (PowerShellRunner) Run(ctx context.Context, script, workDir string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	cmdline := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	cmdline.Dir = workDir
	var stderr bytes.Buffer
	cmdline.Stderr = &stderr
	if err := cmdline.Run(); err != nil {
		return cmn.Wrapf(err, "hook script failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}
