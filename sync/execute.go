package sync

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/hok-pm/hok/cache"
	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/download"
	"github.com/hok-pm/hok/events"
	"github.com/hok-pm/hok/hash"
	"github.com/hok-pm/hok/manifest"
	"github.com/hok-pm/hok/manifest/installinfo"
	"github.com/hok-pm/hok/query"
)

// ExecuteOptions mirrors the per-call switches spec.md §4.10's execution
// phase names.
type ExecuteOptions struct {
	DownloadOnly  bool
	NoHashCheck   bool
	IgnoreFailure bool
}

// Executor drives download, hash-check, extraction, hook scripts, and the
// commit sequence for a planned Transaction (spec.md §4.10 "Execution").
type Executor struct {
	fetcher *download.Fetcher
	cache   *cache.Store
	appsDir string
	hooks   HookRunner
	sink    events.Sink
}

// NewExecutor wires an Executor. A nil hooks defaults to PowerShellRunner;
// a nil sink discards events.
func NewExecutor(fetcher *download.Fetcher, store *cache.Store, appsDir string, hooks HookRunner, sink events.Sink) *Executor {
	if hooks == nil {
		hooks = PowerShellRunner{}
	}
	if sink == nil {
		sink = events.Discard{}
	}
	return &Executor{fetcher: fetcher, cache: store, appsDir: appsDir, hooks: hooks, sink: sink}
}

// Confirm emits PromptTransactionNeedConfirm and blocks on commands for
// PromptTransactionNeedConfirmResult, per spec.md §4.10/§6/§5 ("channel
// operations are the only suspension points"). Callers that set AssumeYes
// skip calling this entirely.
func (e *Executor) Confirm(tx *Transaction, commands <-chan events.Command) (bool, error) {
	summary := events.PromptTransactionNeedConfirm{Remove: tx.Remove}
	for _, item := range tx.Items {
		ident := Ident(item.Candidate)
		switch item.Action {
		case ActionInstall:
			summary.Install = append(summary.Install, ident)
		default:
			summary.Upgrade = append(summary.Upgrade, ident)
		}
	}
	e.sink.Send(summary)

	for cmd := range commands {
		if result, ok := cmd.(events.PromptTransactionNeedConfirmResult); ok {
			return result.Confirmed, nil
		}
	}
	return false, &cmn.ErrInvalidAnswer{Index: -1}
}

// Execute runs tx's items in order (spec.md §4.8 install order: dependencies
// precede dependents), stopping at the first failure unless
// opts.IgnoreFailure. It returns the idents that failed, if any.
func (e *Executor) Execute(ctx context.Context, tx *Transaction, opts ExecuteOptions) ([]string, error) {
	var failed []string
	for _, item := range tx.Items {
		if err := e.executeOne(ctx, item, opts); err != nil {
			failed = append(failed, Ident(item.Candidate))
			if !opts.IgnoreFailure {
				return failed, err
			}
		}
	}
	return failed, nil
}

// executeOne runs one package through download, hash-check, extraction,
// hook scripts, and commit (spec.md §4.10 "Execution", "Failure model").
func (e *Executor) executeOne(ctx context.Context, item Item, opts ExecuteOptions) error {
	c := item.Candidate
	ident := Ident(c)
	e.sink.Send(events.PackageCommitStart{Ident: ident})

	versionDir := filepath.Join(e.appsDir, c.Name, c.Manifest.Version())
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return err
	}
	commitFailed := func(cause error) error {
		os.RemoveAll(versionDir)
		return cause
	}

	urls := c.Manifest.URL()
	hashes := c.Manifest.Hash()
	cachePaths := make([]string, len(urls))

	for i, url := range urls {
		cf, finalPath := e.cache.Add(c.Name, c.Manifest.Version(), url)
		req := download.Request{
			Ident:        ident,
			URL:          url,
			Cookie:       c.Manifest.Cookie(),
			DownloadPath: e.cache.DownloadPath(cf),
			FinalPath:    finalPath,
		}
		if err := e.fetcher.Fetch(ctx, req); err != nil {
			return commitFailed(err)
		}
		cachePaths[i] = finalPath
	}

	skipNightly := c.Manifest.Version() == "nightly"
	if !opts.NoHashCheck && !skipNightly {
		for i, path := range cachePaths {
			if i >= len(hashes) {
				break
			}
			if err := e.checkHash(ident, urls[i], path, hashes[i]); err != nil {
				return commitFailed(err)
			}
		}
	}

	if opts.DownloadOnly {
		e.sink.Send(events.PackageCommitDone{Ident: ident})
		return nil
	}

	for _, path := range cachePaths {
		if err := e.installOne(ctx, c, path, versionDir); err != nil {
			return commitFailed(err)
		}
	}

	currentLink := filepath.Join(e.appsDir, c.Name, "current")
	os.Remove(currentLink)
	if err := os.Symlink(versionDir, currentLink); err != nil {
		return commitFailed(err)
	}

	info := &installinfo.InstallInfo{Architecture: string(cmn.HostArch()), Bucket: c.Bucket}
	if item.Installed != nil {
		info.Hold = item.Installed.Info.Hold
	}
	if err := installinfo.Save(filepath.Join(currentLink, "install.json"), info); err != nil {
		return commitFailed(err)
	}

	e.sink.Send(events.PackageCommitDone{Ident: ident})
	return nil
}

// checkHash streams cachePath through the §4.1 hasher and reports
// HashMismatch on failure (spec.md §4.10 step 2).
func (e *Executor) checkHash(ident, url, cachePath string, expected manifest.HashString) error {
	f, err := os.Open(cachePath)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := hash.New(expected.Algo, expected.Value)
	if err != nil {
		return err
	}

	e.sink.Send(events.PackageIntegrityCheckStart{Ident: ident})
	buf := make([]byte, 64*1024)
	var now int64
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			h.Consume(buf[:n])
			now += int64(n)
			e.sink.Send(events.PackageIntegrityCheckProgress{Ident: ident, Now: now})
		}
		if rerr != nil {
			break
		}
	}
	ok := h.Check()
	e.sink.Send(events.PackageIntegrityCheckDone{Ident: ident, OK: ok})
	if !ok {
		return &cmn.ErrHashMismatch{Name: ident, URL: url, Expected: expected.Value, Actual: h.Finalize()}
	}
	return nil
}

// installOne copies or extracts one cache file into versionDir, then runs
// the manifest's hook scripts (spec.md §4.10 step 3).
func (e *Executor) installOne(ctx context.Context, c query.Candidate, cachePath, versionDir string) error {
	if ex := extractorFor(cachePath); ex != nil {
		if err := ex.Extract(cachePath, versionDir); err != nil {
			return err
		}
	} else {
		if err := copyFile(cachePath, filepath.Join(versionDir, filepath.Base(cachePath))); err != nil {
			return err
		}
	}

	for _, script := range c.Manifest.PreInstall() {
		if err := e.hooks.Run(ctx, script, versionDir); err != nil {
			return err
		}
	}
	if inst := c.Manifest.Installer(); inst != nil {
		for _, script := range inst.Script.Slice() {
			if err := e.hooks.Run(ctx, script, versionDir); err != nil {
				return err
			}
		}
	}
	for _, script := range c.Manifest.PostInstall() {
		if err := e.hooks.Run(ctx, script, versionDir); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
