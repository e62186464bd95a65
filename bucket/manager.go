package bucket

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/events"
	"github.com/hok-pm/hok/internal/xfs"
	"github.com/hok-pm/hok/internal/xlog"
	"github.com/hok-pm/hok/manifest"
)

// Manager enumerates and mutates the buckets rooted at dir (spec.md §4.5).
type Manager struct {
	dir string
	vcs VCS
}

// NewManager returns a Manager rooted at dir, using vcs for add/update. A
// nil vcs defaults to GitVCS{}.
func NewManager(dir string, vcs VCS) *Manager {
	if vcs == nil {
		vcs = GitVCS{}
	}
	return &Manager{dir: dir, vcs: vcs}
}

func (m *Manager) path(name string) string { return filepath.Join(m.dir, name) }

// Get loads one bucket's metadata by name, without touching the VCS.
func (m *Manager) Get(name string) (*Bucket, bool) {
	p := m.path(name)
	fi, err := os.Stat(p)
	if err != nil || !fi.IsDir() {
		return nil, false
	}
	b := &Bucket{Name: name, Path: p, Layout: detectLayout(p)}
	if url, ok := m.vcs.RemoteURL(p); ok {
		b.RemoteURL = url
	}
	return b, true
}

// List enumerates every bucket currently on disk, sorted by name.
func (m *Manager) List() ([]*Bucket, error) {
	names, err := xfs.Subdirs(m.dir)
	if err != nil {
		return nil, err
	}
	buckets := make([]*Bucket, 0, len(names))
	for _, name := range names {
		if b, ok := m.Get(name); ok {
			buckets = append(buckets, b)
		}
	}
	return buckets, nil
}

// Add clones url (or the known-bucket URL for name if url is empty) into
// buckets/<name> (spec.md §4.5).
func (m *Manager) Add(ctx context.Context, name, url string) error {
	if _, ok := m.Get(name); ok {
		return &cmn.ErrBucketAlreadyExists{Name: name}
	}
	if url == "" {
		known, ok := cmn.KnownBucketURL(name)
		if !ok {
			return &cmn.ErrBucketAddRemoteRequired{Name: name}
		}
		url = known
	}
	return m.vcs.Clone(ctx, url, m.path(name))
}

// Remove deletes bucket name's directory recursively.
func (m *Manager) Remove(name string) error {
	if _, ok := m.Get(name); !ok {
		return &cmn.ErrBucketNotFound{Name: name}
	}
	return os.RemoveAll(m.path(name))
}

// UpdateResult reports one bucket's outcome during Update.
type UpdateResult struct {
	Name string
	Err  error
}

// Update resets every VCS-backed bucket to its remote HEAD in parallel.
// Non-VCS buckets are skipped silently. Per-bucket failures are reported in
// the result slice and do not abort the overall operation (spec.md §4.5);
// the caller stamps config's last_update key when Updated() reports true.
// A nil sink discards the per-bucket events (spec.md §6).
func (m *Manager) Update(ctx context.Context, sink events.Sink) ([]UpdateResult, error) {
	if sink == nil {
		sink = events.Discard{}
	}
	buckets, err := m.List()
	if err != nil {
		return nil, err
	}
	results := make([]UpdateResult, len(buckets))
	var wg sync.WaitGroup
	for i, b := range buckets {
		if b.RemoteURL == "" {
			results[i] = UpdateResult{Name: b.Name}
			continue
		}
		wg.Add(1)
		go func(i int, b *Bucket) {
			defer wg.Done()
			sink.Send(events.BucketUpdateStarted{Name: b.Name})
			err := m.vcs.ResetToRemoteHEAD(ctx, b.Path)
			if err != nil {
				xlog.Warningf("bucket %s update failed: %v", b.Name, err)
				sink.Send(events.BucketUpdateFailed{Name: b.Name, Err: err})
			} else {
				sink.Send(events.BucketUpdateSuccessed{Name: b.Name})
			}
			results[i] = UpdateResult{Name: b.Name, Err: err}
		}(i, b)
	}
	wg.Wait()
	sink.Send(events.BucketUpdateFinished{})
	return results, nil
}

// Updated reports whether at least one result in results succeeded.
func Updated(results []UpdateResult) bool {
	for _, r := range results {
		if r.Err == nil {
			return true
		}
	}
	return false
}

// LastUpdateStamp formats now as the ISO-8601 UTC microsecond timestamp
// spec.md §4.5 stamps into the last_update config key.
func LastUpdateStamp(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04:05.000000Z")
}

// Manifests enumerates every manifest name available in b, walking a V3
// bucket's category directories in parallel. The names are returned sorted.
func (m *Manager) Manifests(b *Bucket) ([]string, error) {
	var (
		mu    sync.Mutex
		names []string
	)
	err := xfs.WalkJSONFiles(b.manifestsDir(), func(path string) error {
		mu.Lock()
		names = append(names, strings.TrimSuffix(filepath.Base(path), ".json"))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if b.Layout == cmn.LayoutV3 {
		// V3 nests one category directory per first-letter/#; walk each
		// category directory in parallel via errgroup, the teacher's
		// fs/walk.go pattern for fanning out directory work.
		categories, err := xfs.Subdirs(b.manifestsDir())
		if err != nil {
			return nil, err
		}
		names = names[:0]
		g, _ := errgroup.WithContext(context.Background())
		for _, cat := range categories {
			cat := cat
			g.Go(func() error {
				var found []string
				err := xfs.WalkJSONFiles(filepath.Join(b.manifestsDir(), cat), func(path string) error {
					found = append(found, strings.TrimSuffix(filepath.Base(path), ".json"))
					return nil
				})
				if err != nil {
					return err
				}
				mu.Lock()
				names = append(names, found...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	sort.Strings(names)
	return names, nil
}

// ParseManifest loads name's manifest from b, or returns (nil, false) if it
// doesn't exist. Parse failures are treated as "ignored, logged" per
// spec.md §7: they also return (nil, false) and the parse error is not
// passed on, matching the walk's tolerant-of-bad-entries contract; callers
// that need the parse error itself can call manifest.Parse directly with
// ManifestPath.
func (b *Bucket) ParseManifest(name string) (*manifest.Manifest, bool) {
	path := b.ManifestPath(name)
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	man, err := manifest.Parse(path)
	if err != nil {
		return nil, false
	}
	return man, true
}
