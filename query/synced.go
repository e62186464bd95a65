package query

import (
	"regexp"
	"sync"

	"github.com/tidwall/buntdb"
	"golang.org/x/sync/errgroup"

	"github.com/hok-pm/hok/bucket"
)

// Engine answers search queries against the buckets known to a
// bucket.Manager.
type Engine struct {
	buckets *bucket.Manager
}

// NewEngine returns an Engine backed by buckets.
func NewEngine(buckets *bucket.Manager) *Engine {
	return &Engine{buckets: buckets}
}

// QuerySynced walks every matching bucket's manifest list in parallel and
// returns every Candidate satisfying raw under opts (spec.md §4.7
// "synced-package query"). When neither Binary nor Description is
// requested, an in-memory buntdb index of manifest names pre-filters the
// set before any manifest is parsed - an optimization, not a contract
// change, grounded on the teacher's own buntdb-backed metadata store
// (dbdriver/bunt.go).
func (e *Engine) QuerySynced(raw string, opts Options) ([]Candidate, error) {
	q := Parse(raw)
	re, err := q.Matcher(opts)
	if err != nil {
		return nil, err
	}

	targets, err := e.targetBuckets(q.Bucket)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out []Candidate
	)
	g := new(errgroup.Group)
	for _, b := range targets {
		b := b
		g.Go(func() error {
			names, err := e.buckets.Manifests(b)
			if err != nil {
				return err
			}

			if !opts.Binary && !opts.Description {
				names, err = prefilterNames(names, re)
				if err != nil {
					return err
				}
			}

			var found []Candidate
			for _, name := range names {
				man, ok := b.ParseManifest(name)
				if !ok {
					continue
				}
				if !matches(name, man, re, opts) {
					continue
				}
				found = append(found, Candidate{Bucket: b.Name, Name: name, Manifest: man})
			}

			mu.Lock()
			out = append(out, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExactMatch returns every Candidate across the target buckets whose
// manifest name is exactly name (spec.md §4.8's dependency lookup and
// §4.7's tie-breaking both start from an exact-match query).
func (e *Engine) ExactMatch(bucketName, name string) ([]Candidate, error) {
	targets, err := e.targetBuckets(bucketName)
	if err != nil {
		return nil, err
	}
	var out []Candidate
	for _, b := range targets {
		if man, ok := b.ParseManifest(name); ok {
			out = append(out, Candidate{Bucket: b.Name, Name: name, Manifest: man})
		}
	}
	return out, nil
}

func (e *Engine) targetBuckets(bucketName string) ([]*bucket.Bucket, error) {
	if bucketName != "" {
		b, ok := e.buckets.Get(bucketName)
		if !ok {
			return nil, nil
		}
		return []*bucket.Bucket{b}, nil
	}
	return e.buckets.List()
}

// prefilterNames narrows names to those matching re, using an ephemeral
// in-memory buntdb index rather than scanning the slice directly - the
// index exists only for the duration of this call (spec.md §4.1's
// "ephemeral, rebuildable" query index; the filesystem remains the single
// source of truth).
func prefilterNames(names []string, re *regexp.Regexp) ([]string, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	err = db.Update(func(tx *buntdb.Tx) error {
		for _, name := range names {
			if _, _, err := tx.Set(name, name, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var filtered []string
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("*", func(key, _ string) bool {
			if re.MatchString(key) {
				filtered = append(filtered, key)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return filtered, nil
}

// TieBreak applies spec.md §4.7's rule when ExactMatch / QuerySynced
// returns more than one candidate for an unprefixed query: a candidate
// already installed from a matching bucket wins outright; otherwise the
// caller must disambiguate (prompt, or fail with PackageMultipleCandidates)
// and gets the full candidate list back to do so.
func TieBreak(candidates []Candidate, installedBucket func(name string) (string, bool)) (*Candidate, []Candidate) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) == 1 {
		c := candidates[0]
		return &c, nil
	}
	if installedBucket != nil {
		for _, c := range candidates {
			if b, ok := installedBucket(c.Name); ok && b == c.Bucket {
				c := c
				return &c, nil
			}
		}
	}
	return nil, candidates
}
