// Package sync (imported as syncer by callers that need the name "sync"
// for the standard library package) implements C12: the install / upgrade
// / replace / remove orchestrator. Planning partitions a resolved
// dependency closure against what's already installed; execution drives
// the download pipeline (C11), the hasher (C1), and the on-disk commit
// sequence, reporting every step through an events.Sink and pausing only
// at the confirmation prompt (spec.md §4.10, §5).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package sync

import (
	"github.com/hok-pm/hok/bucket"
	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/query"
	"github.com/hok-pm/hok/resolver"
)

// Action classifies one package within a Transaction.
type Action int

const (
	ActionInstall Action = iota
	ActionUpgrade
	ActionReplace
)

func (a Action) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionUpgrade:
		return "upgrade"
	case ActionReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Item is one package scheduled for install/upgrade/replace, carrying the
// candidate to fetch and (for upgrade/replace) the installed state it
// supersedes.
type Item struct {
	Action    Action
	Candidate query.Candidate
	Installed *query.Installed // nil for ActionInstall
}

// Transaction is a fully planned install/upgrade/replace/remove, ready for
// confirmation (spec.md §4.10, §6 PromptTransactionNeedConfirm).
type Transaction struct {
	Items  []Item
	Remove []string // names scheduled for removal, already cascade-expanded
}

// PlanOptions mirrors the per-call switches spec.md §4.10 names.
type PlanOptions struct {
	NoDependencies   bool
	EscapeHold       bool
	NoDependentCheck bool
	Cascade          bool
}

// Planner resolves queries into a Transaction.
type Planner struct {
	engine   *query.Engine
	resolver *resolver.Resolver
	appsDir  string
	buckets  *bucket.Manager
}

// NewPlanner returns a Planner wired to engine/resolver/appsDir/buckets.
func NewPlanner(engine *query.Engine, res *resolver.Resolver, appsDir string, buckets *bucket.Manager) *Planner {
	return &Planner{engine: engine, resolver: res, appsDir: appsDir, buckets: buckets}
}

func (p *Planner) installedLookup() (map[string]query.Installed, InstalledLookup) {
	installed, _ := query.QueryInstalled(p.appsDir, "", query.Options{}, p.buckets)
	byName := make(map[string]query.Installed, len(installed))
	for _, ins := range installed {
		byName[ins.Name] = ins
	}
	lookup := func(name string) (string, bool) {
		ins, ok := byName[name]
		if !ok || ins.Info.IsIsolated() {
			return "", false
		}
		return ins.Info.Bucket, true
	}
	return byName, lookup
}

// InstalledLookup reports the bucket a package is installed from, if any.
type InstalledLookup = resolver.InstalledLookup

// PlanInstall resolves queries (raw search strings, each expected to name
// exactly one package via tie-breaking) into a Transaction, expanding
// dependencies unless opts.NoDependencies and partitioning per spec.md
// §4.10 step 3.
func (p *Planner) PlanInstall(queries []string, opts PlanOptions) (*Transaction, error) {
	installedByName, lookup := p.installedLookup()

	seeds := make([]query.Candidate, 0, len(queries))
	for _, raw := range queries {
		q := query.Parse(raw)
		candidates, err := p.engine.ExactMatch(q.Bucket, q.Pattern)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			candidates, err = p.engine.QuerySynced(raw, query.Options{Explicit: true})
			if err != nil {
				return nil, err
			}
		}
		winner, rest := query.TieBreak(candidates, lookup)
		if winner == nil {
			if len(rest) == 0 {
				return nil, &cmn.ErrPackageNotFound{Query: raw}
			}
			return nil, &cmn.ErrPackageMultipleCandidates{Name: q.Pattern}
		}
		seeds = append(seeds, *winner)
	}

	closure := seeds
	if !opts.NoDependencies {
		var err error
		closure, err = p.resolver.Resolve(seeds)
		if err != nil {
			return nil, err
		}
	}

	tx := &Transaction{}
	for _, c := range closure {
		ins, isInstalled := installedByName[c.Name]
		switch {
		case !isInstalled:
			tx.Items = append(tx.Items, Item{Action: ActionInstall, Candidate: c})
		case ins.Info.IsIsolated():
			tx.Items = append(tx.Items, Item{Action: ActionReplace, Candidate: c, Installed: &ins})
		case ins.Info.Bucket == c.Bucket:
			if cmn.CompareVersions(ins.Manifest.Version(), c.Manifest.Version()) >= 0 {
				continue // already current; nothing to do (spec.md §4.10: "only if upgradable_version is Some")
			}
			if ins.Info.Hold && !opts.EscapeHold {
				continue // held packages are excluded from upgrade unless EscapeHold
			}
			tx.Items = append(tx.Items, Item{Action: ActionUpgrade, Candidate: c, Installed: &ins})
		default:
			if ins.Info.Hold && !opts.EscapeHold {
				continue // held packages are excluded from replace unless EscapeHold
			}
			tx.Items = append(tx.Items, Item{Action: ActionReplace, Candidate: c, Installed: &ins})
		}
	}
	return tx, nil
}

// PlanRemove resolves names against installed packages, runs the
// dependent-check unless opts.NoDependentCheck, and cascade-expands per
// opts.Cascade (spec.md §4.10 step 4).
func (p *Planner) PlanRemove(names []string, opts PlanOptions) (*Transaction, error) {
	installedByName, _ := p.installedLookup()

	for _, name := range names {
		if _, ok := installedByName[name]; !ok {
			return nil, &cmn.ErrPackageNotFound{Query: name}
		}
	}

	if !opts.NoDependentCheck {
		if pairs := findDependents(installedByName, names); len(pairs) > 0 {
			return nil, &cmn.ErrPackageDependentFound{Pairs: pairs}
		}
	}

	toRemove := names
	if opts.Cascade {
		records := make(map[string]resolver.InstallRecord, len(installedByName))
		for name, ins := range installedByName {
			records[name] = resolver.InstallRecord{
				Dependencies: ins.Manifest.Dependencies(),
				Held:         ins.Info.Hold,
			}
		}
		expanded, err := resolver.Cascade(records, names, opts.EscapeHold)
		if err != nil {
			return nil, err
		}
		toRemove = expanded
	}
	return &Transaction{Remove: toRemove}, nil
}

// findDependents reports every (dependent, dependency) pair among
// installed where dependent is NOT scheduled for removal itself but
// depends on a package that IS in toRemove (spec.md §4.10 step 4,
// §7 PackageDependentFound).
func findDependents(installed map[string]query.Installed, toRemove []string) []cmn.DependentPair {
	removing := make(map[string]bool, len(toRemove))
	for _, n := range toRemove {
		removing[n] = true
	}
	var pairs []cmn.DependentPair
	for name, ins := range installed {
		if removing[name] {
			continue
		}
		for _, dep := range ins.Manifest.Dependencies() {
			if removing[dep] {
				pairs = append(pairs, cmn.DependentPair{Dependent: name, Dependency: dep})
			}
		}
	}
	return pairs
}

// Ident renders the display identity of a Candidate for events and
// install-info (spec.md §6): "bucket/name".
func Ident(c query.Candidate) string { return c.Bucket + "/" + c.Name }
