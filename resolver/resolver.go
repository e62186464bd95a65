// Package resolver implements C10: dependency-closure expansion ahead of an
// install/upgrade, and cascade-removal expansion ahead of a removal. Resolve
// builds on dag.Graph[string] (C2) for ordering and cycle detection, and on
// query.Engine (C9) for exact-match dependency lookups with spec.md §4.7
// tie-breaking; Cascade is a plain breadth-first walk over the installed
// map and uses neither.
package resolver

import (
	"sort"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/dag"
	"github.com/hok-pm/hok/query"
)

// InstalledLookup reports the bucket a package is currently installed from,
// if any - the signature query.TieBreak expects, threaded through here so
// Resolve can prefer an already-installed dependency candidate.
type InstalledLookup func(name string) (bucket string, ok bool)

// Resolver expands a seed package set into its full dependency closure.
type Resolver struct {
	engine    *query.Engine
	installed InstalledLookup
}

// New returns a Resolver that looks up dependencies through engine,
// preferring already-installed candidates per installed.
func New(engine *query.Engine, installed InstalledLookup) *Resolver {
	return &Resolver{engine: engine, installed: installed}
}

// Resolve expands seeds (already-resolved candidates, one per user query)
// into the full dependency closure, in install order: dependencies precede
// their dependents (spec.md §4.8).
//
// dag.Graph's Pop/Step drain zero-remaining-dependency nodes first, so a
// leaf dependency is emitted in the earliest layer already - WalkFlatten's
// natural order already satisfies "dependencies precede dependents" here
// (confirmed by dag's own TestAcyclicSoundness), so unlike the "walk_flatten
// then reverse" phrasing this component's design notes describe, no
// reverse is applied: reversing dag's own already-correct order would
// invert it.
func (r *Resolver) Resolve(seeds []query.Candidate) ([]query.Candidate, error) {
	graph := dag.New[string]()
	byName := make(map[string]query.Candidate, len(seeds))
	var queue []query.Candidate

	for _, c := range seeds {
		if _, ok := byName[c.Name]; ok {
			continue
		}
		byName[c.Name] = c
		queue = append(queue, c)
		graph.RegisterNode(c.Name)
	}

	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]

		deps := pkg.Manifest.Dependencies()
		if len(deps) == 0 {
			continue
		}

		for _, depQuery := range deps {
			q := query.Parse(depQuery)
			candidates, err := r.engine.ExactMatch(q.Bucket, q.Pattern)
			if err != nil {
				return nil, err
			}
			winner, rest := query.TieBreak(candidates, r.installed)
			if winner == nil {
				if len(rest) == 0 {
					return nil, &cmn.ErrPackageNotFound{Query: depQuery}
				}
				return nil, &cmn.ErrPackageMultipleCandidates{Name: q.Pattern}
			}

			graph.RegisterDep(pkg.Name, winner.Name)

			if _, ok := byName[winner.Name]; !ok {
				byName[winner.Name] = *winner
				queue = append(queue, *winner)
			}
		}

		if err := graph.Check(); err != nil {
			return nil, toCyclicErr(err)
		}
	}

	order, err := graph.WalkFlatten()
	if err != nil {
		return nil, toCyclicErr(err)
	}

	out := make([]query.Candidate, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

func toCyclicErr(err error) error {
	cyc, ok := err.(*dag.ErrCyclicDependency[string])
	if !ok {
		return err
	}
	edges := make([]cmn.Edge, len(cyc.Edges))
	for i, e := range cyc.Edges {
		edges[i] = cmn.Edge{From: e.From, To: e.To}
	}
	return &cmn.ErrCyclicDependency{Edges: edges}
}

// InstallRecord is one currently-installed package's identity as Cascade
// needs it: its derived dependency set and whether it is held.
type InstallRecord struct {
	Dependencies []string
	Held         bool
}

// Cascade expands toRemove (package names) to include any dependency that
// would otherwise be left with no remaining dependent, per spec.md §4.8.
// A held dependency that would be cascade-removed aborts with
// ErrPackageCascadeRemoveHold unless escapeHold is set. The result is
// sorted for determinism; it is not the original spec's contract, just a
// convenience for callers and tests.
func Cascade(installed map[string]InstallRecord, toRemove []string, escapeHold bool) ([]string, error) {
	removeSet := make(map[string]bool, len(toRemove))
	queue := make([]string, 0, len(toRemove))
	for _, n := range toRemove {
		if !removeSet[n] {
			removeSet[n] = true
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		entry, ok := installed[name]
		if !ok {
			continue
		}
		for _, dep := range entry.Dependencies {
			depEntry, ok := installed[dep]
			if !ok || removeSet[dep] {
				continue
			}
			if hasRemainingDependent(installed, dep, removeSet) {
				continue
			}
			if depEntry.Held && !escapeHold {
				return nil, &cmn.ErrPackageCascadeRemoveHold{Name: dep}
			}
			removeSet[dep] = true
			queue = append(queue, dep)
		}
	}

	result := make([]string, 0, len(removeSet))
	for n := range removeSet {
		result = append(result, n)
	}
	sort.Strings(result)
	return result, nil
}

// hasRemainingDependent reports whether some installed package other than
// dep itself, and not itself scheduled for removal, still depends on dep.
func hasRemainingDependent(installed map[string]InstallRecord, dep string, removeSet map[string]bool) bool {
	for name, entry := range installed {
		if name == dep || removeSet[name] {
			continue
		}
		for _, d := range entry.Dependencies {
			if d == dep {
				return true
			}
		}
	}
	return false
}
