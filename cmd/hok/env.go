package main

import (
	"github.com/hok-pm/hok/bucket"
	"github.com/hok-pm/hok/cache"
	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/config"
	"github.com/hok-pm/hok/download"
	"github.com/hok-pm/hok/query"
	"github.com/hok-pm/hok/resolver"
	"github.com/hok-pm/hok/sync"
)

// env wires every long-lived collaborator a subcommand might need, built
// once in app.Before from the loaded config. This is the CLI's only
// construction site for core types - no subcommand builds its own.
type env struct {
	cfg      *config.Config
	buckets  *bucket.Manager
	engine   *query.Engine
	resolver *resolver.Resolver
	cache    *cache.Store
	planner  *sync.Planner
}

func newEnv(root string) (*env, error) {
	cfg, err := config.Load(cmn.DefaultConfigPath())
	if err != nil {
		cfg = config.Default()
	}
	if root != "" {
		cfg.RootPath = root
	}

	buckets := bucket.NewManager(cfg.BucketsDir(), bucket.GitVCS{})
	engine := query.NewEngine(buckets)
	res := resolver.New(engine, nil)
	store := cache.NewStore(cfg.CacheDir())
	planner := sync.NewPlanner(engine, res, cfg.AppsDir(), buckets)

	return &env{
		cfg:      cfg,
		buckets:  buckets,
		engine:   engine,
		resolver: res,
		cache:    store,
		planner:  planner,
	}, nil
}

// newExecutor builds a sync.Executor wired to sink, one per invocation
// since its Fetcher's connection cap and client are request-scoped.
func (e *env) newExecutor(sink *progressSink) *sync.Executor {
	client := cmn.NewClient(cmn.TransportArgs{Proxy: e.cfg.Proxy, Timeout: 0})
	fetcher := download.New(client, "hok/0.1.0", sink, 4)
	return sync.NewExecutor(fetcher, e.cache, e.cfg.AppsDir(), nil, sink)
}
