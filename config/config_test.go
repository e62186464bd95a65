package config_test

import (
	"path/filepath"
	"testing"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/config"
)

func TestLoadMissingYieldsDefault(t *testing.T) {
	dir := t.TempDir()
	c, err := config.Load(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.RootDir() == "" || c.CacheDir() == "" || c.GlobalDir() == "" {
		t.Fatalf("expected default paths to be populated, got %+v", c)
	}
}

func TestSetUnknownKeyFails(t *testing.T) {
	c := config.Default()
	err := c.Set("not_a_real_key", "x")
	if err == nil {
		t.Fatalf("expected InvalidConfigKey error")
	}
}

func TestSetBoolRejectsUnparseable(t *testing.T) {
	c := config.Default()
	if err := c.Set("use_lessmsi", "definitely-not-a-bool"); err == nil {
		t.Fatalf("expected InvalidConfigValue error")
	}
}

func TestSetBoolAccepted(t *testing.T) {
	c := config.Default()
	if err := c.Set("use_lessmsi", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok := c.Get("use_lessmsi")
	if !ok || v != "true" {
		t.Fatalf("expected use_lessmsi=true, got %q ok=%v", v, ok)
	}
}

func TestProxyClearSentinels(t *testing.T) {
	for _, sentinel := range []string{"none", "null", "", "NONE"} {
		c := config.Default()
		if err := c.Set("proxy", "http://10.0.0.1:8080"); err != nil {
			t.Fatalf("Set proxy: %v", err)
		}
		if err := c.Set("proxy", sentinel); err != nil {
			t.Fatalf("Set proxy clear %q: %v", sentinel, err)
		}
		if v, _ := c.Get("proxy"); v != "" {
			t.Fatalf("sentinel %q did not clear proxy, got %q", sentinel, v)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")
	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Set("gh_token", "abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v, _ := reloaded.Get("gh_token"); v != "abc123" {
		t.Fatalf("expected gh_token=abc123, got %q", v)
	}
}

func TestConfigInUseBlocksWriteWhileBorrowed(t *testing.T) {
	c := config.Default()
	release := c.BorrowRead()
	defer release()

	if err := c.Set("gh_token", "x"); err == nil {
		t.Fatalf("expected ErrConfigInUse while a read view is alive")
	}
	if err := c.Save(); err == nil {
		t.Fatalf("expected ErrConfigInUse on Save while a read view is alive")
	}
}

func TestUnsetRestoresDefaultPath(t *testing.T) {
	c := config.Default()
	if err := c.Set("root_path", "C:\\custom\\scoop"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Unset("root_path"); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if v, _ := c.Get("root_path"); v != cmn.DefaultRootPath() {
		t.Fatalf("expected root_path restored to default, got %q", v)
	}
}
