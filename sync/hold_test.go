package sync_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hok-pm/hok/manifest/installinfo"
	"github.com/hok-pm/hok/query"
	"github.com/hok-pm/hok/resolver"
	"github.com/hok-pm/hok/sync"
)

func TestHoldTogglesFlag(t *testing.T) {
	_, appsDir, _, mgr := newEnv(t)
	eng := query.NewEngine(mgr)
	planner := sync.NewPlanner(eng, resolver.New(eng, nil), appsDir, mgr)

	current := filepath.Join(appsDir, "foo", "current")
	if err := os.MkdirAll(current, 0o755); err != nil {
		t.Fatal(err)
	}
	infoPath := filepath.Join(current, "install.json")
	if err := installinfo.Save(infoPath, &installinfo.InstallInfo{Architecture: "64bit", Bucket: "main"}); err != nil {
		t.Fatal(err)
	}

	if err := planner.Hold("foo", true); err != nil {
		t.Fatalf("Hold: %v", err)
	}
	info, err := installinfo.Load(infoPath)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Hold {
		t.Fatal("expected Hold to be true after Hold(true)")
	}

	if err := planner.Hold("foo", false); err != nil {
		t.Fatalf("Hold: %v", err)
	}
	info, _ = installinfo.Load(infoPath)
	if info.Hold {
		t.Fatal("expected Hold to be false after Hold(false)")
	}
}

func TestHoldFailsWhenNotInstalled(t *testing.T) {
	_, appsDir, _, mgr := newEnv(t)
	eng := query.NewEngine(mgr)
	planner := sync.NewPlanner(eng, resolver.New(eng, nil), appsDir, mgr)

	if err := planner.Hold("nonexistent", true); err == nil {
		t.Fatal("expected ErrPackageHoldNotInstalled")
	}
}
