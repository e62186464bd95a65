package resolver_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/hok-pm/hok/bucket"
	"github.com/hok-pm/hok/query"
	"github.com/hok-pm/hok/resolver"
)

func sha256zeros() string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

func writeManifest(dir, name, depends string) {
	dependsField := ""
	if depends != "" {
		dependsField = `"depends": "` + depends + `",`
	}
	body := `{
		"version": "1.0",
		"url": "https://example.com/a.exe",
		"hash": "sha256:` + sha256zeros() + `",
		` + dependsField + `
		"bin": "a.exe"
	}`
	Expect(os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644)).To(Succeed())
}

func newManager(setup func(dir string)) *bucket.Manager {
	root, err := os.MkdirTemp("", "resolver-bucket")
	Expect(err).NotTo(HaveOccurred())
	mainDir := filepath.Join(root, "main")
	Expect(os.MkdirAll(mainDir, 0o755)).To(Succeed())
	setup(mainDir)
	return bucket.NewManager(root, nil)
}

var _ = AfterSuite(func() {
	matches, _ := filepath.Glob(filepath.Join(os.TempDir(), "resolver-bucket*"))
	for _, m := range matches {
		os.RemoveAll(m)
	}
})

var _ = Describe("Resolve", func() {
	// S1: foo depends on bar -> install order is [bar, foo].
	It("orders dependencies before dependents", func() {
		mgr := newManager(func(dir string) {
			writeManifest(dir, "bar", "")
			writeManifest(dir, "foo", "bar")
		})
		eng := query.NewEngine(mgr)

		foo, err := eng.ExactMatch("", "foo")
		Expect(err).NotTo(HaveOccurred())
		Expect(foo).To(HaveLen(1))

		r := resolver.New(eng, nil)
		order, err := r.Resolve(foo)
		Expect(err).NotTo(HaveOccurred())

		names := make([]string, len(order))
		for i, c := range order {
			names[i] = c.Name
		}
		Expect(names).To(Equal([]string{"bar", "foo"}))
	})

	It("aborts on cyclic dependencies", func() {
		mgr := newManager(func(dir string) {
			writeManifest(dir, "a", "b")
			writeManifest(dir, "b", "a")
		})
		eng := query.NewEngine(mgr)

		a, err := eng.ExactMatch("", "a")
		Expect(err).NotTo(HaveOccurred())

		r := resolver.New(eng, nil)
		_, err = r.Resolve(a)
		Expect(err).To(HaveOccurred())
	})

	It("fails with PackageNotFound when a dependency cannot be located", func() {
		mgr := newManager(func(dir string) {
			writeManifest(dir, "foo", "missing-dep")
		})
		eng := query.NewEngine(mgr)

		foo, err := eng.ExactMatch("", "foo")
		Expect(err).NotTo(HaveOccurred())

		r := resolver.New(eng, nil)
		_, err = r.Resolve(foo)
		Expect(err).To(HaveOccurred())
	})
})

// S6: a held dependency scheduled for cascade removal fails unless
// escapeHold is set.
var _ = Describe("Cascade", func() {
	It("schedules a dependency with no remaining dependent", func() {
		installed := map[string]resolver.InstallRecord{
			"foo": {Dependencies: []string{"bar"}},
			"bar": {},
		}
		removed, err := resolver.Cascade(installed, []string{"foo"}, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal([]string{"bar", "foo"}))
	})

	It("keeps a dependency that still has another dependent", func() {
		installed := map[string]resolver.InstallRecord{
			"foo": {Dependencies: []string{"bar"}},
			"baz": {Dependencies: []string{"bar"}},
			"bar": {},
		}
		removed, err := resolver.Cascade(installed, []string{"foo"}, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal([]string{"foo"}))
	})

	It("fails when a cascade-removed dependency is held", func() {
		installed := map[string]resolver.InstallRecord{
			"foo": {Dependencies: []string{"bar"}},
			"bar": {Held: true},
		}
		_, err := resolver.Cascade(installed, []string{"foo"}, false)
		Expect(err).To(HaveOccurred())
	})

	It("honors EscapeHold to cascade-remove a held dependency anyway", func() {
		installed := map[string]resolver.InstallRecord{
			"foo": {Dependencies: []string{"bar"}},
			"bar": {Held: true},
		}
		removed, err := resolver.Cascade(installed, []string{"foo"}, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal([]string{"bar", "foo"}))
	})
})
