package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/ypm/internal/models"
)

const toolsList = `[Provides]
alpha=1.0
beta
gamma=1.0
delta=3.0

[alpha]
Version=1.0
amd64=amd64/alpha.tar.gz
noarch=noarch/alpha.tar.gz
win32=win32/alpha.tar.gz

[beta]
noarch=noarch/beta.tar.gz

[gamma]
Version=1.0

[delta]
Version=3.0
win32=win32/delta.tar.gz
arm64=arm64/delta.tar.gz

[Sources]
Source1=http://mirror.example/extra
`

func TestCollectSourcesStopsAtGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.ini")
	content := "[Sources]\nSource1=http://one.example/\nSource2=http://two.example\nSource4=http://four.example\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}

	sources, err := CollectSources(path)
	if err != nil {
		t.Fatalf("CollectSources failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d: %v", len(sources), sources)
	}
	if sources[0].Root != "http://one.example" || sources[1].Root != "http://two.example" {
		t.Errorf("unexpected sources: %v", sources)
	}
}

func TestCollectSourcesMissingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.ini")
	if err := os.WriteFile(path, []byte("[Installed]\nfoo=1\n"), 0644); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}

	sources, err := CollectSources(path)
	if err != nil {
		t.Fatalf("CollectSources failed: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("expected no sources, got %v", sources)
	}

	sources, err = CollectSources(filepath.Join(t.TempDir(), "missing.ini"))
	if err != nil {
		t.Fatalf("CollectSources on missing file failed: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("expected no sources, got %v", sources)
	}
}

func TestCollectPackagesExpandsArchitectures(t *testing.T) {
	dir := writeList(t, filepath.Join(t.TempDir(), "repo"), toolsList)
	source := NewSource(dir)

	c := NewCollector(&passthroughMaterializer{})
	packages, sources, err := c.CollectPackages(context.Background(), source)
	if err != nil {
		t.Fatalf("CollectPackages failed: %v", err)
	}

	want := []struct{ name, arch string }{
		{"alpha", models.ArchNoarch},
		{"alpha", models.ArchWin32},
		{"alpha", models.ArchAmd64},
		{"delta", models.ArchWin32},
	}
	if len(packages) != len(want) {
		t.Fatalf("expected %d packages, got %d: %v", len(want), len(packages), packages)
	}
	for i, w := range want {
		if packages[i].Name != w.name || packages[i].Architecture != w.arch {
			t.Errorf("package %d = %s/%s, want %s/%s", i, packages[i].Name, packages[i].Architecture, w.name, w.arch)
		}
	}

	wantLocation := filepath.Join(dir, "noarch/alpha.tar.gz")
	if packages[0].InstallLocation != wantLocation {
		t.Errorf("InstallLocation = %q, want %q", packages[0].InstallLocation, wantLocation)
	}
	if packages[3].Version != "3.0" {
		t.Errorf("delta version = %q", packages[3].Version)
	}

	if len(sources) != 1 || sources[0].Root != "http://mirror.example/extra" {
		t.Errorf("unexpected sources: %v", sources)
	}
}

func TestCollectPackagesVersionWithoutArchitectures(t *testing.T) {
	dir := writeList(t, filepath.Join(t.TempDir(), "repo"), "[Provides]\nonly=1.0\n[only]\nVersion=1.0\n")

	c := NewCollector(&passthroughMaterializer{})
	packages, _, err := c.CollectPackages(context.Background(), NewSource(dir))
	if err != nil {
		t.Fatalf("CollectPackages failed: %v", err)
	}
	if len(packages) != 0 {
		t.Errorf("expected no packages, got %v", packages)
	}
}

func TestCollectPackagesIgnoresBareKeys(t *testing.T) {
	list := "[Provides]\nfoo\nbar\n[foo]\nVersion=1.0\nnoarch\n[bar]\nVersion\nwin32=win32/bar.tar.gz\n[Sources]\nSource1\n"
	dir := writeList(t, filepath.Join(t.TempDir(), "repo"), list)

	c := NewCollector(&passthroughMaterializer{})
	packages, sources, err := c.CollectPackages(context.Background(), NewSource(dir))
	if err != nil {
		t.Fatalf("CollectPackages failed: %v", err)
	}
	if len(packages) != 0 {
		t.Errorf("expected no packages, got %v", packages)
	}
	if len(sources) != 0 {
		t.Errorf("expected no sources, got %v", sources)
	}
}

func TestCollectPackagesRemovesTemporaryCopy(t *testing.T) {
	dir := writeList(t, filepath.Join(t.TempDir(), "repo"), toolsList)
	m := &tempMaterializer{dir: t.TempDir()}

	c := NewCollector(m)
	if _, _, err := c.CollectPackages(context.Background(), NewSource(dir)); err != nil {
		t.Fatalf("CollectPackages failed: %v", err)
	}

	if len(m.temps) != 1 {
		t.Fatalf("expected one temporary copy, got %d", len(m.temps))
	}
	if _, err := os.Stat(m.temps[0]); !os.IsNotExist(err) {
		t.Errorf("temporary copy %s was not removed", m.temps[0])
	}
}

// dirMaterializer hands out an empty temporary directory, which cannot be
// parsed as a package list
type dirMaterializer struct {
	parent string
	made   string
}

func (m *dirMaterializer) LocalCopy(ctx context.Context, location string) (string, bool, error) {
	dir, err := os.MkdirTemp(m.parent, "broken-")
	if err != nil {
		return "", false, err
	}
	m.made = dir
	return dir, true, nil
}

func TestCollectPackagesRemovesTemporaryCopyOnFailure(t *testing.T) {
	m := &dirMaterializer{parent: t.TempDir()}

	c := NewCollector(m)
	_, _, err := c.CollectPackages(context.Background(), NewSource("http://example.com"))
	if err == nil {
		t.Fatalf("expected failure reading a directory as a package list")
	}
	if !models.IsErrorType(err, models.ErrPackageList) {
		t.Errorf("expected PackageList error, got %v", err)
	}
	if _, statErr := os.Stat(m.made); !os.IsNotExist(statErr) {
		t.Errorf("temporary copy %s was not removed", m.made)
	}
}

func TestCollectPackagesMaterializeFailure(t *testing.T) {
	c := NewCollector(&passthroughMaterializer{})
	_, _, err := c.CollectPackages(context.Background(), NewSource(filepath.Join(t.TempDir(), "nowhere")))
	if !models.IsErrorType(err, models.ErrMaterialize) {
		t.Errorf("expected Materialize error, got %v", err)
	}
}
