package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// passthroughMaterializer serves local package lists in place
type passthroughMaterializer struct {
	requested []string
}

func (m *passthroughMaterializer) LocalCopy(ctx context.Context, location string) (string, bool, error) {
	m.requested = append(m.requested, location)
	if _, err := os.Stat(location); err != nil {
		return "", false, err
	}
	return location, false, nil
}

// tempMaterializer copies package lists into temporary files
type tempMaterializer struct {
	dir   string
	temps []string
}

func (m *tempMaterializer) LocalCopy(ctx context.Context, location string) (string, bool, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return "", false, err
	}
	f, err := os.CreateTemp(m.dir, "pkglist-*")
	if err != nil {
		return "", false, err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", false, err
	}
	m.temps = append(m.temps, f.Name())
	return f.Name(), true, nil
}

// writeList writes a pkglist.ini into dir and returns dir
func writeList(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pkglist.ini"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write package list: %v", err)
	}
	return dir
}

// sourcesSection renders a Sources section for roots
func sourcesSection(roots ...string) string {
	var b strings.Builder
	b.WriteString("[Sources]\n")
	for i, r := range roots {
		fmt.Fprintf(&b, "Source%d=%s\n", i+1, r)
	}
	return b.String()
}

type installCall struct {
	location string
}

// recordingInstaller records install calls and fails for locations in fail
type recordingInstaller struct {
	calls []installCall
	fail  map[string]bool
}

func (i *recordingInstaller) Install(ctx context.Context, location string) error {
	i.calls = append(i.calls, installCall{location: location})
	if i.fail[location] {
		return errors.New("install failed")
	}
	return nil
}
