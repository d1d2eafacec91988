package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetect(t *testing.T) {
	tarHeader := make([]byte, 512)
	copy(tarHeader[257:], "ustar")

	tests := []struct {
		name     string
		header   []byte
		basename string
		want     PackageType
	}{
		{"rpm magic", []byte{0xED, 0xAB, 0xEE, 0xDB, 0x03}, "blob", TypeRpm},
		{"rpm extension", []byte("x"), "tool-1.0.x86_64.rpm", TypeRpm},
		{"zstd magic", []byte{0x28, 0xB5, 0x2F, 0xFD}, "blob", TypeTarZst},
		{"xz magic", []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, "blob", TypeTarXz},
		{"gzip magic", []byte{0x1F, 0x8B, 0x08}, "blob", TypeTarGz},
		{"tgz extension", []byte("x"), "tool.tgz", TypeTarGz},
		{"plain tar", tarHeader, "blob", TypeTar},
		{"tar extension", []byte("x"), "tool.tar", TypeTar},
		{"ini file", []byte("[Provides]\n"), "pkglist.ini", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect(tt.header, tt.basename); got != tt.want {
				t.Errorf("detect = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScanFindsArchives(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"a/tool.tar.gz": {0x1F, 0x8B, 0x08, 0x00},
		"b/other.rpm":   {0xED, 0xAB, 0xEE, 0xDB},
		"b/readme.txt":  []byte("hello"),
		"pkglist.ini":   []byte("[Provides]\n"),
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	found, err := NewFileSystemScanner().Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 archives, got %d: %v", len(found), found)
	}
	if found[0].Type != TypeTarGz || found[1].Type != TypeRpm {
		t.Errorf("unexpected types: %s, %s", found[0].Type, found[1].Type)
	}
}

func TestScanSkipsExcludedAndHidden(t *testing.T) {
	dir := t.TempDir()
	gz := []byte{0x1F, 0x8B, 0x08, 0x00}
	for _, name := range []string{
		"z/last.tar.gz",
		"a/first.tar.gz",
		"out/noarch/copy.tar.gz",
		".cache/hidden.tar.gz",
		"a/.partial.tar.gz",
	} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, gz, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	found, err := NewFileSystemScanner(filepath.Join(dir, "out"), "").Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var got []string
	for _, p := range found {
		rel, err := filepath.Rel(dir, p.Path)
		if err != nil {
			t.Fatalf("Rel failed: %v", err)
		}
		got = append(got, filepath.ToSlash(rel))
	}
	want := []string{"a/first.tar.gz", "z/last.tar.gz"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Scan = %v, want %v", got, want)
	}
}
