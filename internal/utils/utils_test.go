package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/ypm/internal/models"
)

func TestCompressionStreams(t *testing.T) {
	payload := bytes.Repeat([]byte("ypm package payload\n"), 64)

	for _, kind := range []string{"", "gz", "xz", "zst"} {
		var buf bytes.Buffer
		w, err := Compress(&buf, kind)
		if err != nil {
			t.Fatalf("Compress(%q) failed: %v", kind, err)
		}
		if _, err := w.Write(payload); err != nil {
			t.Fatalf("write %q failed: %v", kind, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close %q failed: %v", kind, err)
		}

		r, err := Decompress(&buf, kind)
		if err != nil {
			t.Fatalf("Decompress(%q) failed: %v", kind, err)
		}
		got, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("read %q failed: %v", kind, err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("%q: payload mismatch", kind)
		}
	}

	if _, err := Decompress(bytes.NewReader(nil), "lzma"); err == nil {
		t.Errorf("expected error for unsupported compression")
	}
}

func TestSafeJoin(t *testing.T) {
	root := t.TempDir()

	good, err := SafeJoin(root, "bin/tool")
	if err != nil {
		t.Fatalf("SafeJoin failed: %v", err)
	}
	if good != filepath.Join(root, "bin", "tool") {
		t.Errorf("SafeJoin = %s", good)
	}

	for _, name := range []string{"../escape", "bin/../../escape"} {
		if _, err := SafeJoin(root, name); err == nil {
			t.Errorf("SafeJoin(%q) should fail", name)
		}
	}
}

func TestCalculateChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	sum, err := CalculateChecksums(path)
	if err != nil {
		t.Fatalf("CalculateChecksums failed: %v", err)
	}
	if sum.Size != 3 || sum.SHA256 != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("unexpected checksum %+v", sum)
	}
}

func TestDetectConflicts(t *testing.T) {
	existing := []models.Archive{{Name: "a", Version: "1", Architecture: "noarch"}}
	incoming := []models.Archive{
		{Name: "A", Version: "1", Architecture: "NOARCH"},
		{Name: "b", Version: "1", Architecture: "win32"},
		{Name: "b", Version: "1", Architecture: "win32", Filename: "dup"},
	}

	conflicts := DetectConflicts(existing, incoming)
	if len(conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %v", conflicts)
	}
	if conflicts[1].Filename != "dup" {
		t.Errorf("later duplicate should be reported, got %+v", conflicts[1])
	}
}

func TestCheckSymlinks(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	if err := os.MkdirAll(filepath.Join(root, "lib64"), 0755); err != nil {
		t.Fatalf("Failed to create root: %v", err)
	}

	links := map[string]string{
		"lib":     "lib64",
		"up":      "..",
		"chain/t": "../",
	}
	for name, target := range links {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.Symlink(target, path); err != nil {
			t.Fatalf("Failed to create symlink: %v", err)
		}
	}
	if err := os.Symlink("t/..", filepath.Join(root, "chain", "u")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"", false},
		{"usr/share/doc", false},
		{"lib/libfoo.so", false},
		{"chain/t/lib", false},
		{"up/evil", true},
		{"chain/u/evil", true},
	}
	for _, tt := range tests {
		err := CheckSymlinks(root, filepath.Join(root, tt.path))
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckSymlinks(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
