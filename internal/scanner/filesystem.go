package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct {
	// exclude holds cleaned directories that are never descended into
	exclude []string
}

// NewFileSystemScanner creates a scanner skipping the given directories.
// Pass the output directory of a source so that rescanning an input tree
// containing it does not list its archives twice.
func NewFileSystemScanner(exclude ...string) *FileSystemScanner {
	s := &FileSystemScanner{}
	for _, dir := range exclude {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		s.exclude = append(s.exclude, filepath.Clean(dir))
	}
	return s
}

// Scan recursively scans dir for package archives. Results come in lexical
// path order; hidden files and directories are skipped.
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedPackage, error) {
	var packages []ScannedPackage

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != dir && s.excluded(path) {
				logrus.Debugf("Skipping excluded directory %s", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		pkgType, err := s.DetectType(path)
		if err != nil {
			logrus.Warnf("Failed to detect type for %s: %v", path, err)
			return nil
		}
		if pkgType == TypeUnknown {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		logrus.Debugf("Found %s package: %s", pkgType, path)
		packages = append(packages, ScannedPackage{
			Path: path,
			Type: pkgType,
			Size: info.Size(),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	logrus.Infof("Found %d packages in %s", len(packages), dir)
	return packages, nil
}

func (s *FileSystemScanner) excluded(path string) bool {
	if len(s.exclude) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range s.exclude {
		if abs == dir {
			return true
		}
	}
	return false
}

// DetectType determines the package type of a file
func (s *FileSystemScanner) DetectType(path string) (PackageType, error) {
	return DetectPackageType(path)
}
