package remote

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ralt/ypm/internal/models"
)

var remotePrefixes = []string{"http://", "https://"}

// IsRemote reports whether location is a network location
func IsRemote(location string) bool {
	for _, prefix := range remotePrefixes {
		if len(location) >= len(prefix) && strings.EqualFold(location[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

func isSep(c byte) bool {
	return c == '/' || c == '\\' || c == filepath.Separator
}

func trimTrailingSeps(s string) string {
	for len(s) > 0 && isSep(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

func trimLeadingSeps(s string) string {
	for len(s) > 0 && isSep(s[0]) {
		s = s[1:]
	}
	return s
}

// JoinLocation appends rel to root. Network roots are joined with '/',
// anything else with the platform path separator.
func JoinLocation(root, rel string) string {
	sep := string(filepath.Separator)
	if IsRemote(root) {
		sep = "/"
	}
	return trimTrailingSeps(root) + sep + trimLeadingSeps(rel)
}

// NewSource builds the record for a declared source location
func NewSource(location string) models.Source {
	root := trimTrailingSeps(strings.TrimSpace(location))
	return models.Source{
		Root:        root,
		PackageList: JoinLocation(root, models.PackageListFile),
	}
}

// NewPackage builds the record for one architecture of a package advertised
// by source
func NewPackage(name, version, arch string, source models.Source, rel string) models.Package {
	return models.Package{
		Name:            name,
		Version:         version,
		Architecture:    arch,
		InstallLocation: JoinLocation(source.Root, rel),
	}
}

// sourceKey normalizes a source root for duplicate detection. Scheme and
// host of network roots are case-insensitive; local paths only are on Windows.
func sourceKey(s models.Source) string {
	root := trimTrailingSeps(s.Root)

	if IsRemote(root) {
		u, err := url.Parse(root)
		if err != nil {
			return root
		}
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		return u.String()
	}

	if runtime.GOOS == "windows" {
		return strings.ToUpper(root)
	}
	return root
}
