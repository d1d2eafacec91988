package utils

import (
	"fmt"
	"strings"

	"github.com/ralt/ypm/internal/models"
)

// PackageIdentity returns a unique identifier for an archive within a package list
func PackageIdentity(pkg models.Archive) string {
	return strings.ToLower(fmt.Sprintf("%s:%s:%s", pkg.Name, pkg.Version, pkg.Architecture))
}

// DetectConflicts returns archives from newPackages that share an identity
// with an archive in existing or with an earlier archive in newPackages
func DetectConflicts(existing, newPackages []models.Archive) []models.Archive {
	seen := make(map[string]bool)
	for _, pkg := range existing {
		seen[PackageIdentity(pkg)] = true
	}

	var conflicts []models.Archive
	for _, pkg := range newPackages {
		id := PackageIdentity(pkg)
		if seen[id] {
			conflicts = append(conflicts, pkg)
			continue
		}
		seen[id] = true
	}
	return conflicts
}
