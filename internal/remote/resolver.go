package remote

import (
	"context"
	"runtime"
	"strings"

	"github.com/ralt/ypm/internal/models"
	"github.com/sirupsen/logrus"
)

// Installer performs the install of a resolved package location
type Installer interface {
	Install(ctx context.Context, location string) error
}

// Catalog is the master package collection a resolver draws candidates from.
// Candidates are moved out of it as names are resolved.
type Catalog struct {
	packages []models.Package
}

// NewCatalog copies packages into a new catalog
func NewCatalog(packages []models.Package) *Catalog {
	return &Catalog{packages: append([]models.Package(nil), packages...)}
}

// Len returns the number of packages remaining in the catalog
func (c *Catalog) Len() int {
	return len(c.packages)
}

// take removes and returns every package named name, preserving order
func (c *Catalog) take(name string) []models.Package {
	var matched []models.Package
	kept := c.packages[:0]
	for _, pkg := range c.packages {
		if strings.EqualFold(pkg.Name, name) {
			matched = append(matched, pkg)
		} else {
			kept = append(kept, pkg)
		}
	}
	c.packages = kept
	return matched
}

// CompareVersions compares two version strings ordinally, ignoring case
func CompareVersions(a, b string) int {
	return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
}

// HighestVersion returns the ordinally greatest version among packages. The
// first of several equal maxima wins. ok is false for an empty slice.
func HighestVersion(packages []models.Package) (version string, ok bool) {
	for _, pkg := range packages {
		if !ok || CompareVersions(pkg.Version, version) > 0 {
			version = pkg.Version
			ok = true
		}
	}
	return version, ok
}

// Resolver picks one package per requested name and installs it
type Resolver struct {
	Installer Installer

	// Prefer64 makes amd64 the first architecture tried when the request
	// names none
	Prefer64 bool
}

// NewResolver creates a resolver for the running host
func NewResolver(installer Installer) *Resolver {
	return &Resolver{
		Installer: installer,
		Prefer64:  Is64BitHost(),
	}
}

// Is64BitHost reports whether the host can run amd64 packages
func Is64BitHost() bool {
	return runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64"
}

// FallbackArchitectures returns the architectures tried, in order, when a
// request names none
func (r *Resolver) FallbackArchitectures() []string {
	if r.Prefer64 {
		return []string{models.ArchAmd64, models.ArchWin32, models.ArchNoarch}
	}
	return []string{models.ArchWin32, models.ArchNoarch}
}

// InstallByName resolves every requested name against catalog and installs
// the winning candidates. It returns the number of successful installs.
func (r *Resolver) InstallByName(ctx context.Context, catalog *Catalog, req models.Request) int {
	installed := 0

	for _, name := range req.Names {
		nameMatches := catalog.take(name)

		version := req.Version
		if version == "" {
			var ok bool
			version, ok = HighestVersion(nameMatches)
			if !ok {
				logrus.Debugf("No package named %s", name)
				continue
			}
		}

		var candidates []models.Package
		for _, pkg := range nameMatches {
			if CompareVersions(pkg.Version, version) == 0 {
				candidates = append(candidates, pkg)
			}
		}
		if len(candidates) == 0 {
			logrus.Debugf("No version %s of %s", version, name)
			continue
		}

		if req.Architecture != "" {
			if found, ok := r.installMatchingArchitecture(ctx, candidates, req.Architecture); found && ok {
				installed++
			}
			continue
		}

		for _, arch := range r.FallbackArchitectures() {
			found, ok := r.installMatchingArchitecture(ctx, candidates, arch)
			if !found {
				continue
			}
			if ok {
				installed++
			}
			break
		}
	}

	return installed
}

// installMatchingArchitecture installs the first candidate built for arch.
// found reports whether such a candidate existed, ok whether it installed.
func (r *Resolver) installMatchingArchitecture(ctx context.Context, candidates []models.Package, arch string) (found, ok bool) {
	for _, pkg := range candidates {
		if !strings.EqualFold(pkg.Architecture, arch) {
			continue
		}
		logrus.Infof("Installing %s %s (%s) from %s", pkg.Name, pkg.Version, pkg.Architecture, pkg.InstallLocation)
		if err := r.Installer.Install(ctx, pkg.InstallLocation); err != nil {
			logrus.Errorf("Failed to install %s: %v", pkg.Name, err)
			return true, false
		}
		return true, true
	}
	return false, false
}
