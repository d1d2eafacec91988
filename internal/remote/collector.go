package remote

import (
	"context"
	"fmt"

	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/pkglist"
	"github.com/ralt/ypm/internal/utils"
	"github.com/sirupsen/logrus"
)

// Materializer produces a local, readable copy of a location. When
// temporary is true the caller owns the returned file and must remove it.
type Materializer interface {
	LocalCopy(ctx context.Context, location string) (path string, temporary bool, err error)
}

// CollectSources reads Source1, Source2, ... from the Sources section of the
// INI file at path. The scan stops at the first missing or empty key. A
// missing file or section yields no sources.
func CollectSources(path string) ([]models.Source, error) {
	list, err := pkglist.LoadLoose(path)
	if err != nil {
		return nil, &models.YpmError{Type: models.ErrPackageList, Subject: path, Err: err}
	}
	return sourcesFromList(list), nil
}

func sourcesFromList(list *pkglist.File) []models.Source {
	var sources []models.Source
	for i := 1; ; i++ {
		value := list.Value(pkglist.SectionSources, fmt.Sprintf("%s%d", pkglist.SourceKeyPrefix, i))
		if value == "" {
			break
		}
		sources = append(sources, NewSource(value))
	}
	return sources
}

// Collector scans the package list of a single source
type Collector struct {
	Materializer Materializer
}

// NewCollector creates a collector fetching package lists through m
func NewCollector(m Materializer) *Collector {
	return &Collector{Materializer: m}
}

// CollectPackages returns every package advertised by source together with
// the further sources its package list declares. Packages gathered before a
// failure are returned along with the error.
func (c *Collector) CollectPackages(ctx context.Context, source models.Source) ([]models.Package, []models.Source, error) {
	localPath, temporary, err := c.Materializer.LocalCopy(ctx, source.PackageList)
	if err != nil {
		return nil, nil, &models.YpmError{Type: models.ErrMaterialize, Subject: source.PackageList, Err: err}
	}
	if temporary {
		defer removeTemp(localPath)
	}

	list, err := pkglist.Load(localPath)
	if err != nil {
		return nil, nil, &models.YpmError{Type: models.ErrPackageList, Subject: source.PackageList, Err: err}
	}

	var packages []models.Package
	for _, name := range list.Keys(pkglist.SectionProvides) {
		version := list.Value(name, pkglist.KeyVersion)
		if version == "" {
			logrus.Debugf("Skipping %s in %s: no version", name, source.Root)
			continue
		}

		for _, arch := range models.KnownArchitectures {
			rel := list.Value(name, arch)
			if rel == "" {
				continue
			}
			pkg := NewPackage(name, version, arch, source, rel)
			logrus.Debugf("Found %s %s %s at %s", pkg.Name, pkg.Version, pkg.Architecture, pkg.InstallLocation)
			packages = append(packages, pkg)
		}
	}

	sources := sourcesFromList(list)
	logrus.Debugf("Source %s provides %d packages and %d sources", source.Root, len(packages), len(sources))

	return packages, sources, nil
}

func removeTemp(path string) {
	if err := utils.RemoveTemp(path); err != nil {
		logrus.Warnf("Failed to remove temporary file %s: %v", path, err)
	}
}
