package remote

import (
	"context"
	"fmt"

	"github.com/ralt/ypm/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultSource is used when the local index configures no sources
const DefaultSource = "http://www.malsmith.net"

// IndexLookup returns the path of the local file listing configured sources
type IndexLookup func() (string, error)

// Discovery is the result of one discovery pass
type Discovery struct {
	Sources  []models.Source
	Packages []models.Package
}

// Driver walks every source reachable from the local index
type Driver struct {
	Index         IndexLookup
	Collector     *Collector
	DefaultSource string
}

// NewDriver creates a discovery driver
func NewDriver(index IndexLookup, m Materializer, defaultSource string) *Driver {
	return &Driver{
		Index:         index,
		Collector:     NewCollector(m),
		DefaultSource: defaultSource,
	}
}

// CollectAll discovers all sources breadth-first, starting from the sources
// configured in the local index, and accumulates every package they
// advertise. A source already visited (same root, ignoring trailing
// separators and the case of network schemes and hosts) is not visited again.
func (d *Driver) CollectAll(ctx context.Context) (*Discovery, error) {
	indexPath, err := d.Index()
	if err != nil {
		return nil, &models.YpmError{Type: models.ErrIndexLookup, Err: err}
	}

	seed, err := CollectSources(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configured sources: %w", err)
	}

	if len(seed) == 0 {
		defaultSource := d.DefaultSource
		if defaultSource == "" {
			defaultSource = DefaultSource
		}
		logrus.Debugf("No sources configured in %s, using %s", indexPath, defaultSource)
		seed = append(seed, NewSource(defaultSource))
	}

	result := &Discovery{}
	seen := make(map[string]bool)
	var queue []models.Source

	enqueue := func(s models.Source) {
		key := sourceKey(s)
		if seen[key] {
			logrus.Debugf("Source %s already known, skipping", s.Root)
			return
		}
		seen[key] = true
		result.Sources = append(result.Sources, s)
		queue = append(queue, s)
	}

	for _, s := range seed {
		enqueue(s)
	}

	for len(queue) > 0 {
		source := queue[0]
		queue = queue[1:]

		logrus.Infof("Reading package list from %s", source.PackageList)
		packages, sources, err := d.Collector.CollectPackages(ctx, source)
		result.Packages = append(result.Packages, packages...)
		for _, s := range sources {
			enqueue(s)
		}
		if err != nil {
			logrus.Warnf("Failed to collect packages from %s: %v", source.Root, err)
		}
	}

	logrus.Infof("Found %d packages in %d sources", len(result.Packages), len(result.Sources))
	return result, nil
}
