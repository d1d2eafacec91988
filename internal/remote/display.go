package remote

import (
	"fmt"
	"io"

	"github.com/ralt/ypm/internal/models"
)

// ListPackages writes one line per package: name, version, architecture and
// install location
func ListPackages(w io.Writer, packages []models.Package) error {
	for _, pkg := range packages {
		if _, err := fmt.Fprintf(w, "%s %s %s %s\n", pkg.Name, pkg.Version, pkg.Architecture, pkg.InstallLocation); err != nil {
			return err
		}
	}
	return nil
}

// ListSources writes the root of each source on its own line
func ListSources(w io.Writer, sources []models.Source) error {
	for _, s := range sources {
		if _, err := fmt.Fprintln(w, s.Root); err != nil {
			return err
		}
	}
	return nil
}
