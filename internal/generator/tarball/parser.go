// Package tarball reads package metadata from tar based package archives.
package tarball

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/pkglist"
	"github.com/ralt/ypm/internal/scanner"
	"github.com/ralt/ypm/internal/utils"
)

// Keys of the pkginfo.ini metadata member
const (
	SectionPackage  = "Package"
	KeyName         = "Name"
	KeyVersion      = "Version"
	KeyArchitecture = "Architecture"
)

// ParsePackage parses a tar package and extracts metadata from its
// pkginfo.ini member
func ParsePackage(path string, pkgType scanner.PackageType) (*models.Archive, error) {
	checksums, err := utils.CalculateChecksums(path)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksums: %w", err)
	}

	data, err := extractPackageInfo(path, pkgType)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", models.PackageInfoFile, err)
	}

	info, err := pkglist.Parse(models.PackageInfoFile, data)
	if err != nil {
		return nil, err
	}

	pkg := &models.Archive{
		Name:         info.Value(SectionPackage, KeyName),
		Version:      info.Value(SectionPackage, KeyVersion),
		Architecture: strings.ToLower(info.Value(SectionPackage, KeyArchitecture)),
		Description:  info.Value(SectionPackage, pkglist.KeyDescription),
	}
	if pkg.Architecture == "" {
		pkg.Architecture = models.ArchNoarch
	}

	pkg.Filename = path
	pkg.Size = checksums.Size
	pkg.SHA256Sum = checksums.SHA256

	return pkg, nil
}

// IsPackageInfo reports whether a tar member name is the metadata member
func IsPackageInfo(name string) bool {
	return path.Clean(strings.TrimPrefix(name, "./")) == models.PackageInfoFile
}

func extractPackageInfo(filePath string, pkgType scanner.PackageType) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := utils.Decompress(f, pkgType.Compression())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if IsPackageInfo(header.Name) {
			return io.ReadAll(tr)
		}
	}

	return nil, fmt.Errorf("%s not found in %s", models.PackageInfoFile, filePath)
}
