package rpm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/utils"
	"github.com/sassoftware/go-rpmutils"
)

// ParsePackage parses an RPM file and extracts metadata
func ParsePackage(path string) (*models.Archive, error) {
	checksums, err := utils.CalculateChecksums(path)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksums: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM: %w", err)
	}

	pkg := &models.Archive{
		Name:         getStringTag(rpm, rpmutils.NAME),
		Version:      getStringTag(rpm, rpmutils.VERSION),
		Architecture: MapArchitecture(getStringTag(rpm, rpmutils.ARCH)),
		Description:  getStringTag(rpm, rpmutils.SUMMARY),
	}

	// Release is folded into the version so that ordinal comparison sees it
	if release := getStringTag(rpm, rpmutils.RELEASE); release != "" {
		pkg.Version = pkg.Version + "-" + release
	}

	pkg.Filename = path
	pkg.Size = checksums.Size
	pkg.SHA256Sum = checksums.SHA256

	return pkg, nil
}

// MapArchitecture converts an RPM architecture to a package list architecture
func MapArchitecture(arch string) string {
	switch strings.ToLower(arch) {
	case "x86_64", "amd64":
		return models.ArchAmd64
	case "i386", "i486", "i586", "i686", "x86":
		return models.ArchWin32
	case "noarch", "":
		return models.ArchNoarch
	default:
		return arch
	}
}

// getStringTag safely gets a string tag from RPM
func getStringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	// Handle different types that might be returned
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	default:
		return fmt.Sprintf("%v", v)
	}

	return ""
}
