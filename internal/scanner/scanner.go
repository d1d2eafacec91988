package scanner

import "context"

// PackageType represents the container format of a package archive
type PackageType int

const (
	TypeUnknown PackageType = iota
	TypeTar
	TypeTarGz
	TypeTarXz
	TypeTarZst
	TypeRpm
)

// String returns the string representation of PackageType
func (pt PackageType) String() string {
	switch pt {
	case TypeTar:
		return "tar"
	case TypeTarGz:
		return "tar.gz"
	case TypeTarXz:
		return "tar.xz"
	case TypeTarZst:
		return "tar.zst"
	case TypeRpm:
		return "rpm"
	default:
		return "unknown"
	}
}

// Compression returns the stream compression of a tar based type
func (pt PackageType) Compression() string {
	switch pt {
	case TypeTarGz:
		return "gz"
	case TypeTarXz:
		return "xz"
	case TypeTarZst:
		return "zst"
	default:
		return ""
	}
}

// IsTar reports whether the type is a (possibly compressed) tar archive
func (pt PackageType) IsTar() bool {
	return pt == TypeTar || pt == TypeTarGz || pt == TypeTarXz || pt == TypeTarZst
}

// ScannedPackage represents a package archive found during scanning
type ScannedPackage struct {
	Path string
	Type PackageType
	Size int64
}

// Scanner interface for detecting and scanning packages
type Scanner interface {
	// Scan recursively scans a directory for packages
	Scan(ctx context.Context, dir string) ([]ScannedPackage, error)

	// DetectType determines the package type of a file
	DetectType(path string) (PackageType, error)
}
