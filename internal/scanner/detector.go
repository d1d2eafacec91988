package scanner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for package detection
var (
	// RPM packages start with 0xED 0xAB 0xEE 0xDB
	rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

	gzipMagic = []byte{0x1F, 0x8B}

	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

	xzMagic = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}

	// POSIX tar headers carry "ustar" at offset 257
	tarMagic       = []byte("ustar")
	tarMagicOffset = 257
)

// DetectPackageType determines the package type based on magic bytes and file extension
func DetectPackageType(path string) (PackageType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	// Read first 512 bytes for magic byte detection
	header := make([]byte, 512)
	n, err := io.ReadFull(f, header)
	if err != nil && n == 0 {
		return TypeUnknown, err
	}
	header = header[:n]

	return detect(header, strings.ToLower(filepath.Base(path))), nil
}

func detect(header []byte, basename string) PackageType {
	if bytes.HasPrefix(header, rpmMagic) || strings.HasSuffix(basename, ".rpm") {
		return TypeRpm
	}

	if bytes.HasPrefix(header, zstdMagic) || strings.HasSuffix(basename, ".tar.zst") {
		return TypeTarZst
	}
	if bytes.HasPrefix(header, xzMagic) || strings.HasSuffix(basename, ".tar.xz") {
		return TypeTarXz
	}
	if bytes.HasPrefix(header, gzipMagic) || strings.HasSuffix(basename, ".tar.gz") || strings.HasSuffix(basename, ".tgz") {
		return TypeTarGz
	}

	if len(header) >= tarMagicOffset+len(tarMagic) && bytes.Equal(header[tarMagicOffset:tarMagicOffset+len(tarMagic)], tarMagic) {
		return TypeTar
	}
	if strings.HasSuffix(basename, ".tar") {
		return TypeTar
	}

	return TypeUnknown
}
