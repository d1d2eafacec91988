package models

// Known architecture tokens, in the order a package list section is probed
const (
	ArchNoarch = "noarch"
	ArchWin32  = "win32"
	ArchAmd64  = "amd64"
)

// KnownArchitectures is the fixed probe order used when reading a package section
var KnownArchitectures = []string{ArchNoarch, ArchWin32, ArchAmd64}

// PackageListFile is the file name of the package list at the root of a source
const PackageListFile = "pkglist.ini"

// PackageInfoFile is the metadata member carried at the root of a tar package
const PackageInfoFile = "pkginfo.ini"

// Package is one installable artifact advertised by a source
type Package struct {
	Name            string
	Version         string
	Architecture    string
	InstallLocation string // fully qualified path or URL of the archive
}

// Source is a location hosting a package list
type Source struct {
	Root        string // parent of pkglist.ini, without trailing separators
	PackageList string // location of pkglist.ini within Root
}

// Request describes a remote install request. Empty Version or Architecture
// means the caller did not ask for a specific one.
type Request struct {
	Names        []string
	Version      string
	Architecture string
}

// Archive represents a package archive on disk together with its metadata
type Archive struct {
	// Core metadata
	Name         string
	Version      string
	Architecture string
	Description  string

	// File information
	Filename  string
	Size      int64
	SHA256Sum string
}
