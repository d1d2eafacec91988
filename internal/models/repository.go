package models

// IndexConfig contains configuration for package list generation
type IndexConfig struct {
	// Input/Output
	InputDir  string
	OutputDir string

	// Compression of an extra copy of the package list ("gz", "xz", "zst"),
	// written next to it as pkglist.ini.<compression>. Empty writes none.
	Compression string

	// Sources referenced from the generated list (written as Source1..N)
	Sources []string

	// Signing
	GPGKeyPath    string
	GPGPassphrase string
}
