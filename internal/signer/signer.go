package signer

// Signer interface for signing generated package lists
type Signer interface {
	// SignDetached creates an armored detached signature (pkglist.ini.asc)
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)
}
