package signer

import (
	"bytes"
	"crypto"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// SignatureSuffix is appended to a package list path to name its signature
const SignatureSuffix = ".asc"

// GPGSigner implements Signer interface using an OpenPGP entity
type GPGSigner struct {
	entity *openpgp.Entity
}

// NewGPGSigner loads the first key of an armored or binary private key ring
func NewGPGSigner(keyPath, passphrase string) (*GPGSigner, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("key path is empty")
	}

	entities, err := readKeyRing(keyPath)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found in %s", keyPath)
	}

	entity := entities[0]
	if passphrase != "" {
		if err := decryptKeys(entity, []byte(passphrase)); err != nil {
			return nil, err
		}
	}

	return NewGPGSignerFromEntity(entity), nil
}

// NewGPGSignerFromEntity wraps an already decrypted entity
func NewGPGSignerFromEntity(entity *openpgp.Entity) *GPGSigner {
	return &GPGSigner{entity: entity}
}

func readKeyRing(keyPath string) (openpgp.EntityList, error) {
	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	defer keyFile.Close()

	entities, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err == nil {
		return entities, nil
	}

	if _, err := keyFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind key file: %w", err)
	}
	entities, err = openpgp.ReadKeyRing(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	return entities, nil
}

func decryptKeys(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to decrypt private key: %w", err)
		}
	}
	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
			if err := subkey.PrivateKey.Decrypt(passphrase); err != nil {
				return fmt.Errorf("failed to decrypt subkey: %w", err)
			}
		}
	}
	return nil
}

// SignDetached creates an armored detached signature over data
func (s *GPGSigner) SignDetached(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), &packet.Config{
		DefaultHash: crypto.SHA512,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create detached signature: %w", err)
	}

	return buf.Bytes(), nil
}

// GetPublicKey returns the public key in armored format
func (s *GPGSigner) GetPublicKey() ([]byte, error) {
	var buf bytes.Buffer

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, err
	}

	if err := s.entity.Serialize(w); err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
