// Package crypto seals history contents at rest with NaCl secretbox.
//
// A 32-byte symmetric key is derived from the user's passphrase using
// HKDF-SHA256. Every value is encrypted with a random 24-byte nonce prepended
// to the ciphertext:
//
//	[ 24-byte nonce ][ ciphertext ]
//
// With an empty passphrase the store keeps values in the clear and this
// package is not used.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var hkdfInfo = []byte("clipkeep-history-v1")

// ErrDecrypt is returned by Open when the value was sealed with another key
// or has been tampered with.
var ErrDecrypt = errors.New("decryption failed (wrong history key?)")

// Key is a derived secretbox key.
type Key [keySize]byte

// DeriveKey derives a secretbox key from passphrase using HKDF-SHA256. The
// same passphrase always yields the same key.
func DeriveKey(passphrase string) (*Key, error) {
	if passphrase == "" {
		return nil, errors.New("key derivation: empty passphrase")
	}
	h := hkdf.New(sha256.New, []byte(passphrase), nil, hkdfInfo)
	var key Key
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	return &key, nil
}

// Seal encrypts plaintext with key, prepending a random nonce.
func Seal(plaintext []byte, key *Key) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, (*[keySize]byte)(key)), nil
}

// Open decrypts a value produced by Seal.
func Open(sealed []byte, key *Key) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("sealed value too short (%d bytes)", len(sealed))
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, (*[keySize]byte)(key))
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
