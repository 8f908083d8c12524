// internal/crypto/crypto.go
//
// This package provides the cryptographic primitives for the encrypted
// file vault. It handles encryption and decryption of vault contents
// using AES-256-GCM with a key derived from a passphrase via scrypt.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// KeySize is the size of the encryption key in bytes. 32 bytes are
	// used for AES-256.
	KeySize = 32
	// SaltSize is the size of the scrypt salt in bytes.
	SaltSize = 16

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Cipher represents an AES-256-GCM cipher with a derived key.
type Cipher struct {
	key []byte
}

// NewCipher derives a KeySize key from the passphrase and salt using
// scrypt and returns a Cipher ready for use.
func NewCipher(passphrase string, salt []byte) (*Cipher, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %v", err)
	}
	return &Cipher{key: key}, nil
}

// GenerateSalt returns a fresh random salt for key derivation.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %v", err)
	}
	return salt, nil
}

// Encrypt encrypts the given plaintext using AES-256-GCM. The nonce is
// prepended to the ciphertext and the result is hex-encoded.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %v", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %v", err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %v", err)
	}

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	combined := make([]byte, len(nonce)+len(ciphertext))
	copy(combined, nonce)
	copy(combined[len(nonce):], ciphertext)

	return hex.EncodeToString(combined), nil
}

// Decrypt decrypts a hex-encoded nonce+ciphertext produced by Encrypt.
func (c *Cipher) Decrypt(encryptedHex string) ([]byte, error) {
	combined, err := hex.DecodeString(encryptedHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex: %v", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %v", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %v", err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(combined) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce := combined[:nonceSize]
	ciphertext := combined[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %v", err)
	}

	return plaintext, nil
}
