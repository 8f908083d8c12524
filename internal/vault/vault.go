// internal/vault/vault.go
//
// This package isolates all access to the underlying secret store
// behind a single interface. No other package touches the OS keyring
// or the encrypted vault file directly.

package vault

import (
	"github.com/sirupsen/logrus"
)

// Entry is one stored credential pair.
type Entry struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// Vault is the capability set every backend provides. Implementations
// are interchangeable; callers never learn which backend served them.
type Vault interface {
	// Save stores the entry under target, overwriting any existing one.
	Save(target, username, secret string) error
	// Read returns the entry stored under target. found=false means
	// "no entry", which is not an error.
	Read(target string) (entry Entry, found bool, err error)
	// Delete removes the entry under target. Deleting a missing entry
	// succeeds.
	Delete(target string) error
	// ListTargets returns every stored target starting with prefix.
	ListTargets(prefix string) ([]string, error)
}

// Open selects a backend. "keyring" uses the OS secret store, falling
// back to the encrypted file vault when the store is unavailable;
// "file" forces the file vault.
func Open(backend, filePath, passphrase string, log *logrus.Entry) (Vault, error) {
	if backend != "file" {
		kr, err := NewKeyring()
		if err == nil {
			return kr, nil
		}
		log.WithError(err).Warn("OS secret store unavailable, falling back to file vault")
	}
	return NewFile(filePath, passphrase)
}
