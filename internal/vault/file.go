// internal/vault/file.go

package vault

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"rdpManager/internal/apperrors"
	"rdpManager/internal/crypto"
)

const vaultFilePerms = 0600

// File is the portable vault backend: a single file holding the entry
// map encrypted with AES-256-GCM under a passphrase-derived key. Used
// when no OS secret store is available.
type File struct {
	path   string
	cipher *crypto.Cipher
	salt   []byte
	mu     sync.Mutex
}

// envelope is the on-disk layout. Salt is stored in the clear, the
// entry map only inside the ciphertext.
type envelope struct {
	Salt string `json:"salt"`
	Data string `json:"data"`
}

// NewFile opens (or prepares to create) the encrypted vault file at
// path. The passphrase must be non-empty; the file itself is created
// lazily on the first Save.
func NewFile(path, passphrase string) (*File, error) {
	if passphrase == "" {
		return nil, apperrors.NewVaultError("open", errors.New("vault passphrase is not set"))
	}

	f := &File{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		salt, err := crypto.GenerateSalt()
		if err != nil {
			return nil, apperrors.NewVaultError("open", err)
		}
		cipher, err := crypto.NewCipher(passphrase, salt)
		if err != nil {
			return nil, apperrors.NewVaultError("open", err)
		}
		f.salt = salt
		f.cipher = cipher
		return f, nil
	}
	if err != nil {
		return nil, apperrors.NewVaultError("open", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.NewVaultError("open", fmt.Errorf("malformed vault file: %v", err))
	}
	salt, err := decodeSalt(env.Salt)
	if err != nil {
		return nil, apperrors.NewVaultError("open", err)
	}
	cipher, err := crypto.NewCipher(passphrase, salt)
	if err != nil {
		return nil, apperrors.NewVaultError("open", err)
	}
	f.salt = salt
	f.cipher = cipher

	// Verify the passphrase up front so a typo surfaces at open time,
	// not on the first read.
	if _, err := f.decryptEntries(env); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeSalt(hexSalt string) ([]byte, error) {
	salt, err := hex.DecodeString(hexSalt)
	if err != nil || len(salt) == 0 {
		return nil, errors.New("malformed vault salt")
	}
	return salt, nil
}

func (f *File) Save(target, username, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[target] = Entry{Username: username, Secret: secret}
	return f.store(entries)
}

func (f *File) Read(target string) (Entry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return Entry{}, false, err
	}
	entry, found := entries[target]
	return entry, found, nil
}

func (f *File) Delete(target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, found := entries[target]; !found {
		return nil
	}
	delete(entries, target)
	return f.store(entries)
}

func (f *File) ListTargets(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, err
	}

	var matched []string
	for target := range entries {
		if strings.HasPrefix(target, prefix) {
			matched = append(matched, target)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

func (f *File) load() (map[string]Entry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, apperrors.NewVaultError("read", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.NewVaultError("read", fmt.Errorf("malformed vault file: %v", err))
	}
	return f.decryptEntries(env)
}

func (f *File) decryptEntries(env envelope) (map[string]Entry, error) {
	if env.Data == "" {
		return map[string]Entry{}, nil
	}
	plaintext, err := f.cipher.Decrypt(env.Data)
	if err != nil {
		return nil, apperrors.NewVaultError("read", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, apperrors.NewVaultError("read", fmt.Errorf("malformed vault contents: %v", err))
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return entries, nil
}

func (f *File) store(entries map[string]Entry) error {
	plaintext, err := json.Marshal(entries)
	if err != nil {
		return apperrors.NewVaultError("save", err)
	}
	encrypted, err := f.cipher.Encrypt(plaintext)
	if err != nil {
		return apperrors.NewVaultError("save", err)
	}

	env := envelope{
		Salt: hex.EncodeToString(f.salt),
		Data: encrypted,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return apperrors.NewVaultError("save", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return apperrors.NewVaultError("save", err)
	}
	if err := os.WriteFile(f.path, data, vaultFilePerms); err != nil {
		return apperrors.NewVaultError("save", err)
	}
	return nil
}
