// internal/vault/keyring.go

package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"rdpManager/internal/apperrors"
)

const (
	// keyringService groups all entries written by this application in
	// the OS secret store.
	keyringService = "rdpmen"
	// indexKey is the reserved entry holding the list of stored
	// targets. The OS keyring cannot enumerate, so the vault keeps its
	// own index. Real targets always contain a separator, so this name
	// cannot collide.
	indexKey = "!index"
)

// Keyring stores credentials in the operating system secret store.
type Keyring struct {
	mu sync.Mutex
}

// NewKeyring opens the OS secret store and verifies it is usable by
// writing and removing a canary entry.
func NewKeyring() (*Keyring, error) {
	const canary = "!canary"
	if err := keyring.Set(keyringService, canary, ""); err != nil {
		return nil, apperrors.NewVaultError("open", err)
	}
	if err := keyring.Delete(keyringService, canary); err != nil {
		return nil, apperrors.NewVaultError("open", err)
	}
	return &Keyring{}, nil
}

func (k *Keyring) Save(target, username, secret string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	payload, err := json.Marshal(Entry{Username: username, Secret: secret})
	if err != nil {
		return apperrors.NewVaultError("save", err)
	}
	if err := keyring.Set(keyringService, target, string(payload)); err != nil {
		return apperrors.NewVaultError("save", err)
	}
	return k.updateIndex(func(targets map[string]struct{}) {
		targets[target] = struct{}{}
	})
}

func (k *Keyring) Read(target string) (Entry, bool, error) {
	payload, err := keyring.Get(keyringService, target)
	if errors.Is(err, keyring.ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, apperrors.NewVaultError("read", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return Entry{}, false, apperrors.NewVaultError("read", fmt.Errorf("malformed entry: %v", err))
	}
	return entry, true, nil
}

func (k *Keyring) Delete(target string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Delete(keyringService, target); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return apperrors.NewVaultError("delete", err)
	}
	return k.updateIndex(func(targets map[string]struct{}) {
		delete(targets, target)
	})
}

func (k *Keyring) ListTargets(prefix string) ([]string, error) {
	targets, err := k.readIndex()
	if err != nil {
		return nil, err
	}

	var matched []string
	for target := range targets {
		if strings.HasPrefix(target, prefix) {
			matched = append(matched, target)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

func (k *Keyring) readIndex() (map[string]struct{}, error) {
	payload, err := keyring.Get(keyringService, indexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, apperrors.NewVaultError("list", err)
	}

	var list []string
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, apperrors.NewVaultError("list", fmt.Errorf("malformed index: %v", err))
	}
	targets := make(map[string]struct{}, len(list))
	for _, t := range list {
		targets[t] = struct{}{}
	}
	return targets, nil
}

func (k *Keyring) updateIndex(mutate func(map[string]struct{})) error {
	targets, err := k.readIndex()
	if err != nil {
		return err
	}
	mutate(targets)

	list := make([]string, 0, len(targets))
	for t := range targets {
		list = append(list, t)
	}
	sort.Strings(list)

	payload, err := json.Marshal(list)
	if err != nil {
		return apperrors.NewVaultError("save", err)
	}
	if err := keyring.Set(keyringService, indexKey, string(payload)); err != nil {
		return apperrors.NewVaultError("save", err)
	}
	return nil
}
