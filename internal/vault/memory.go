// internal/vault/memory.go

package vault

import (
	"sort"
	"strings"
	"sync"

	"rdpManager/internal/apperrors"
)

// Memory is an in-memory vault used by tests and by anything that needs
// a throwaway store. Failures can be injected per target to exercise
// collect-and-continue paths.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry

	// FailDelete lists targets whose Delete should fail.
	FailDelete map[string]bool
	// FailSave lists targets whose Save should fail.
	FailSave map[string]bool
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]Entry{}}
}

func (m *Memory) Save(target, username, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave[target] {
		return apperrors.NewVaultError("save", errInjected)
	}
	m.entries[target] = Entry{Username: username, Secret: secret}
	return nil
}

func (m *Memory) Read(target string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, found := m.entries[target]
	return entry, found, nil
}

func (m *Memory) Delete(target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete[target] {
		return apperrors.NewVaultError("delete", errInjected)
	}
	delete(m.entries, target)
	return nil
}

func (m *Memory) ListTargets(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for target := range m.entries {
		if strings.HasPrefix(target, prefix) {
			matched = append(matched, target)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type injectedError struct{}

func (injectedError) Error() string { return "injected failure" }

var errInjected = injectedError{}
