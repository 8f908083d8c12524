// internal/registry/registry.go
//
// The registry owns the durable host list. Every mutation reads the
// whole file, changes the list in memory and rewrites the whole file;
// there is no row-level update. Mutations within one process are
// serialized by a mutex, concurrent writers from other processes race
// with last-write-wins semantics.

package registry

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rdpManager/internal/apperrors"
	"rdpManager/internal/models"
)

const registryFilePerms = 0600

// header is the current on-disk schema. Older files carry only the
// first two columns; the reader accepts those and the next write
// upgrades the file to the current schema.
var header = []string{"hostname", "description", "last_connected"}

// Registry stores host records in a CSV file at a fixed path.
type Registry struct {
	path string
	mu   sync.Mutex
	log  *logrus.Entry
}

func New(path string, log *logrus.Entry) *Registry {
	return &Registry{path: path, log: log}
}

// List returns every host in the registry. A missing file is an empty
// registry, not an error.
func (r *Registry) List() ([]models.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Upsert inserts host or replaces the record with the same hostname
// (case-insensitive match).
func (r *Registry) Upsert(host models.Host) error {
	if err := host.Validate(); err != nil {
		return err
	}
	host.Hostname = models.NormalizeHostname(host.Hostname)

	r.mu.Lock()
	defer r.mu.Unlock()

	hosts, err := r.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range hosts {
		if hosts[i].Matches(host.Hostname) {
			hosts[i] = host
			replaced = true
			break
		}
	}
	if !replaced {
		hosts = append(hosts, host)
	}
	return r.save(hosts)
}

// Delete removes the host with the given name.
func (r *Registry) Delete(hostname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hosts, err := r.load()
	if err != nil {
		return err
	}

	for i := range hosts {
		if hosts[i].Matches(hostname) {
			hosts = append(hosts[:i], hosts[i+1:]...)
			return r.save(hosts)
		}
	}
	return apperrors.NewHostNotFound(hostname)
}

// DeleteAll clears the registry. Idempotent: clearing an empty or
// missing registry succeeds.
func (r *Registry) DeleteAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(nil)
}

// TouchLastConnected updates only the last-connected field of one host.
func (r *Registry) TouchLastConnected(hostname string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hosts, err := r.load()
	if err != nil {
		return err
	}

	for i := range hosts {
		if hosts[i].Matches(hostname) {
			stamp := t
			hosts[i].LastConnected = &stamp
			return r.save(hosts)
		}
	}
	return apperrors.NewHostNotFound(hostname)
}

// Search returns hosts whose hostname or description contains query,
// case-insensitive. An empty query returns the full list.
func (r *Registry) Search(query string) ([]models.Host, error) {
	hosts, err := r.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return hosts, nil
	}

	var matched []models.Host
	for _, h := range hosts {
		if strings.Contains(strings.ToLower(h.Hostname), query) ||
			strings.Contains(strings.ToLower(h.Description), query) {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

func (r *Registry) load() ([]models.Host, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Host{}, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("read", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // rows may carry two or three columns

	records, err := reader.ReadAll()
	if err != nil {
		// Broken quoting or delimiter escaping is a hard failure, not a
		// row to skip.
		return nil, apperrors.NewPersistenceError("parse", err)
	}

	hosts := make([]models.Host, 0, len(records))
	for i, record := range records {
		if i == 0 && isHeader(record) {
			continue
		}
		if len(record) < 2 {
			r.log.WithField("row", i).Debug("skipping short registry row")
			continue
		}

		host := models.Host{
			Hostname:    record[0],
			Description: record[1],
		}
		// A missing third column is the legacy schema, an empty third
		// field a host never connected to; both mean no timestamp.
		if len(record) >= 3 && record[2] != "" {
			t, err := time.Parse(time.RFC3339, record[2])
			if err != nil {
				return nil, apperrors.NewPersistenceError("parse", err)
			}
			host.LastConnected = &t
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

func (r *Registry) save(hosts []models.Host) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return apperrors.NewPersistenceError("write", err)
	}
	for _, h := range hosts {
		stamp := ""
		if h.LastConnected != nil {
			stamp = h.LastConnected.Format(time.RFC3339)
		}
		if err := writer.Write([]string{h.Hostname, h.Description, stamp}); err != nil {
			return apperrors.NewPersistenceError("write", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewPersistenceError("write", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return apperrors.NewPersistenceError("write", err)
	}
	if err := os.WriteFile(r.path, buf.Bytes(), registryFilePerms); err != nil {
		return apperrors.NewPersistenceError("write", err)
	}
	return nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(record[0], header[0])
}
