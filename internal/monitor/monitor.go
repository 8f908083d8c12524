// internal/monitor/monitor.go
//
// The monitor probes hosts from the registry for TCP reachability on
// the session port. Probes are bounded in concurrency and carry their
// own hard timeout; an expired probe is abandoned, not retried. The
// monitor never mutates the registry.

package monitor

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"rdpManager/internal/models"
)

// Dialer opens a TCP connection; injected so tests can fake the
// network.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// Lookup resolves a hostname; injected so tests can fake DNS.
type Lookup func(ctx context.Context, host string) ([]string, error)

// Options bound the monitor's network behavior.
type Options struct {
	Port        int
	Timeout     time.Duration
	Concurrency int
	GroupPause  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Port == 0 {
		o.Port = 3389
	}
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 5
	}
	if o.GroupPause < 0 {
		o.GroupPause = 0
	}
	return o
}

// Monitor estimates which hosts are currently reachable.
type Monitor struct {
	opts   Options
	cache  *Cache
	dial   Dialer
	lookup Lookup
	log    *logrus.Entry
}

func New(opts Options, cache *Cache, log *logrus.Entry) *Monitor {
	dialer := &net.Dialer{}
	return &Monitor{
		opts:   opts.withDefaults(),
		cache:  cache,
		dial:   dialer.DialContext,
		lookup: net.DefaultResolver.LookupHost,
		log:    log,
	}
}

// SetTransport replaces the dialer and resolver. Used by tests.
func (m *Monitor) SetTransport(dial Dialer, lookup Lookup) {
	m.dial = dial
	m.lookup = lookup
}

// Invalidate drops the cached result for hostname.
func (m *Monitor) Invalidate(hostname string) {
	m.cache.Invalidate(hostname)
}

// InvalidateAll drops every cached result.
func (m *Monitor) InvalidateAll() {
	m.cache.InvalidateAll()
}

// CheckOne returns the reachability status for one host, served from
// the cache when a fresh entry exists. Resolution failure yields
// Unknown, a refused or timed-out connection Offline.
func (m *Monitor) CheckOne(ctx context.Context, hostname string) models.Status {
	if state, ok := m.cache.Get(hostname); ok {
		return state.Status
	}

	status := m.probe(ctx, hostname)
	m.cache.Put(hostname, status)
	return status
}

func (m *Monitor) probe(ctx context.Context, hostname string) models.Status {
	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	// Unknown and Offline are distinct verdicts: Unknown means the name
	// did not resolve, Offline means it resolved but nothing accepted
	// the connection in time.
	addrs, err := m.lookup(ctx, hostname)
	if err != nil || len(addrs) == 0 {
		m.log.WithField("host", hostname).WithError(err).Debug("hostname did not resolve")
		return models.StatusUnknown
	}

	addr := net.JoinHostPort(addrs[0], strconv.Itoa(m.opts.Port))
	conn, err := m.dial(ctx, "tcp", addr)
	if err != nil {
		return models.StatusOffline
	}
	conn.Close()
	return models.StatusOnline
}

// CheckBatch probes the given hosts, never more than the configured
// concurrency at the same instant: the input is partitioned into
// groups, each group runs fully in parallel, and a short pause
// separates groups.
func (m *Monitor) CheckBatch(ctx context.Context, hostnames []string) map[string]models.Status {
	results := make(map[string]models.Status, len(hostnames))
	var mu sync.Mutex

	for start := 0; start < len(hostnames); start += m.opts.Concurrency {
		end := start + m.opts.Concurrency
		if end > len(hostnames) {
			end = len(hostnames)
		}

		g, groupCtx := errgroup.WithContext(ctx)
		for _, hostname := range hostnames[start:end] {
			hostname := hostname
			g.Go(func() error {
				status := m.CheckOne(groupCtx, hostname)
				mu.Lock()
				results[hostname] = status
				mu.Unlock()
				return nil
			})
		}
		g.Wait()

		if end < len(hostnames) && m.opts.GroupPause > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(m.opts.GroupPause):
			}
		}
	}
	return results
}
