package monitor

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdpManager/internal/models"
)

type staticLister struct {
	hosts []models.Host
	err   error
}

func (s staticLister) List() ([]models.Host, error) {
	return s.hosts, s.err
}

func newTestWatcher(m *Monitor, lister HostLister) *Watcher {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewWatcher(m, lister, logrus.NewEntry(logger))
}

func TestRefreshProbesEveryHostFresh(t *testing.T) {
	var probes int32
	m := newTestMonitor(Options{}, time.Minute)
	m.SetTransport(func(ctx context.Context, network, addr string) (net.Conn, error) {
		atomic.AddInt32(&probes, 1)
		return fakeConn{}, nil
	}, okLookup)

	lister := staticLister{hosts: []models.Host{
		{Hostname: "web01"},
		{Hostname: "db01"},
	}}
	w := newTestWatcher(m, lister)

	// Warm the cache, then refresh: the cycle invalidates first, so
	// every host is probed again.
	m.CheckOne(context.Background(), "web01")
	require.Equal(t, int32(1), atomic.LoadInt32(&probes))

	w.refresh()
	assert.Equal(t, int32(3), atomic.LoadInt32(&probes))
}

func TestRefreshToleratesListFailure(t *testing.T) {
	m := newTestMonitor(Options{}, time.Minute)
	m.SetTransport(func(ctx context.Context, network, addr string) (net.Conn, error) {
		t.Fatal("no probe should run when listing fails")
		return nil, nil
	}, okLookup)

	w := newTestWatcher(m, staticLister{err: errors.New("disk gone")})
	w.refresh()
}

func TestWatcherRejectsBadSchedule(t *testing.T) {
	m := newTestMonitor(Options{}, time.Minute)
	w := newTestWatcher(m, staticLister{})
	assert.Error(t, w.Start("not a schedule"))
}
