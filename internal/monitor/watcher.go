// internal/monitor/watcher.go

package monitor

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"rdpManager/internal/models"
)

// HostLister is the read-only slice of the registry the watcher needs.
type HostLister interface {
	List() ([]models.Host, error)
}

// Watcher periodically re-probes every registered host so a caller
// driving an indicator always finds warm cache entries. Each cycle
// invalidates before probing to force fresh results.
type Watcher struct {
	monitor *Monitor
	hosts   HostLister
	cron    *cron.Cron
	log     *logrus.Entry
}

func NewWatcher(m *Monitor, hosts HostLister, log *logrus.Entry) *Watcher {
	return &Watcher{
		monitor: m,
		hosts:   hosts,
		cron:    cron.New(),
		log:     log,
	}
}

// Start schedules refresh cycles; schedule uses cron syntax, e.g.
// "@every 60s".
func (w *Watcher) Start(schedule string) error {
	if _, err := w.cron.AddFunc(schedule, w.refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %v", schedule, err)
	}
	w.cron.Start()
	return nil
}

// Stop halts scheduling; a refresh already in flight finishes.
func (w *Watcher) Stop() {
	w.cron.Stop()
}

func (w *Watcher) refresh() {
	hosts, err := w.hosts.List()
	if err != nil {
		w.log.WithError(err).Warn("reachability refresh could not list hosts")
		return
	}

	names := make([]string, 0, len(hosts))
	for _, h := range hosts {
		names = append(names, h.Hostname)
	}

	w.monitor.InvalidateAll()
	results := w.monitor.CheckBatch(context.Background(), names)

	online := 0
	for _, status := range results {
		if status == models.StatusOnline {
			online++
		}
	}
	w.log.WithFields(logrus.Fields{
		"hosts":  len(names),
		"online": online,
	}).Debug("reachability refresh complete")
}
