// internal/models/reachability.go

package models

import "time"

// Status is the reachability verdict for one host.
type Status int

const (
	// StatusUnknown means the hostname could not be resolved, or the
	// host has not been probed yet. Distinct from offline: unknown
	// means "cannot tell".
	StatusUnknown Status = iota
	// StatusOnline means a TCP connection to the session port was
	// accepted within the probe timeout.
	StatusOnline
	// StatusOffline means the hostname resolved but no connection was
	// accepted within the probe timeout.
	StatusOffline
	// StatusChecking is a placeholder for callers driving an indicator
	// while a probe is in flight. The monitor never produces it.
	StatusChecking
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	case StatusChecking:
		return "checking"
	default:
		return "unknown"
	}
}

// ReachabilityState is one cached probe result. It lives only in the
// monitor's in-memory cache and is never persisted.
type ReachabilityState struct {
	Hostname      string
	Status        Status
	LastCheckedAt time.Time
}
