// internal/launcher/launcher.go
//
// The launcher turns a host record plus a resolved credential into a
// running session: it writes a connection artifact (never containing
// the secret), aliases the secret under a session-scoped vault target
// so the external client can authenticate silently, and starts the
// client detached. A launch attempt walks
// Resolving -> Building -> SessionAliasing -> Launching -> Done|Failed.

package launcher

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rdpManager/internal/apperrors"
	"rdpManager/internal/config"
	"rdpManager/internal/credentials"
	"rdpManager/internal/models"
	"rdpManager/internal/registry"
	"rdpManager/internal/utils"
	"rdpManager/internal/vault"
)

// State identifies the phase a launch attempt ended in.
type State int

const (
	StateResolving State = iota
	StateBuilding
	StateSessionAliasing
	StateLaunching
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateBuilding:
		return "building"
	case StateSessionAliasing:
		return "aliasing"
	case StateLaunching:
		return "launching"
	case StateDone:
		return "done"
	default:
		return "failed"
	}
}

// Descriptor is the per-attempt connection description handed to the
// external session client. It never carries the secret.
type Descriptor struct {
	Address     string
	DisplayUser string
	Fullscreen  bool
	Width       int
	Height      int
}

// Result reports how a launch attempt ended. FailedIn is the state the
// attempt failed in, StateDone on success.
type Result struct {
	Attempt      string
	FailedIn     State
	ArtifactPath string
	Err          error
}

// Runner starts the external session client process. Split out so
// tests can intercept the exec.
type Runner func(command string, args ...string) error

// Launcher composes registry, resolver and vault into launch attempts.
type Launcher struct {
	cfg      config.Config
	registry *registry.Registry
	resolver *credentials.Resolver
	vault    vault.Vault
	run      Runner
	log      *logrus.Entry
}

func New(cfg config.Config, reg *registry.Registry, res *credentials.Resolver, v vault.Vault, log *logrus.Entry) *Launcher {
	return &Launcher{
		cfg:      cfg,
		registry: reg,
		resolver: res,
		vault:    v,
		run:      startDetached,
		log:      log,
	}
}

// SetRunner replaces the process starter. Used by tests.
func (l *Launcher) SetRunner(run Runner) {
	l.run = run
}

// Launch runs one attempt for hostname. Steps before the client start
// are not retried here; the caller may retry the whole attempt.
func (l *Launcher) Launch(hostname string) Result {
	attempt := uuid.NewString()
	log := l.log.WithFields(logrus.Fields{"host": hostname, "attempt": attempt})

	host, err := l.findHost(hostname)
	if err != nil {
		return Result{Attempt: attempt, FailedIn: StateResolving, Err: err}
	}

	// Resolving
	cred, err := l.resolver.ResolveForHost(host.Hostname)
	if err != nil {
		log.WithError(err).Error("credential resolution failed")
		return Result{Attempt: attempt, FailedIn: StateResolving, Err: err}
	}

	// Building
	desc := l.buildDescriptor(host, cred)
	artifactPath, err := l.writeArtifact(host.Hostname, desc)
	if err != nil {
		log.WithError(err).Error("artifact write failed")
		return Result{Attempt: attempt, FailedIn: StateBuilding, Err: err}
	}

	// SessionAliasing: the one deliberate, narrowly scoped exposure of
	// the secret outside the resolver, written to the OS vault so the
	// client authenticates without prompting.
	sessionTarget := credentials.SessionTarget(desc.Address)
	if err := l.vault.Save(sessionTarget, cred.DisplayUser(), cred.Secret); err != nil {
		log.WithError(err).Error("session alias write failed")
		return Result{Attempt: attempt, FailedIn: StateSessionAliasing, ArtifactPath: artifactPath, Err: err}
	}

	// Launching: fire and forget, the client's lifetime is independent.
	if err := l.run(l.cfg.ClientCommand, artifactPath); err != nil {
		log.WithError(err).Error("session client start failed")
		return Result{Attempt: attempt, FailedIn: StateLaunching, ArtifactPath: artifactPath, Err: apperrors.NewLaunchError(err)}
	}

	// Best effort: the session already started, a bookkeeping failure
	// must not undo the user's success.
	if err := l.registry.TouchLastConnected(host.Hostname, time.Now()); err != nil {
		log.WithError(err).Warn("failed to stamp last-connected time")
	}

	log.Info("session launched")
	return Result{Attempt: attempt, FailedIn: StateDone, ArtifactPath: artifactPath}
}

func (l *Launcher) findHost(hostname string) (models.Host, error) {
	hosts, err := l.registry.List()
	if err != nil {
		return models.Host{}, err
	}
	for _, h := range hosts {
		if h.Matches(hostname) {
			return h, nil
		}
	}
	return models.Host{}, apperrors.NewHostNotFound(hostname)
}

func (l *Launcher) buildDescriptor(host models.Host, cred models.Credential) Descriptor {
	address := host.Hostname
	if l.cfg.SessionPort != 0 && l.cfg.SessionPort != 3389 {
		address = net.JoinHostPort(host.Hostname, strconv.Itoa(l.cfg.SessionPort))
	}
	return Descriptor{
		Address:     address,
		DisplayUser: cred.DisplayUser(),
		Fullscreen:  l.cfg.Fullscreen,
		Width:       l.cfg.DesktopWidth,
		Height:      l.cfg.DesktopHeight,
	}
}

// ArtifactPath returns the deterministic artifact location for a
// hostname. Relaunching a host overwrites its previous artifact.
func (l *Launcher) ArtifactPath(hostname string) string {
	return filepath.Join(l.cfg.DataDir, "sessions", utils.SafeFileName(hostname)+".rdp")
}

func (l *Launcher) writeArtifact(hostname string, desc Descriptor) (string, error) {
	path := l.ArtifactPath(hostname)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", apperrors.NewPersistenceError("artifact", err)
	}
	if err := os.WriteFile(path, []byte(renderArtifact(desc)), config.DefaultFilePerms); err != nil {
		return "", apperrors.NewPersistenceError("artifact", err)
	}
	return path, nil
}

// renderArtifact emits the line-oriented key:type:value format the
// session client consumes. No secret field exists in this format.
func renderArtifact(desc Descriptor) string {
	screenMode := 1
	if desc.Fullscreen {
		screenMode = 2
	}
	lines := []struct {
		key   string
		typ   string
		value string
	}{
		{"full address", "s", desc.Address},
		{"username", "s", desc.DisplayUser},
		{"screen mode id", "i", strconv.Itoa(screenMode)},
		{"desktopwidth", "i", strconv.Itoa(desc.Width)},
		{"desktopheight", "i", strconv.Itoa(desc.Height)},
		{"authentication level", "i", "2"},
		{"prompt for credentials", "i", "0"},
	}

	var out string
	for _, l := range lines {
		out += fmt.Sprintf("%s:%s:%s\r\n", l.key, l.typ, l.value)
	}
	return out
}

// startDetached launches the client and releases it immediately; the
// launcher never waits for the session to end.
func startDetached(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
