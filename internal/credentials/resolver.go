// internal/credentials/resolver.go

package credentials

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"rdpManager/internal/apperrors"
	"rdpManager/internal/models"
	"rdpManager/internal/vault"
)

const (
	// GlobalTarget keys the single application-wide fallback credential.
	GlobalTarget = "rdpmen/default"
	// HostTargetPrefix keys per-host credentials; the full target is the
	// prefix plus the lowercased hostname. The fixed prefix makes bulk
	// enumeration and cleanup possible.
	HostTargetPrefix = "rdpmen/host/"
	// SessionTargetPrefix keys the session-scoped aliases consumed by
	// the external session client, derived from the literal network
	// address.
	SessionTargetPrefix = "TERMSRV/"
)

// HostTarget derives the vault target for a hostname. Deterministic:
// the same hostname always maps to the same target regardless of case.
func HostTarget(hostname string) string {
	return HostTargetPrefix + strings.ToLower(models.NormalizeHostname(hostname))
}

// SessionTarget derives the vault target the external session client
// looks up when authenticating against address.
func SessionTarget(address string) string {
	return SessionTargetPrefix + address
}

// Resolver maps hosts to credentials. The secret never leaves this
// package except to the launcher via the returned Credential.
type Resolver struct {
	vault vault.Vault
	log   *logrus.Entry
}

func NewResolver(v vault.Vault, log *logrus.Entry) *Resolver {
	return &Resolver{vault: v, log: log}
}

// ResolveForHost returns the credential for hostname: the per-host
// entry when one exists, otherwise the global fallback. When neither
// exists the error names the host-specific target so the user knows
// which credential is missing.
func (r *Resolver) ResolveForHost(hostname string) (models.Credential, error) {
	hostTarget := HostTarget(hostname)

	entry, found, err := r.vault.Read(hostTarget)
	if err != nil {
		return models.Credential{}, err
	}
	if found {
		return toCredential(entry), nil
	}

	entry, found, err = r.vault.Read(GlobalTarget)
	if err != nil {
		return models.Credential{}, err
	}
	if found {
		return toCredential(entry), nil
	}

	return models.Credential{}, apperrors.NewCredentialsNotFound(hostTarget)
}

// SaveGlobal stores the application-wide fallback credential.
func (r *Resolver) SaveGlobal(username, secret string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	return r.vault.Save(GlobalTarget, username, secret)
}

// SavePerHost stores a credential used only for hostname.
func (r *Resolver) SavePerHost(hostname, username, secret string) error {
	if err := models.ValidateHostname(hostname); err != nil {
		return err
	}
	if err := validateUsername(username); err != nil {
		return err
	}
	return r.vault.Save(HostTarget(hostname), username, secret)
}

// DeletePerHost removes the per-host credential; resolution for that
// host falls back to the global one afterwards.
func (r *Resolver) DeletePerHost(hostname string) error {
	return r.vault.Delete(HostTarget(hostname))
}

// DeleteGlobal removes the fallback credential.
func (r *Resolver) DeleteGlobal() error {
	return r.vault.Delete(GlobalTarget)
}

// ClearReport summarizes a bulk credential wipe.
type ClearReport struct {
	Deleted int
	Failed  int
	errs    *multierror.Error
}

// Err returns the combined failure, nil when everything succeeded.
func (c ClearReport) Err() error {
	return c.errs.ErrorOrNil()
}

// ClearAll deletes the global credential, every per-host credential and
// every session alias this application wrote. Individual failures are
// collected into the report instead of aborting the remaining work.
func (r *Resolver) ClearAll() ClearReport {
	var report ClearReport

	targets := []string{GlobalTarget}
	for _, prefix := range []string{HostTargetPrefix, SessionTargetPrefix} {
		listed, err := r.vault.ListTargets(prefix)
		if err != nil {
			report.Failed++
			report.errs = multierror.Append(report.errs, err)
			continue
		}
		targets = append(targets, listed...)
	}

	for _, target := range targets {
		if err := r.vault.Delete(target); err != nil {
			report.Failed++
			report.errs = multierror.Append(report.errs, err)
			r.log.WithField("target", target).WithError(err).Warn("failed to delete credential")
			continue
		}
		report.Deleted++
	}

	r.log.WithFields(logrus.Fields{
		"deleted": report.Deleted,
		"failed":  report.Failed,
	}).Info("credential store cleared")
	return report
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username cannot be empty")
	}
	return nil
}

func toCredential(entry vault.Entry) models.Credential {
	// Entries written as "domain\user" split into the credential's
	// domain and username parts.
	username := entry.Username
	domain := ""
	if i := strings.Index(username, `\`); i > 0 {
		domain = username[:i]
		username = username[i+1:]
	}
	return models.Credential{Username: username, Secret: entry.Secret, Domain: domain}
}
