// internal/models/credential.go

package models

// Credential is a username/secret pair resolved from the vault. It is
// owned by the vault adapter once stored and must never appear in a
// Host record, a connection artifact or a log line.
type Credential struct {
	Username string
	Secret   string
	Domain   string
}

// DisplayUser formats the username for the session client:
// "domain\user" when a domain is present, the bare username otherwise.
func (c Credential) DisplayUser() string {
	if c.Domain != "" {
		return c.Domain + `\` + c.Username
	}
	return c.Username
}
