// internal/apperrors/apperrors.go

package apperrors

import "fmt"

type ErrorType int

const (
	InvalidHostname ErrorType = iota
	HostNotFound
	CredentialsNotFound
	VaultError
	PersistenceError
	LaunchError
	NetworkUnknown
)

// AppError is the error value used across the application. Type drives
// programmatic handling, Target and Op carry diagnostic context. The
// message never contains secret material.
type AppError struct {
	Type    ErrorType
	Message string
	Target  string // vault target or hostname the error refers to
	Op      string // failing vault/persistence operation name
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by type, so errors.Is(err, &AppError{Type: t})
// works without comparing messages.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Type == e.Type
}

func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func NewInvalidHostname(name string) *AppError {
	return &AppError{
		Type:    InvalidHostname,
		Message: fmt.Sprintf("invalid hostname %q", name),
		Target:  name,
	}
}

func NewHostNotFound(name string) *AppError {
	return &AppError{
		Type:    HostNotFound,
		Message: fmt.Sprintf("host %q not found", name),
		Target:  name,
	}
}

// NewCredentialsNotFound names the host-specific target so the user
// knows which credential is missing.
func NewCredentialsNotFound(target string) *AppError {
	return &AppError{
		Type:    CredentialsNotFound,
		Message: fmt.Sprintf("no credentials stored under %q", target),
		Target:  target,
	}
}

func NewVaultError(op string, err error) *AppError {
	return &AppError{
		Type:    VaultError,
		Message: fmt.Sprintf("vault operation %q failed", op),
		Op:      op,
		Err:     err,
	}
}

func NewPersistenceError(op string, err error) *AppError {
	return &AppError{
		Type:    PersistenceError,
		Message: fmt.Sprintf("registry operation %q failed", op),
		Op:      op,
		Err:     err,
	}
}

func NewLaunchError(err error) *AppError {
	return &AppError{
		Type:    LaunchError,
		Message: "failed to start session client",
		Err:     err,
	}
}

func NewNetworkUnknown(host string, err error) *AppError {
	return &AppError{
		Type:    NetworkUnknown,
		Message: fmt.Sprintf("cannot resolve %q", host),
		Target:  host,
		Err:     err,
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Type == errType
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
