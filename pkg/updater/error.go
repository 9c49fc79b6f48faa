package updater

import (
	"errors"
	"fmt"
)

// UpdaterError pairs an error kind from the taxonomy below with the
// underlying cause. Both are visible to errors.Is.
type UpdaterError struct {
	kind  error
	cause error
}

func (u UpdaterError) Error() string {
	return fmt.Sprintf("kind: %q, cause: %q", u.kind.Error(), u.cause.Error())
}

func (u UpdaterError) Unwrap() []error {
	return []error{u.kind, u.cause}
}

// NewUpdaterError wraps cause in the given error kind.
func NewUpdaterError(kind error, cause error) error {
	return UpdaterError{
		kind:  kind,
		cause: cause,
	}
}

var (
	// ErrNetworkFailure covers request timeouts, connection errors and
	// non-success HTTP statuses during version check or download.
	ErrNetworkFailure = errors.New("network failure")
	// ErrParseFailure indicates a malformed or incomplete version manifest.
	ErrParseFailure = errors.New("malformed manifest")
	// ErrRetriesExhausted wraps the last cause after all attempts failed.
	// The user has been notified by the time it is returned.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrDigestMismatch indicates a downloaded artifact did not match the
	// checksum announced by the manifest.
	ErrDigestMismatch = errors.New("artifact digest mismatch")
	// ErrFileMissing indicates the install target does not exist on disk.
	ErrFileMissing = errors.New("install file missing")
	// ErrPermissionDenied indicates the OS disallows installs from unknown
	// sources. Resolved by user action outside the app, never retried here.
	ErrPermissionDenied = errors.New("install permission denied")
	// ErrInstallerFailure covers any other error from the install handoff.
	ErrInstallerFailure = errors.New("installer failure")
)
