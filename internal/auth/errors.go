package auth

import "errors"

// Discriminated failure kinds for the authorization pipeline. Call sites map
// these to HTTP statuses with errors.Is; no status decision ever inspects an
// error message.
var (
	// ErrUnauthenticated covers missing, malformed, or expired credentials,
	// and subjects without a provisioned profile row.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrPermissionDenied means the caller's role lacks the required grant.
	ErrPermissionDenied = errors.New("auth: permission denied")

	// ErrAdminRequired means the action is admin-only and the caller is not.
	ErrAdminRequired = errors.New("auth: admin required")

	// ErrAccessDenied means the resource exists but belongs to another
	// organization. Responses must not distinguish it from ErrNotFound.
	ErrAccessDenied = errors.New("auth: access denied")

	// ErrNotFound means the referenced resource does not exist.
	ErrNotFound = errors.New("auth: not found")

	// ErrUnavailable means the identity or resource store could not answer.
	// Requests fail closed rather than proceeding as if authorized.
	ErrUnavailable = errors.New("auth: store unavailable")
)
