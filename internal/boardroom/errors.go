package boardroom

import "errors"

// Sentinel errors for the failure taxonomy. Callers classify failures
// with errors.Is; the API layer maps them onto HTTP status codes.
var (
	// ErrNotFound means a referenced board or conversation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller lacks ownership and the resource is
	// not public.
	ErrForbidden = errors.New("access denied")

	// ErrValidation means the request is structurally invalid, such as
	// summarizing an empty conversation. No external call is attempted.
	ErrValidation = errors.New("invalid request")

	// ErrExternalService means the completion service failed. Per-persona
	// chat calls contain this inside a degraded response; the single
	// summary call surfaces it.
	ErrExternalService = errors.New("completion service failed")
)
