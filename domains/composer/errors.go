package composer

import "errors"

var (
	ErrSessionNotFound = errors.New("composer session not found")
	ErrViewOnly        = errors.New("session is view only")
	ErrStepBlocked     = errors.New("step requirements not met")
	ErrStepNotFound    = errors.New("sequence step not found")
	ErrLastStep        = errors.New("sequence must keep at least one step")
	ErrCreatorNotFound = errors.New("creator not resolved in this session")
	ErrAccountNotFound = errors.New("sender account not found")
	ErrNoTargets       = errors.New("no target usernames to resolve")

	ErrLookupUnavailable   = errors.New("creator lookup unavailable")
	ErrAccountsUnavailable = errors.New("account directory unavailable")
	ErrSubmissionFailed    = errors.New("campaign submission failed")
	ErrHydrationFailed     = errors.New("failed to load campaign record")
	ErrUnauthorized        = errors.New("token rejected by backend")
)
