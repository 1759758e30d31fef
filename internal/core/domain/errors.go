package domain

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials indicates the account username or password was not
// supplied in the environment.
var ErrMissingCredentials = errors.New("username and password not set")

// ErrInvalidSession indicates an authenticated request was rejected by
// upstream, usually because the persisted session token has gone stale.
var ErrInvalidSession = errors.New("session rejected by upstream")

// AuthError means no usable session could be obtained. Nothing proceeds
// without a session, so callers treat it as fatal to the whole run.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// InvalidRangeError means a caller-supplied date range is logically invalid.
// Raised before any network activity.
type InvalidRangeError struct {
	Start  ArchiveDate
	End    ArchiveDate
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %s-%s: %s", e.Start.Display(), e.End.Display(), e.Reason)
}

// ResolveError means the segment listing for one feed/date could not be
// obtained or parsed. It aborts that date's work only; other dates in a
// range proceed.
type ResolveError struct {
	Feed FeedID
	Date ArchiveDate
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve segments for feed %s on %s: %v", e.Feed, e.Date.Display(), e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
