package ports

import (
	"context"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

// SessionProvider obtains the authenticated session for the archive site.
type SessionProvider interface {
	// Acquire returns a persisted session if one exists, otherwise logs in
	// with the account credentials and persists the resulting token.
	// Failures are *domain.AuthError values.
	Acquire(ctx context.Context) (domain.Session, error)
}

// SegmentResolver lists the archive segments available for a feed/date.
type SegmentResolver interface {
	// Resolve returns segment identifiers in upstream order. An empty
	// result is valid; failures are *domain.ResolveError values.
	Resolve(ctx context.Context, feed domain.FeedID, date domain.ArchiveDate, session domain.Session) ([]domain.Segment, error)
}

// SegmentFetcher downloads one archive segment.
type SegmentFetcher interface {
	// Fetch retrieves the segment into destDir. HTTP failures are reported
	// in the result, not raised; the caller owns retry/skip policy.
	Fetch(ctx context.Context, segment domain.Segment, destDir string, session domain.Session) domain.FetchResult
}

// Combiner concatenates a date's downloaded audio files into one file.
type Combiner interface {
	// Combine merges the directory's audio files in filename-sorted order.
	// Returns the combined file path, or "" when there was nothing to do.
	Combine(ctx context.Context, dir string, feed domain.FeedID, date domain.ArchiveDate) (string, error)
}

// Transcriber runs speech-to-text over every audio file in a directory,
// writing one transcript JSON per input file.
type Transcriber interface {
	TranscribeAll(ctx context.Context, dir string) error
}

// Storage lays out the local archive tree.
type Storage interface {
	// DateDir returns the output directory for a feed/date.
	DateDir(feed domain.FeedID, date domain.ArchiveDate) string

	// EnsureDateDir creates the output directory if absent and returns it.
	EnsureDateDir(feed domain.FeedID, date domain.ArchiveDate) (string, error)
}

// SessionStore persists the session token between runs.
type SessionStore interface {
	// LoadSession returns the persisted session, reporting whether one
	// exists.
	LoadSession() (domain.Session, bool, error)

	// SaveSession persists the session for later runs.
	SaveSession(domain.Session) error
}
