package domain

import "net/http"

// FeedID names an archive source on the upstream site. Opaque numeric
// string; no validation beyond non-empty.
type FeedID string

// Session is the opaque authenticated-session credential for the upstream
// archive site. It is read-only after acquisition; fetch workers share it
// concurrently without locking.
type Session struct {
	Token string
}

// Segment is one archive audio unit belonging to a feed on a date. The
// resolver returns identifiers in upstream order; nothing guarantees that
// order is chronological.
type Segment struct {
	ID   string
	Feed FeedID
	Date ArchiveDate
}

// DownloadTask is the unit of work for one feed/date: the resolved segments
// and the directory their files land in. The orchestrator owns its
// lifecycle; fetch workers only ever contribute results.
type DownloadTask struct {
	Feed     FeedID
	Date     ArchiveDate
	Dir      string
	Segments []Segment
}

// FetchResult is the outcome of one segment fetch. Non-200 responses are
// results, not errors; the orchestrator decides what to do with them.
type FetchResult struct {
	Segment Segment
	Path    string // written file, set on success
	Status  int    // HTTP status, 0 on transport error
	Body    string // response body excerpt, set on non-200
	Err     error  // transport-level error, nil otherwise
}

// OK reports whether the segment was downloaded and written.
func (r FetchResult) OK() bool {
	return r.Err == nil && r.Status == http.StatusOK
}

// InvalidSession reports whether upstream rejected the session credential,
// as opposed to a generic fetch failure.
func (r FetchResult) InvalidSession() bool {
	return r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden
}

// DateReport is the per-date completion report. A date counts as complete
// once every resolved segment has been attempted, regardless of how many
// attempts failed.
type DateReport struct {
	Date     ArchiveDate
	Dir      string
	Resolved int
	Fetched  int
	Failures []FetchResult

	// Err is set when the date's work could not start at all (segment
	// resolution or directory creation failed).
	Err error

	CombinedPath  string
	CombineErr    error
	TranscribeErr error
}

// Failed reports whether anything at all went wrong for the date.
func (r DateReport) Failed() bool {
	return r.Err != nil || len(r.Failures) > 0 || r.CombineErr != nil || r.TranscribeErr != nil
}

// RunReport aggregates the per-date reports of one orchestrator run.
type RunReport struct {
	RunID string
	Feed  FeedID
	Dates []DateReport
}

// TotalFetched counts successfully downloaded segments across all dates.
func (r *RunReport) TotalFetched() int {
	n := 0
	for _, d := range r.Dates {
		n += d.Fetched
	}
	return n
}

// TotalFailures counts failed segment fetches across all dates.
func (r *RunReport) TotalFailures() int {
	n := 0
	for _, d := range r.Dates {
		n += len(d.Failures)
	}
	return n
}
