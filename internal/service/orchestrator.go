package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/ports"
)

// Orchestrator coordinates a download run: session acquisition, date
// expansion, per-date segment resolution, the bounded fetch pool and the
// optional post-processing hooks.
type Orchestrator struct {
	session     ports.SessionProvider
	resolver    ports.SegmentResolver
	fetcher     ports.SegmentFetcher
	storage     ports.Storage
	combiner    ports.Combiner
	transcriber ports.Transcriber
	logger      *log.Logger

	// now is the clock used for range validation; replaced in tests.
	now func() time.Time
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	session ports.SessionProvider,
	resolver ports.SegmentResolver,
	fetcher ports.SegmentFetcher,
	storage ports.Storage,
	combiner ports.Combiner,
	transcriber ports.Transcriber,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		session:     session,
		resolver:    resolver,
		fetcher:     fetcher,
		storage:     storage,
		combiner:    combiner,
		transcriber: transcriber,
		logger:      logger,
		now:         time.Now,
	}
}

// RunOptions control one download run.
type RunOptions struct {
	// Jobs is the fetch worker pool size per date; values below 1 mean
	// serial downloads.
	Jobs int

	// Combine concatenates each date's files after its fetches finish.
	Combine bool

	// Transcribe runs speech-to-text over each date's files after its
	// fetches (and combine, if requested) finish.
	Transcribe bool
}

// Run downloads every date selected by spec for the given feed. Dates are
// processed sequentially in ascending order; a failure on one date is
// recorded in its report and does not stop later dates. Only an invalid
// date spec, a failed authentication or context cancellation abort the run.
func (o *Orchestrator) Run(ctx context.Context, feed domain.FeedID, spec domain.DateSpec, opts RunOptions) (*domain.RunReport, error) {
	if feed == "" {
		return nil, errors.New("feed id must not be empty")
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	today := domain.NewArchiveDate(o.now())
	dates, err := spec.Expand(today)
	if err != nil {
		return nil, err
	}

	session, err := o.session.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.RunReport{RunID: uuid.New().String(), Feed: feed}
	o.logger.Printf("[RUN %s] feed %s: %d date(s), %d worker(s)", report.RunID, feed, len(dates), jobs)

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		dr := o.runDate(ctx, feed, date, session, jobs, opts)
		report.Dates = append(report.Dates, dr)

		switch {
		case dr.Err != nil:
			o.logger.Printf("[RUN %s] %s: skipped: %v", report.RunID, date.Display(), dr.Err)
		default:
			o.logger.Printf("[RUN %s] %s: %d/%d segment(s) downloaded", report.RunID, date.Display(), dr.Fetched, dr.Resolved)
		}
	}
	return report, nil
}

// runDate performs all work for one date. The returned report is complete
// in the best-effort sense: every resolved segment has been attempted.
func (o *Orchestrator) runDate(ctx context.Context, feed domain.FeedID, date domain.ArchiveDate, session domain.Session, jobs int, opts RunOptions) domain.DateReport {
	dr := domain.DateReport{Date: date}

	segments, err := o.resolver.Resolve(ctx, feed, date, session)
	if err != nil {
		dr.Err = err
		return dr
	}
	dr.Resolved = len(segments)

	dir, err := o.storage.EnsureDateDir(feed, date)
	if err != nil {
		dr.Err = fmt.Errorf("failed to prepare output directory: %w", err)
		return dr
	}
	dr.Dir = dir

	task := domain.DownloadTask{Feed: feed, Date: date, Dir: dir, Segments: segments}
	for _, result := range o.fetchAll(ctx, task, session, jobs) {
		if result.OK() {
			dr.Fetched++
			continue
		}
		dr.Failures = append(dr.Failures, result)
		o.logFailure(date, result)
	}

	if opts.Combine {
		dr.CombinedPath, dr.CombineErr = o.combiner.Combine(ctx, dir, feed, date)
		if dr.CombineErr != nil {
			o.logger.Printf("%s: combine failed: %v", date.Display(), dr.CombineErr)
		}
	}
	if opts.Transcribe {
		if dr.TranscribeErr = o.transcriber.TranscribeAll(ctx, dir); dr.TranscribeErr != nil {
			o.logger.Printf("%s: transcription failed: %v", date.Display(), dr.TranscribeErr)
		}
	}
	return dr
}

// fetchAll drains the task's segments through a pool of jobs workers and
// returns every result. All segments are enqueued up front; the call
// returns only after every dispatched fetch has finished.
func (o *Orchestrator) fetchAll(ctx context.Context, task domain.DownloadTask, session domain.Session, jobs int) []domain.FetchResult {
	queue := make(chan domain.Segment, len(task.Segments))
	for _, segment := range task.Segments {
		queue <- segment
	}
	close(queue)

	results := make(chan domain.FetchResult, len(task.Segments))
	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for segment := range queue {
				results <- o.fetcher.Fetch(ctx, segment, task.Dir, session)
			}
		}()
	}
	wg.Wait()
	close(results)

	collected := make([]domain.FetchResult, 0, len(task.Segments))
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}

func (o *Orchestrator) logFailure(date domain.ArchiveDate, result domain.FetchResult) {
	switch {
	case result.Err != nil:
		o.logger.Printf("%s: segment %s: %v", date.Display(), result.Segment.ID, result.Err)
	case result.InvalidSession():
		o.logger.Printf("%s: segment %s: %v (status %d), delete the session file to re-authenticate",
			date.Display(), result.Segment.ID, domain.ErrInvalidSession, result.Status)
	default:
		o.logger.Printf("%s: segment %s: download failed with status %d: %s",
			date.Display(), result.Segment.ID, result.Status, result.Body)
	}
}
