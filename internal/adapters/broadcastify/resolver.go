package broadcastify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

// Resolver implements ports.SegmentResolver against the archive index
// endpoint.
type Resolver struct {
	client   *http.Client
	agents   *UserAgentRotator
	logger   *log.Logger
	indexURL string
}

// NewResolver creates a Resolver.
func NewResolver(agents *UserAgentRotator, logger *log.Logger) *Resolver {
	return &Resolver{
		client:   &http.Client{Timeout: 2 * time.Minute},
		agents:   agents,
		logger:   logger,
		indexURL: archiveIndexURL,
	}
}

// Resolve lists the segment identifiers available for feed on date, in the
// order the index returns them. An empty listing is valid.
func (r *Resolver) Resolve(ctx context.Context, feed domain.FeedID, date domain.ArchiveDate, session domain.Session) ([]domain.Segment, error) {
	query := url.Values{
		"feedId": {string(feed)},
		"date":   {date.QueryDate()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.indexURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &domain.ResolveError{Feed: feed, Date: date, Err: err}
	}
	req.Header.Set("User-Agent", r.agents.Next())
	req.Header.Set("Cookie", sessionCookie(session))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.ResolveError{Feed: feed, Date: date, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ResolveError{
			Feed: feed, Date: date,
			Err: fmt.Errorf("index query returned status %d", resp.StatusCode),
		}
	}

	var index struct {
		Data [][]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, &domain.ResolveError{Feed: feed, Date: date, Err: fmt.Errorf("invalid index payload: %w", err)}
	}

	segments := make([]domain.Segment, 0, len(index.Data))
	for i, row := range index.Data {
		if len(row) == 0 {
			return nil, &domain.ResolveError{Feed: feed, Date: date, Err: fmt.Errorf("index row %d is empty", i)}
		}
		id, err := segmentID(row[0])
		if err != nil {
			return nil, &domain.ResolveError{Feed: feed, Date: date, Err: fmt.Errorf("index row %d: %w", i, err)}
		}
		segments = append(segments, domain.Segment{ID: id, Feed: feed, Date: date})
	}
	return segments, nil
}

// segmentID extracts the identifier from the first field of an index row.
// The index has served both string and numeric identifiers.
func segmentID(field any) (string, error) {
	switch v := field.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unexpected identifier field of type %T", field)
	}
}
