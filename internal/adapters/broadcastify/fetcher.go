package broadcastify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

const (
	// Segment bodies are streamed to disk in chunks of this size.
	fetchChunkSize = 1024

	// Upper bound on how much of an error response body is kept for the
	// report.
	maxErrorBodyBytes = 8 * 1024
)

// Fetcher implements ports.SegmentFetcher against the archive download
// endpoint.
type Fetcher struct {
	client  *http.Client
	agents  *UserAgentRotator
	logger  *log.Logger
	baseURL string
}

// NewFetcher creates a Fetcher.
func NewFetcher(agents *UserAgentRotator, logger *log.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Minute, // archive segments can be large
		},
		agents:  agents,
		logger:  logger,
		baseURL: archiveDownloadURL,
	}
}

// Fetch downloads one segment into destDir. The server redirects to the
// CDN-backed file, so the written filename comes from the final URL of the
// response, not the requested one. Pre-existing files are overwritten.
func (f *Fetcher) Fetch(ctx context.Context, segment domain.Segment, destDir string, session domain.Session) domain.FetchResult {
	result := domain.FetchResult{Segment: segment}

	downloadURL := fmt.Sprintf("%s/%s/%s/%s", f.baseURL, segment.Feed, segment.Date.QueryDate(), segment.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		result.Err = fmt.Errorf("failed to create request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", f.agents.Next())
	req.Header.Set("Cookie", sessionCookie(session))

	resp, err := f.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("failed to download segment %s: %w", segment.ID, err)
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		result.Body = string(body)
		return result
	}

	name := path.Base(resp.Request.URL.Path)
	outPath := filepath.Join(destDir, name)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		result.Err = fmt.Errorf("failed to create directory %s: %w", destDir, err)
		return result
	}

	file, err := os.Create(outPath)
	if err != nil {
		result.Err = fmt.Errorf("failed to create file %s: %w", outPath, err)
		return result
	}
	defer file.Close()

	if _, err := io.CopyBuffer(file, resp.Body, make([]byte, fetchChunkSize)); err != nil {
		result.Err = fmt.Errorf("failed to write %s: %w", outPath, err)
		return result
	}

	result.Path = outPath
	return result
}
