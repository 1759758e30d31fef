package localstorage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

const sessionFileName = "cookies.json"

// Storage implements ports.Storage and ports.SessionStore on the local
// filesystem. Archive files for a feed/date land in
// <base>/<feedId>/<MMDDYYYY>/.
type Storage struct {
	BaseDir string

	// SessionPath is where the session token is persisted. Defaults to
	// cookies.json in the working directory, matching earlier versions of
	// this tool so existing session files keep working.
	SessionPath string
}

// sessionFile is the on-disk session schema. The field name is the
// upstream cookie name for compatibility with previously written files.
type sessionFile struct {
	Token string `json:"bcfyuser1"`
}

// NewStorage creates a Storage rooted at baseDir.
func NewStorage(baseDir string) *Storage {
	return &Storage{
		BaseDir:     baseDir,
		SessionPath: sessionFileName,
	}
}

// DateDir returns the output directory for a feed/date.
func (s *Storage) DateDir(feed domain.FeedID, date domain.ArchiveDate) string {
	return filepath.Join(s.BaseDir, string(feed), date.DirName())
}

// EnsureDateDir creates the output directory for a feed/date if absent.
func (s *Storage) EnsureDateDir(feed domain.FeedID, date domain.ArchiveDate) (string, error) {
	dir := s.DateDir(feed, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// LoadSession reads the persisted session token, reporting whether one
// exists.
func (s *Storage) LoadSession() (domain.Session, bool, error) {
	data, err := os.ReadFile(s.SessionPath)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to read session file %s: %w", s.SessionPath, err)
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to parse session file %s: %w", s.SessionPath, err)
	}
	if file.Token == "" {
		return domain.Session{}, false, nil
	}
	return domain.Session{Token: file.Token}, true, nil
}

// SaveSession persists the session token for later runs.
func (s *Storage) SaveSession(session domain.Session) error {
	data, err := json.Marshal(sessionFile{Token: session.Token})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.SessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file %s: %w", s.SessionPath, err)
	}
	return nil
}
