package broadcastify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/ports"
)

const (
	usernameEnv = "BROADCASTIFY_USERNAME"
	passwordEnv = "BROADCASTIFY_PASSWORD"
)

var sessionCookiePattern = regexp.MustCompile(sessionCookieName + `=([^;]+)`)

// SessionProvider implements ports.SessionProvider against the site's
// login form. A successful login answers with a redirect carrying the
// session token in a Set-Cookie header.
type SessionProvider struct {
	client   *http.Client
	store    ports.SessionStore
	agents   *UserAgentRotator
	logger   *log.Logger
	loginURL string
}

// NewSessionProvider creates a SessionProvider backed by store for token
// persistence.
func NewSessionProvider(store ports.SessionStore, agents *UserAgentRotator, logger *log.Logger) *SessionProvider {
	return &SessionProvider{
		client: &http.Client{
			Timeout: 1 * time.Minute,
			// The login response is a 302 whose Set-Cookie carries the
			// token; following it would lose the header.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		store:    store,
		agents:   agents,
		logger:   logger,
		loginURL: loginURL,
	}
}

// Acquire returns the persisted session if one exists, otherwise logs in
// with the account credentials from the environment and persists the token.
func (p *SessionProvider) Acquire(ctx context.Context) (domain.Session, error) {
	if session, ok, err := p.store.LoadSession(); err != nil {
		return domain.Session{}, &domain.AuthError{Reason: "failed to load persisted session", Err: err}
	} else if ok {
		return session, nil
	}

	username := os.Getenv(usernameEnv)
	password := os.Getenv(passwordEnv)
	if username == "" || password == "" {
		return domain.Session{}, &domain.AuthError{
			Reason: fmt.Sprintf("%s and %s must be set", usernameEnv, passwordEnv),
			Err:    domain.ErrMissingCredentials,
		}
	}

	session, err := p.login(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}

	if err := p.store.SaveSession(session); err != nil {
		// The session is still usable for this run.
		p.logger.Printf("WARNING: failed to persist session: %v", err)
	}
	return session, nil
}

func (p *SessionProvider) login(ctx context.Context, username, password string) (domain.Session, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
		"action":   {"auth"},
		"redirect": {"https://www.broadcastify.com"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Session{}, &domain.AuthError{Reason: "failed to build login request", Err: err}
	}
	req.Header.Set("User-Agent", p.agents.Next())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Origin", "https://www.broadcastify.com")
	req.Header.Set("Referer", p.loginURL)
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Session{}, &domain.AuthError{Reason: "login request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return domain.Session{}, &domain.AuthError{
			Reason: fmt.Sprintf("login did not succeed, status %d", resp.StatusCode),
		}
	}

	cookies := strings.Join(resp.Header.Values("Set-Cookie"), "; ")
	match := sessionCookiePattern.FindStringSubmatch(cookies)
	if match == nil {
		return domain.Session{}, &domain.AuthError{
			Reason: fmt.Sprintf("no %s cookie in login response", sessionCookieName),
		}
	}

	p.logger.Printf("Authenticated with %s", p.loginURL)
	return domain.Session{Token: match[1]}, nil
}
