// Package broadcastify talks to the Broadcastify archive site: session
// login, archive index queries and segment downloads.
package broadcastify

import "github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"

const (
	loginURL           = "https://www.broadcastify.com/login/"
	archiveIndexURL    = "https://www.broadcastify.com/archives/ajax.php"
	archiveDownloadURL = "https://www.broadcastify.com/archives/downloadv2"

	// Name of the session cookie issued on login.
	sessionCookieName = "bcfyuser1"
)

// sessionCookie formats the Cookie header value for authenticated calls.
func sessionCookie(s domain.Session) string {
	return sessionCookieName + "=" + s.Token
}
