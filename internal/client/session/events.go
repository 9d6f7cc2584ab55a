package session

import "github.com/ovolkov/pawhub/internal/client/models"

// TopicChanged is published on the client hub every time the session status
// changes. Subscribers (screens, the REPL prompt, stores) re-derive their
// behavior from the event instead of caching session state.
const TopicChanged = "session.changed"

// Reason qualifies a status change so the UI can pick the right notice:
// a failed login attempt and an existing session expiring must not be
// confused.
type Reason string

const (
	ReasonLogin       Reason = "login"
	ReasonVerified    Reason = "verified"
	ReasonLoginFailed Reason = "login-failed"
	ReasonLogout      Reason = "logout"
	ReasonExpired     Reason = "expired"
	ReasonRefreshed   Reason = "refreshed"
)

// Event is the payload of TopicChanged.
type Event struct {
	Status Status
	Reason Reason
	User   *models.User
}
