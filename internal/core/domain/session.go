package domain

import "time"

// SessionContext is the opaque, time-limited capability required to talk
// to the upstream: the authenticated cookie jar plus the short-lived
// anti-forgery token read from the host page. The pipeline only reads it;
// when it goes stale the symptom is a rise in hard failures, and recovery
// is an operator supplying a fresh context for a follow-up run.
type SessionContext struct {
	// AuthToken is the anti-forgery token sent with every request.
	AuthToken string `json:"authToken"`

	// Cookie is the raw Cookie header value for the authenticated session.
	Cookie string `json:"cookie"`

	// ObtainedAt records when the operator captured the context. Age is a
	// known but not exclusive correlate of hard failures.
	ObtainedAt time.Time `json:"obtainedAt"`
}

// IsZero reports whether no session context has been supplied.
func (s SessionContext) IsZero() bool {
	return s.AuthToken == "" && s.Cookie == ""
}

// Age returns how old the context is at the given time.
func (s SessionContext) Age(now time.Time) time.Duration {
	if s.ObtainedAt.IsZero() {
		return 0
	}
	return now.Sub(s.ObtainedAt)
}
