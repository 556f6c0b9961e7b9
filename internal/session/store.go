package session

import (
	"context"
	"time"
)

// State is the lifecycle position of a session.
type State string

const (
	// StateInitializing: the identity provider has answered but the
	// session has not been enriched yet.
	StateInitializing State = "initializing"
	StateAuthenticated State = "authenticated"
	// StateAnonymous is never persisted; it is what Resolve reports for a
	// missing or expired session.
	StateAnonymous State = "anonymous"
)

const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// User is the signed-in principal as seen by the dashboard.
type User struct {
	ID            int64  `json:"id,omitempty"` // backend users.id, 0 when unresolved
	Subject       string `json:"sub"`          // identity-provider user id
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Role          string `json:"role,omitempty"`
}

// Organization pairs the identity-provider organization id with the
// backend's numeric id for the same entity.
type Organization struct {
	ExternalID string `json:"external_id,omitempty"`
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Enrichment records which best-effort login steps succeeded.
type Enrichment struct {
	OrganizationResolved bool              `json:"organization_resolved"`
	UserResolved         bool              `json:"user_resolved"`
	UserCreated          bool              `json:"user_created"`
	AccessTokenCached    bool              `json:"access_token_cached"`
	Failures             map[string]string `json:"failures,omitempty"`
}

// Session is the server-side record behind the session cookie. Tokens are
// not part of it; they live in the TokenStore under the same id.
type Session struct {
	SessionID    string       `json:"session_id"`
	State        State        `json:"state"`
	User         User         `json:"user"`
	Organization Organization `json:"organization"`
	Enrichment   Enrichment   `json:"enrichment"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.State == StateAuthenticated
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) when the session does not exist.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
