package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/identity"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/metrics"
	"github.com/Saurav036/nexus/internal/session"

	"golang.org/x/sync/singleflight"
)

// IdentityProvider is what the session provider needs from the hosted
// identity service.
type IdentityProvider interface {
	Exchange(ctx context.Context, code, codeVerifier string) (*identity.Tokens, *identity.Claims, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Tokens, error)
	LogoutURL(returnTo string) string
}

// Enrichment step names, used in Failures and metrics.
const (
	StepOrganization = "organization"
	StepUser         = "user"
	StepAccessToken  = "access_token"
)

// SessionProvider owns the session lifecycle: it turns a provider login
// into a persisted session, enriches it with backend identifiers and
// serves cached tokens.
type SessionProvider struct {
	idp      IdentityProvider
	dir      Directory
	sessions session.Store
	tokens   session.TokenStore
	ttl      time.Duration

	refreshes singleflight.Group
	now       func() time.Time
}

func NewSessionProvider(
	idp IdentityProvider,
	dir Directory,
	sessions session.Store,
	tokens session.TokenStore,
	ttl time.Duration,
) *SessionProvider {
	return &SessionProvider{
		idp:      idp,
		dir:      dir,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Complete finishes the authorization code flow. The session is persisted
// as initializing before enrichment starts so a concurrent request sees a
// loading state instead of no session.
func (p *SessionProvider) Complete(ctx context.Context, code, codeVerifier string) (*session.Session, error) {
	tokens, claims, err := p.idp.Exchange(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}

	sid, err := session.GenerateID()
	if err != nil {
		return nil, err
	}

	now := p.now()
	s := session.Session{
		SessionID: sid,
		State:     session.StateInitializing,
		User: session.User{
			Subject:       claims.Subject,
			Email:         claims.Email,
			EmailVerified: claims.EmailVerified,
			Name:          claims.Name,
			Picture:       claims.Picture,
			Role:          claims.Role(),
		},
		Organization: session.Organization{
			ExternalID: claims.OrgID,
			Name:       claims.OrgName,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}

	if err := p.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("auth: persist session: %w", err)
	}

	if err := p.cacheTokens(ctx, sid, tokens); err != nil {
		_ = p.sessions.Delete(ctx, sid)
		return nil, err
	}

	if _, err := p.Enrich(ctx, &s, claims, tokens.AccessToken); err != nil {
		return nil, err
	}

	return &s, nil
}

// Enrich runs the best-effort login steps and moves the session to
// authenticated whatever their outcome. A backend that rejects the new
// session's token ends the login instead; that and a failure to persist
// the session are the only errors returned.
func (p *SessionProvider) Enrich(
	ctx context.Context,
	s *session.Session,
	claims *identity.Claims,
	accessToken string,
) (session.Enrichment, error) {
	ctx = session.WithID(ctx, s.SessionID)
	result := session.Enrichment{Failures: map[string]string{}}

	fail := func(step string, err error) {
		result.Failures[step] = err.Error()
		metrics.RecordEnrichment(step, false)
		logger.Warn("session enrichment step failed", map[string]any{
			"step":  step,
			"sub":   claims.Subject,
			"error": err.Error(),
		})
	}

	// organization
	if claims.OrgID == "" {
		fail(StepOrganization, errors.New("no organization claim"))
	} else if org, err := p.dir.OrgByExternalID(ctx, claims.OrgID); err != nil {
		if errors.Is(err, backend.ErrSessionExpired) {
			return result, p.reject(ctx, s.SessionID, StepOrganization, err)
		}
		fail(StepOrganization, err)
	} else if org.ID == 0 {
		fail(StepOrganization, errors.New("organization not found"))
	} else {
		s.Organization.ID = int64(org.ID)
		if s.Organization.Name == "" {
			s.Organization.Name = org.Name
		}
		result.OrganizationResolved = true
		metrics.RecordEnrichment(StepOrganization, true)
	}

	// user
	user, created, err := p.resolveUser(ctx, s, claims)
	if errors.Is(err, backend.ErrSessionExpired) {
		return result, p.reject(ctx, s.SessionID, StepUser, err)
	}
	if err != nil {
		fail(StepUser, err)
	} else {
		s.User.ID = int64(user.ID)
		if role := user.Role(backend.ID(s.Organization.ID)); role != "" {
			s.User.Role = role
		}
		result.UserResolved = true
		result.UserCreated = created
		metrics.RecordEnrichment(StepUser, true)
	}

	// access credential
	if err := p.cacheAccessToken(ctx, s.SessionID, accessToken); err != nil {
		fail(StepAccessToken, err)
	} else {
		result.AccessTokenCached = true
		metrics.RecordEnrichment(StepAccessToken, true)
	}

	if len(result.Failures) == 0 {
		result.Failures = nil
	}

	s.State = session.StateAuthenticated
	s.Enrichment = result
	if err := p.sessions.Update(ctx, *s); err != nil {
		return result, fmt.Errorf("auth: persist session: %w", err)
	}

	logger.Info("session authenticated", map[string]any{
		"sub":          s.User.Subject,
		"org_resolved": result.OrganizationResolved,
		"user_created": result.UserCreated,
	})

	return result, nil
}

// reject drops a login the backend refused: the session and every cached
// token go, so nothing half-authenticated survives.
func (p *SessionProvider) reject(ctx context.Context, sid, step string, err error) error {
	metrics.RecordEnrichment(step, false)
	logger.Warn("backend rejected new session", map[string]any{
		"step":  step,
		"error": err.Error(),
	})
	if delErr := p.sessions.Delete(ctx, sid); delErr != nil {
		logger.Error("failed to delete rejected session", map[string]any{
			"error": delErr.Error(),
		})
	}
	if clrErr := p.tokens.Clear(ctx, sid); clrErr != nil {
		logger.Error("failed to clear tokens of rejected session", map[string]any{
			"error": clrErr.Error(),
		})
	}
	return fmt.Errorf("auth: %s lookup: %w", step, err)
}

// resolveUser finds the backend user for the principal, creating it only
// when the backend reports it absent.
func (p *SessionProvider) resolveUser(ctx context.Context, s *session.Session, claims *identity.Claims) (backend.User, bool, error) {
	user, err := p.dir.UserByExternalID(ctx, claims.Subject)
	if err == nil && user.ID != 0 {
		return user, false, nil
	}
	if err != nil && backend.StatusOf(err) != http.StatusNotFound {
		return backend.User{}, false, err
	}

	role := claims.Role()
	if role == "" {
		role = session.RoleMember
	}

	user, err = p.dir.CreateUser(ctx, backend.CreateUserRequest{
		Email:   claims.Email,
		Auth0ID: claims.Subject,
		Role:    role,
		OrgID:   backend.ID(s.Organization.ID),
	})
	if err != nil {
		return backend.User{}, false, fmt.Errorf("create user: %w", err)
	}
	if user.Role(0) == "" {
		s.User.Role = role
	}
	return user, true, nil
}

// Resolve returns the session behind sid. A missing or expired session is
// reported as anonymous and whatever was cached for it is dropped.
func (p *SessionProvider) Resolve(ctx context.Context, sid string) (*session.Session, error) {
	anonymous := &session.Session{State: session.StateAnonymous}
	if sid == "" {
		return anonymous, nil
	}

	s, err := p.sessions.Get(ctx, sid)
	if err != nil {
		return nil, err
	}

	if s == nil || p.now().After(s.ExpiresAt) {
		if s != nil {
			_ = p.sessions.Delete(ctx, sid)
		}
		if err := p.tokens.Clear(ctx, sid); err != nil {
			logger.Warn("failed to clear tokens of stale session", map[string]any{
				"error": err.Error(),
			})
		}
		return anonymous, nil
	}

	return s, nil
}

// Logout removes the session and every cached token unconditionally and
// returns the provider logout URL.
func (p *SessionProvider) Logout(ctx context.Context, sid, returnTo string) string {
	if sid != "" {
		if err := p.sessions.Delete(ctx, sid); err != nil {
			logger.Error("failed to delete session", map[string]any{
				"error": err.Error(),
			})
		}
		if err := p.tokens.Clear(ctx, sid); err != nil {
			logger.Error("failed to clear tokens", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return p.idp.LogoutURL(returnTo)
}

func (p *SessionProvider) cacheTokens(ctx context.Context, sid string, t *identity.Tokens) error {
	if t.IDToken != "" {
		if err := p.tokens.Set(ctx, sid, session.KeyIDToken, t.IDToken); err != nil {
			return err
		}
	}
	if t.RefreshToken != "" {
		if err := p.tokens.Set(ctx, sid, session.KeyRefreshToken, t.RefreshToken); err != nil {
			return err
		}
	}
	if !t.Expiry.IsZero() {
		if err := p.tokens.Set(ctx, sid, keyAccessExpiry, t.Expiry.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

// cacheAccessToken stores the access token from the exchange, or fetches a
// fresh one when the exchange did not include it.
func (p *SessionProvider) cacheAccessToken(ctx context.Context, sid, accessToken string) error {
	if accessToken != "" {
		return p.tokens.Set(ctx, sid, session.KeyAccessToken, accessToken)
	}
	_, err := p.AccessToken(ctx, sid)
	return err
}
