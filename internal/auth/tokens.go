package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/identity"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/metrics"
	"github.com/Saurav036/nexus/internal/session"

	"github.com/golang-jwt/jwt/v5"
)

// keyAccessExpiry holds the provider-reported expiry of an opaque access
// token.
const keyAccessExpiry = session.ProviderPrefix + "expires_at"

// tokens are treated as expired slightly early so they do not lapse in
// flight
const expirySkew = 30 * time.Second

var (
	ErrNoRefreshToken   = errors.New("auth: no refresh token cached")
	ErrTokenUnavailable = errors.New("auth: token not available")
)

// AccessToken returns the cached access token while it is still valid,
// otherwise renews it through the provider and persists the result.
func (p *SessionProvider) AccessToken(ctx context.Context, sid string) (string, error) {
	return p.token(ctx, sid, session.KeyAccessToken)
}

// IDToken follows the same pattern for the identity token.
func (p *SessionProvider) IDToken(ctx context.Context, sid string) (string, error) {
	return p.token(ctx, sid, session.KeyIDToken)
}

func (p *SessionProvider) token(ctx context.Context, sid, key string) (string, error) {
	cached, err := p.tokens.Get(ctx, sid, key)
	if err != nil {
		return "", err
	}
	if cached != "" && p.fresh(ctx, sid, key, cached) {
		return cached, nil
	}

	// one refresh per session at a time; it renews both tokens
	v, err, _ := p.refreshes.Do(sid, func() (any, error) {
		return p.refresh(context.WithoutCancel(ctx), sid)
	})
	if err != nil {
		metrics.RecordRefresh(key, false)
		if delErr := p.tokens.Delete(ctx, sid, key); delErr != nil {
			logger.Warn("failed to drop stale token", map[string]any{
				"key":   key,
				"error": delErr.Error(),
			})
		}
		return "", err
	}
	metrics.RecordRefresh(key, true)

	t := v.(*identity.Tokens)
	switch key {
	case session.KeyAccessToken:
		if t.AccessToken != "" {
			return t.AccessToken, nil
		}
	case session.KeyIDToken:
		if t.IDToken != "" {
			return t.IDToken, nil
		}
	}
	return "", ErrTokenUnavailable
}

func (p *SessionProvider) refresh(ctx context.Context, sid string) (*identity.Tokens, error) {
	rt, err := p.tokens.Get(ctx, sid, session.KeyRefreshToken)
	if err != nil {
		return nil, err
	}
	if rt == "" {
		return nil, ErrNoRefreshToken
	}

	t, err := p.idp.Refresh(ctx, rt)
	if err != nil {
		logger.Warn("token refresh failed", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	if t.AccessToken != "" {
		if err := p.tokens.Set(ctx, sid, session.KeyAccessToken, t.AccessToken); err != nil {
			return nil, err
		}
	}
	if err := p.cacheTokens(ctx, sid, t); err != nil {
		return nil, err
	}
	return t, nil
}

// fresh reports whether a cached token can still be used. JWTs carry
// their own exp; opaque access tokens fall back to the stored expiry.
func (p *SessionProvider) fresh(ctx context.Context, sid, key, raw string) bool {
	deadline := p.now().Add(expirySkew)

	if exp, ok := jwtExpiry(raw); ok {
		return deadline.Before(exp)
	}

	if key != session.KeyAccessToken {
		return false
	}
	stored, err := p.tokens.Get(ctx, sid, keyAccessExpiry)
	if err != nil || stored == "" {
		return false
	}
	exp, err := time.Parse(time.RFC3339, stored)
	if err != nil {
		return false
	}
	return deadline.Before(exp)
}

// jwtExpiry reads exp without verifying the signature; the token came from
// our own cache and is only inspected for freshness.
func jwtExpiry(raw string) (time.Time, bool) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// BackendTokens is the token capability handed to the backend client. It
// serves the identity token of the session found in the request context,
// renewing it when needed.
func (p *SessionProvider) BackendTokens() backend.TokenProvider {
	return contextTokens{p: p}
}

type contextTokens struct {
	p *SessionProvider
}

func (t contextTokens) IDToken(ctx context.Context) (string, error) {
	sid, ok := session.IDFromContext(ctx)
	if !ok {
		return "", nil
	}
	return t.p.IDToken(ctx, sid)
}

func (t contextTokens) Clear(ctx context.Context) error {
	sid, ok := session.IDFromContext(ctx)
	if !ok {
		return nil
	}
	return t.p.tokens.Clear(ctx, sid)
}
