package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Saurav036/nexus/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Settings configures the hosted identity provider.
type Settings struct {
	Issuer       string // e.g. https://tenant.auth0.com/
	ClientID     string
	ClientSecret string
	Audience     string
	RedirectURL  string
	// ClaimNamespace prefixes custom claims, e.g. https://nexus.app
	ClaimNamespace string
}

// Tokens is what the provider hands back after an exchange or refresh.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	Expiry       time.Time
}

// AuthorizeOptions are the optional parameters of the authorization
// request. Invitation links carry the first three.
type AuthorizeOptions struct {
	Invitation       string
	Organization     string
	OrganizationName string
	LoginHint        string
	ScreenHint       string // "signup" opens the provider's signup page
}

// Provider implements the OIDC authorization code flow against an
// Auth0-style hosted provider. It returns tokens and claims only; session
// decisions are made by the caller.
type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	issuer      string
	audience    string
	namespace   string
}

// New initializes the provider using OIDC discovery on the issuer.
func New(ctx context.Context, s Settings) (*Provider, error) {
	if s.Issuer == "" || s.ClientID == "" || s.RedirectURL == "" {
		return nil, errors.New("identity: provider config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, s.Issuer)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to init oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: s.ClientID,
	})

	return newProvider(s, oidcProvider.Endpoint(), verifier), nil
}

func newProvider(s Settings, ep oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *Provider {
	oauthCfg := &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  s.RedirectURL,
		Endpoint:     ep,
		Scopes: []string{
			oidc.ScopeOpenID,
			oidc.ScopeOfflineAccess,
			"email",
			"profile",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		verifier:    verifier,
		issuer:      strings.TrimSuffix(s.Issuer, "/"),
		audience:    s.Audience,
		namespace:   strings.TrimSuffix(s.ClaimNamespace, "/"),
	}
}

// AuthCodeURL builds the authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state, codeChallenge string, opts AuthorizeOptions) string {
	params := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	}

	optional := map[string]string{
		"audience":          p.audience,
		"invitation":        opts.Invitation,
		"organization":      opts.Organization,
		"organization_name": opts.OrganizationName,
		"login_hint":        opts.LoginHint,
		"screen_hint":       opts.ScreenHint,
	}
	for k, v := range optional {
		if v != "" {
			params = append(params, oauth2.SetAuthURLParam(k, v))
		}
	}

	return p.oauthConfig.AuthCodeURL(state, params...)
}

// Exchange trades the authorization code for tokens and verifies the ID
// token that came with them.
func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (*Tokens, *Claims, error) {
	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		logger.Error("identity token exchange failed", map[string]any{
			"error": err.Error(),
		})
		return nil, nil, fmt.Errorf("identity: token exchange: %w", err)
	}

	tokens := tokensFrom(token)
	if tokens.IDToken == "" {
		return nil, nil, errors.New("identity: provider did not return id_token")
	}

	claims, err := p.VerifyIDToken(ctx, tokens.IDToken)
	if err != nil {
		return nil, nil, err
	}

	return tokens, claims, nil
}

// VerifyIDToken checks signature, issuer, audience and expiry and returns
// the normalized claims.
func (p *Provider) VerifyIDToken(ctx context.Context, rawIDToken string) (*Claims, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		logger.Error("identity id_token verification failed", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("identity: id_token verification: %w", err)
	}

	var raw map[string]any
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("identity: id_token claims parse failed: %w", err)
	}

	claims := ParseClaims(raw, p.namespace)
	if claims.Subject == "" {
		return nil, errors.New("identity: id_token missing subject")
	}

	logger.Debug("identity id_token verified", map[string]any{
		"issuer":         idToken.Issuer,
		"sub":            claims.Subject,
		"email_verified": claims.EmailVerified,
		"org_present":    claims.OrgID != "",
		"expiry_unix":    idToken.Expiry.Unix(),
	})

	return &claims, nil
}

// Refresh performs silent renewal with a refresh token. The provider may
// rotate the refresh token; when it does not, the old one is kept.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, errors.New("identity: no refresh token")
	}

	ts := p.oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("identity: refresh: %w", err)
	}

	tokens := tokensFrom(token)
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

// LogoutURL ends the provider session and sends the browser to returnTo.
func (p *Provider) LogoutURL(returnTo string) string {
	q := url.Values{}
	q.Set("client_id", p.oauthConfig.ClientID)
	if returnTo != "" {
		q.Set("returnTo", returnTo)
	}
	return p.issuer + "/v2/logout?" + q.Encode()
}

func tokensFrom(token *oauth2.Token) *Tokens {
	idToken, _ := token.Extra("id_token").(string)
	return &Tokens{
		AccessToken:  token.AccessToken,
		IDToken:      idToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
}
