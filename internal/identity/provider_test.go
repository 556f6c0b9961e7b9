package identity

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://tenant.example.com/"
	testClientID = "client-123"
	testNS       = "https://nexus.app"
)

type fakeIdP struct {
	t      *testing.T
	key    *rsa.PrivateKey
	server *httptest.Server
	// last form posted to the token endpoint
	form url.Values
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeIdP{t: t, key: key}
	f.server = httptest.NewServer(http.HandlerFunc(f.token))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIdP) sign(claims jwt.MapClaims) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	s, err := tok.SignedString(f.key)
	require.NoError(f.t, err)
	return s
}

func (f *fakeIdP) idToken(extra map[string]any) string {
	claims := jwt.MapClaims{
		"iss":            testIssuer,
		"aud":            testClientID,
		"sub":            "auth0|u1",
		"email":          "jane@acme.io",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return f.sign(claims)
}

func (f *fakeIdP) token(w http.ResponseWriter, r *http.Request) {
	require.NoError(f.t, r.ParseForm())
	f.form = r.PostForm

	resp := map[string]any{
		"access_token": "access-" + r.PostForm.Get("grant_type"),
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     f.idToken(map[string]any{testNS + "/org_id": "org_abc", "roles": []string{"admin"}}),
	}
	if r.PostForm.Get("grant_type") == "authorization_code" {
		resp["refresh_token"] = "refresh-1"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeIdP) provider() *Provider {
	verifier := oidc.NewVerifier(
		testIssuer,
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&f.key.PublicKey}},
		&oidc.Config{ClientID: testClientID},
	)
	return newProvider(Settings{
		Issuer:         testIssuer,
		ClientID:       testClientID,
		ClientSecret:   "secret",
		Audience:       "https://api.nexus.app",
		RedirectURL:    "http://localhost:8080/callback",
		ClaimNamespace: testNS,
	}, oauth2.Endpoint{
		AuthURL:   testIssuer + "authorize",
		TokenURL:  f.server.URL + "/oauth/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, verifier)
}

func TestProvider_AuthCodeURL(t *testing.T) {
	p := newFakeIdP(t).provider()

	raw := p.AuthCodeURL("st", "chal", AuthorizeOptions{
		Invitation:       "inv_1",
		Organization:     "org_1",
		OrganizationName: "acme",
		LoginHint:        "jane@acme.io",
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "chal", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "inv_1", q.Get("invitation"))
	assert.Equal(t, "org_1", q.Get("organization"))
	assert.Equal(t, "acme", q.Get("organization_name"))
	assert.Equal(t, "jane@acme.io", q.Get("login_hint"))
	assert.Equal(t, "https://api.nexus.app", q.Get("audience"))
	assert.False(t, q.Has("screen_hint"))
	assert.Contains(t, q.Get("scope"), "offline_access")
}

func TestProvider_Exchange(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider()

	tokens, claims, err := p.Exchange(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "access-authorization_code", tokens.AccessToken)
	assert.Equal(t, "refresh-1", tokens.RefreshToken)
	assert.NotEmpty(t, tokens.IDToken)
	assert.Equal(t, "verifier-1", idp.form.Get("code_verifier"))

	assert.Equal(t, "auth0|u1", claims.Subject)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, "org_abc", claims.OrgID)
	assert.Equal(t, "ADMIN", claims.Role())
}

func TestProvider_VerifyIDToken_Rejects(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider()

	expired := idp.idToken(map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})
	_, err := p.VerifyIDToken(context.Background(), expired)
	assert.Error(t, err)

	wrongAud := idp.idToken(map[string]any{"aud": "someone-else"})
	_, err = p.VerifyIDToken(context.Background(), wrongAud)
	assert.Error(t, err)
}

func TestProvider_Refresh(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider()

	tokens, err := p.Refresh(context.Background(), "refresh-old")
	require.NoError(t, err)
	assert.Equal(t, "refresh_token", idp.form.Get("grant_type"))
	assert.Equal(t, "access-refresh_token", tokens.AccessToken)
	assert.NotEmpty(t, tokens.IDToken)
	// not rotated by the provider, so the old one is kept
	assert.Equal(t, "refresh-old", tokens.RefreshToken)

	_, err = p.Refresh(context.Background(), "")
	assert.Error(t, err)
}

func TestProvider_LogoutURL(t *testing.T) {
	p := newFakeIdP(t).provider()

	got := p.LogoutURL("http://localhost:8080")
	assert.Equal(t,
		"https://tenant.example.com/v2/logout?client_id=client-123&returnTo=http%3A%2F%2Flocalhost%3A8080",
		got,
	)
}
