package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults when identity settings are present", func(t *testing.T) {
		t.Setenv("AUTH0_DOMAIN", "tenant.us.auth0.com")
		t.Setenv("AUTH0_CLIENT_ID", "client-123")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
		assert.Equal(t, 30*time.Second, cfg.APITimeout)
		assert.Equal(t, 10*time.Second, cfg.SignupAPITimeout)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.True(t, cfg.CookieSecure)
	})

	t.Run("missing identity settings is an error", func(t *testing.T) {
		t.Setenv("AUTH0_DOMAIN", "")
		t.Setenv("AUTH0_CLIENT_ID", "")

		_, err := Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH0_DOMAIN")
		assert.Contains(t, err.Error(), "AUTH0_CLIENT_ID")
	})

	t.Run("invalid duration is reported", func(t *testing.T) {
		t.Setenv("AUTH0_DOMAIN", "tenant.us.auth0.com")
		t.Setenv("AUTH0_CLIENT_ID", "client-123")
		t.Setenv("API_TIMEOUT", "soon")

		_, err := Load()

		assert.Error(t, err)
	})
}

func TestConfig_Issuer(t *testing.T) {
	assert.Equal(t, "https://tenant.us.auth0.com/", Config{Auth0Domain: "tenant.us.auth0.com"}.Issuer())
	assert.Equal(t, "http://localhost:9000/", Config{Auth0Domain: "http://localhost:9000/"}.Issuer())
}

func TestConfig_CallbackURL(t *testing.T) {
	cfg := Config{PublicURL: "https://app.example.com/"}
	assert.Equal(t, "https://app.example.com/callback", cfg.CallbackURL())
}
