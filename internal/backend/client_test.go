package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token   string
	cleared atomic.Int32
}

func (f *fakeTokens) IDToken(context.Context) (string, error) { return f.token, nil }
func (f *fakeTokens) Clear(context.Context) error {
	f.cleared.Add(1)
	return nil
}

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotCT string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusOK, map[string]any{"statusCode": 200, "result": map[string]any{"status": "ok"}})
	})

	c := NewClient(srv.URL, time.Second, &fakeTokens{token: "id-tok"})
	require.NoError(t, c.do(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Equal(t, "Bearer id-tok", gotAuth)
	assert.Equal(t, "application/json", gotCT)
}

func TestClient_MissingTokenIsNotFatal(t *testing.T) {
	var gotAuth string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	c := NewClient(srv.URL, time.Second, &fakeTokens{})
	require.NoError(t, c.do(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Empty(t, gotAuth)

	c = NewClient(srv.URL, time.Second, nil)
	require.NoError(t, c.do(context.Background(), http.MethodGet, "/x", nil, nil))
}

func TestClient_EnvelopeResultAndLegacyData(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"result", map[string]any{"statusCode": 200, "result": map[string]any{"id": 7, "email": "a@b.io"}}},
		{"legacy data", map[string]any{"statusCode": 200, "data": map[string]any{"id": "7", "email": "a@b.io"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			api := NewAPI(NewClient(srv.URL, time.Second, nil))

			u, err := api.Users.Get(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, ID(7), u.ID)
			assert.Equal(t, "a@b.io", u.Email)
		})
	}
}

func TestClient_Unauthorized(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "jwt expired"})
	})
	tokens := &fakeTokens{token: "stale"}
	api := NewAPI(NewClient(srv.URL, time.Second, tokens))

	// every endpoint behaves the same
	_, err := api.Reports.ListByOrganization(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Equal(t, "Your session has expired. Please login again.", err.Error())

	_, err = api.Orgs.Get(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, int32(2), tokens.cleared.Load())
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		message string
	}{
		{"message field", http.StatusConflict, map[string]any{"message": "Organization already exists"}, "Organization already exists"},
		{"message list", http.StatusBadRequest, map[string]any{"message": []string{"email must be an email", "name is required"}}, "email must be an email, name is required"},
		{"no message", http.StatusInternalServerError, map[string]any{"error": "boom"}, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			c := NewClient(srv.URL, time.Second, nil)

			err := c.do(context.Background(), http.MethodGet, "/x", nil, nil)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.NotEmpty(t, apiErr.Payload)
			assert.False(t, errors.Is(err, ErrSessionExpired))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	err := c.do(context.Background(), http.MethodGet, "/x", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "Network error - no response received", apiErr.Message)
	assert.True(t, IsNetwork(err))
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})

	c := NewClient(srv.URL, 20*time.Millisecond, nil)
	err := c.do(context.Background(), http.MethodGet, "/slow", nil, nil)
	assert.True(t, IsNetwork(err))
	assert.False(t, errors.Is(err, ErrCancelled))
}

func TestClient_Cancelled(t *testing.T) {
	started := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	c := NewClient(srv.URL, 5*time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := c.do(ctx, http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_RequestSetupFailure(t *testing.T) {
	c := NewClient("http://[::1", time.Second, nil)
	err := c.do(context.Background(), http.MethodGet, "/x", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
}

func TestID_UnmarshalJSON(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12, "b": "34", "c": null}`), &v))
	assert.Equal(t, ID(12), v.A)
	assert.Equal(t, ID(34), v.B)
	assert.Equal(t, ID(0), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "x1"}`), &v))
}
