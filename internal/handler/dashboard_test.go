package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/Saurav036/nexus/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"message":    "ok",
		"result":     result,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"message":    message,
	})
}

func TestDashboard_Roles(t *testing.T) {
	env := newEnv(t)
	env.mux.HandleFunc("GET /api/v1/users/organization/7", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []map[string]any{{"id": 1, "email": "jane@acme.io"}})
	})

	rec := env.do(request{method: http.MethodGet, path: "/dashboard", sid: "member"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["is_admin"])

	rec = env.do(request{method: http.MethodGet, path: "/api/users", sid: "member"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/dashboard", decode(t, rec)["redirect"])

	rec = env.do(request{method: http.MethodGet, path: "/api/users", sid: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"email":"jane@acme.io","auth0Id":""}]`, rec.Body.String())

	rec = env.do(request{method: http.MethodGet, path: "/api/users"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboard_MissingOrganization(t *testing.T) {
	env := newEnv(t)
	env.sessions.add(member("orphan", session.RoleAdmin, 0))

	rec := env.do(request{method: http.MethodGet, path: "/api/reports", sid: "orphan"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Organization information is missing", decode(t, rec)["error"])
}

func TestDashboard_ErrorMapping(t *testing.T) {
	env := newEnv(t)
	env.mux.HandleFunc("GET /api/v1/reports/1", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Report not found")
	})
	env.mux.HandleFunc("GET /api/v1/reports/2", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "database exploded")
	})
	env.mux.HandleFunc("PATCH /api/v1/orgs/7", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusConflict, "duplicate key")
	})
	env.mux.HandleFunc("GET /api/v1/reports/3", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "jwt expired")
	})

	rec := env.do(request{method: http.MethodGet, path: "/api/reports/1", sid: "member"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Report not found", decode(t, rec)["error"])

	rec = env.do(request{method: http.MethodGet, path: "/api/reports/2", sid: "member"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgUnexpected, decode(t, rec)["error"])

	rec = env.do(request{method: http.MethodPatch, path: "/api/organization", sid: "admin", body: map[string]string{"name": "acme-two"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "An organization with this name or domain already exists.", decode(t, rec)["error"])

	rec = env.do(request{method: http.MethodGet, path: "/api/reports/abc", sid: "member"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// a rejected session ends here too
	rec = env.do(request{method: http.MethodGet, path: "/api/reports/3", sid: "member"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", decode(t, rec)["redirect"])
	assert.Equal(t, []string{"member"}, env.sessions.loggedOut)
}

func TestDashboard_NetworkError(t *testing.T) {
	env := newEnv(t)
	env.backend.Close()

	rec := env.do(request{method: http.MethodGet, path: "/api/reports", sid: "member"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Network error - please try again", decode(t, rec)["error"])
}

func TestDashboard_ValidationErrors(t *testing.T) {
	env := newEnv(t)

	rec := env.do(request{method: http.MethodPost, path: "/api/users/invite", sid: "admin", body: map[string]string{"email": "nope"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Equal(t, "Please enter a valid email address", errs["email"])

	rec = env.do(request{method: http.MethodPost, path: "/api/connections", sid: "admin", body: map[string]string{
		"name":           "prod",
		"server":         "https://tableau.acme.io",
		"connectionType": "PAT",
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs = decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "tokenName")
	assert.Contains(t, errs, "tokenSecret")
}

func TestDashboard_InviteUser(t *testing.T) {
	env := newEnv(t)
	var got map[string]string
	env.mux.HandleFunc("POST /api/v1/auth0/organizations/org_1/invitations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeEnvelope(w, http.StatusCreated, map[string]any{"id": "inv_1"})
	})

	rec := env.do(request{method: http.MethodPost, path: "/api/users/invite", sid: "admin", body: map[string]string{"email": "new@acme.io"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "An invitation has been sent to new@acme.io", decode(t, rec)["message"])
	assert.Equal(t, "new@acme.io", got["email"])
	assert.Equal(t, "Jane", got["inviter_name"])
}

func TestDashboard_ConnectionWithCredential(t *testing.T) {
	env := newEnv(t)
	env.mux.HandleFunc("GET /api/v1/connections/4", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"id": 4, "orgId": 7, "credentialId": 9, "name": "prod"})
	})
	env.mux.HandleFunc("GET /api/v1/credentials/9", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"id": 9, "tokenName": "bot", "credentialType": "PAT"})
	})

	rec := env.do(request{method: http.MethodGet, path: "/api/connections/4", sid: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	cred := decode(t, rec)["credential"].(map[string]any)
	assert.Equal(t, "bot", cred["tokenName"])
}

func TestDashboard_DownloadReport(t *testing.T) {
	env := newEnv(t)
	var auth string
	var params map[string]any
	env.mux.HandleFunc("GET /api/v1/reports/5/api-details", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"apiUrl":    env.backend.URL + "/export/5",
			"apiSecret": "s3cret",
		})
	})
	env.mux.HandleFunc("POST /export/5", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("X-Nexus-Auth")
		_ = json.NewDecoder(r.Body).Decode(&params)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
		_, _ = io.WriteString(w, "region,total\nnorth,10\n")
	})

	rec := env.do(request{method: http.MethodPost, path: "/api/reports/5/download", sid: "member", body: map[string]any{
		"reportParameters": []map[string]string{{"name": "region", "value": "north"}},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sales.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "region,total\nnorth,10\n", rec.Body.String())
	assert.Equal(t, "s3cret", auth)
	assert.Len(t, params["reportParameters"], 1)
}

func TestDashboard_Tableau(t *testing.T) {
	env := newEnv(t)
	env.mux.HandleFunc("GET /api/v1/tableau/4/workbook/wb-1/views", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []map[string]string{{"id": "v-1", "name": "Sales"}})
	})

	rec := env.do(request{method: http.MethodGet, path: "/api/tableau/connections/4/workbooks/wb-1/views", sid: "member"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"v-1","name":"Sales"}]`, rec.Body.String())
}

func TestDashboard_Credentials(t *testing.T) {
	env := newEnv(t)
	var created map[string]any
	var deleted bool
	env.mux.HandleFunc("GET /api/v1/credentials", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []map[string]any{
			{"id": 9, "orgId": 7, "tokenName": "bot", "credentialType": "PAT"},
			{"id": 10, "orgId": 8, "tokenName": "other", "credentialType": "PAT"},
		})
	})
	env.mux.HandleFunc("POST /api/v1/credentials", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&created)
		writeEnvelope(w, http.StatusCreated, map[string]any{"id": 11, "orgId": 7, "tokenName": "ci"})
	})
	env.mux.HandleFunc("PATCH /api/v1/credentials/9", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"id": 9, "orgId": 7, "tokenName": "renamed"})
	})
	env.mux.HandleFunc("DELETE /api/v1/credentials/9", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	rec := env.do(request{method: http.MethodGet, path: "/api/credentials", sid: "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "bot", listed[0]["tokenName"])

	rec = env.do(request{method: http.MethodPost, path: "/api/credentials", sid: "admin", body: map[string]any{
		"orgId":          99,
		"connectionType": "PAT",
		"tokenName":      "ci",
		"tokenSecret":    "s3cret",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(7), created["orgId"])
	assert.Equal(t, "s3cret", created["tokenSecret"])

	rec = env.do(request{method: http.MethodPost, path: "/api/credentials", sid: "admin", body: map[string]string{
		"connectionType": "USERNAME",
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")

	rec = env.do(request{method: http.MethodPatch, path: "/api/credentials/9", sid: "admin", body: map[string]string{"tokenName": "renamed"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "renamed", decode(t, rec)["tokenName"])

	rec = env.do(request{method: http.MethodDelete, path: "/api/credentials/9", sid: "admin"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)

	rec = env.do(request{method: http.MethodGet, path: "/api/credentials", sid: "member"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
