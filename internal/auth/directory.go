package auth

import (
	"context"

	"github.com/Saurav036/nexus/internal/backend"
)

// Directory is the slice of the backend the session provider needs to
// enrich a login.
type Directory interface {
	OrgByExternalID(ctx context.Context, externalID string) (backend.Org, error)
	UserByExternalID(ctx context.Context, externalID string) (backend.User, error)
	CreateUser(ctx context.Context, req backend.CreateUserRequest) (backend.User, error)
}

type backendDirectory struct {
	api *backend.API
}

// BackendDirectory adapts the backend API to Directory.
func BackendDirectory(api *backend.API) Directory {
	return backendDirectory{api: api}
}

func (d backendDirectory) OrgByExternalID(ctx context.Context, externalID string) (backend.Org, error) {
	return d.api.Orgs.GetByExternalID(ctx, externalID)
}

func (d backendDirectory) UserByExternalID(ctx context.Context, externalID string) (backend.User, error) {
	return d.api.Users.GetByExternalID(ctx, externalID)
}

func (d backendDirectory) CreateUser(ctx context.Context, req backend.CreateUserRequest) (backend.User, error) {
	return d.api.Users.Create(ctx, req)
}
