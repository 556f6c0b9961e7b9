package backend

import (
	"context"
	"net/http"
	"net/url"
)

type UsersService struct {
	c *Client
}

func (s *UsersService) Get(ctx context.Context, id ID) (User, error) {
	return call[User](ctx, s.c, http.MethodGet, "/api/v1/users/"+id.String(), nil)
}

// GetByExternalID looks a user up by identity-provider id.
func (s *UsersService) GetByExternalID(ctx context.Context, externalID string) (User, error) {
	return call[User](ctx, s.c, http.MethodGet, "/api/v1/users/auth0/"+url.PathEscape(externalID), nil)
}

func (s *UsersService) ListByOrganization(ctx context.Context, orgID ID) ([]User, error) {
	return call[[]User](ctx, s.c, http.MethodGet, "/api/v1/users/organization/"+orgID.String(), nil)
}

func (s *UsersService) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	return call[User](ctx, s.c, http.MethodPost, "/api/v1/users", req)
}

func (s *UsersService) Update(ctx context.Context, id ID, req UpdateUserRequest) (User, error) {
	return call[User](ctx, s.c, http.MethodPatch, "/api/v1/users/"+id.String(), req)
}

func (s *UsersService) Delete(ctx context.Context, id ID) error {
	return s.c.do(ctx, http.MethodDelete, "/api/v1/users/"+id.String(), nil, nil)
}
