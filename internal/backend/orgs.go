package backend

import (
	"context"
	"net/http"
	"net/url"
)

// OrgsService manages backend organization records.
type OrgsService struct {
	c *Client
}

func (s *OrgsService) Get(ctx context.Context, id ID) (Org, error) {
	return call[Org](ctx, s.c, http.MethodGet, "/api/v1/orgs/"+id.String(), nil)
}

// GetByExternalID resolves the backend organization for an
// identity-provider organization id.
func (s *OrgsService) GetByExternalID(ctx context.Context, externalID string) (Org, error) {
	return call[Org](ctx, s.c, http.MethodGet, "/api/v1/orgs/auth0/"+url.PathEscape(externalID), nil)
}

func (s *OrgsService) Update(ctx context.Context, id ID, req UpdateOrgRequest) (Org, error) {
	return call[Org](ctx, s.c, http.MethodPatch, "/api/v1/orgs/"+id.String(), req)
}

