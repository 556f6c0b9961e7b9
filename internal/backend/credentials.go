package backend

import (
	"context"
	"net/http"
)

type CredentialsService struct {
	c *Client
}

func (s *CredentialsService) List(ctx context.Context) ([]Credential, error) {
	return call[[]Credential](ctx, s.c, http.MethodGet, "/api/v1/credentials", nil)
}

func (s *CredentialsService) Get(ctx context.Context, id ID) (Credential, error) {
	return call[Credential](ctx, s.c, http.MethodGet, "/api/v1/credentials/"+id.String(), nil)
}

func (s *CredentialsService) Create(ctx context.Context, req CreateCredentialRequest) (Credential, error) {
	return call[Credential](ctx, s.c, http.MethodPost, "/api/v1/credentials", req)
}

func (s *CredentialsService) Update(ctx context.Context, id ID, req UpdateCredentialRequest) (Credential, error) {
	return call[Credential](ctx, s.c, http.MethodPatch, "/api/v1/credentials/"+id.String(), req)
}

func (s *CredentialsService) Delete(ctx context.Context, id ID) error {
	return s.c.do(ctx, http.MethodDelete, "/api/v1/credentials/"+id.String(), nil, nil)
}
