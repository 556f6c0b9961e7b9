package backend

import (
	"context"
	"net/http"
)

type ConnectionsService struct {
	c *Client
}

func (s *ConnectionsService) ListByOrganization(ctx context.Context, orgID ID) ([]Connection, error) {
	return call[[]Connection](ctx, s.c, http.MethodGet, "/api/v1/connections/org/"+orgID.String(), nil)
}

func (s *ConnectionsService) Get(ctx context.Context, id ID) (Connection, error) {
	return call[Connection](ctx, s.c, http.MethodGet, "/api/v1/connections/"+id.String(), nil)
}

// CreateWithCredentials creates the connection and its credential together.
func (s *ConnectionsService) CreateWithCredentials(ctx context.Context, req CreateConnectionRequest) (Connection, error) {
	return call[Connection](ctx, s.c, http.MethodPost, "/api/v1/connections", req)
}

func (s *ConnectionsService) Update(ctx context.Context, id ID, req UpdateConnectionRequest) (Connection, error) {
	return call[Connection](ctx, s.c, http.MethodPatch, "/api/v1/connections/"+id.String(), req)
}

func (s *ConnectionsService) Delete(ctx context.Context, id ID) error {
	return s.c.do(ctx, http.MethodDelete, "/api/v1/connections/"+id.String(), nil, nil)
}
