package backend

import (
	"context"
	"net/http"
)

type HealthService struct {
	c *Client
}

// Check calls the backend health endpoint. The body is not enveloped.
func (s *HealthService) Check(ctx context.Context) (HealthCheck, error) {
	var out HealthCheck
	err := s.c.do(ctx, http.MethodGet, "/api/v1/health", nil, &out)
	return out, err
}
