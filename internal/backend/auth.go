package backend

import (
	"context"
	"net/http"
	"net/url"
)

// AuthService covers the unauthenticated signup checks and registration.
type AuthService struct {
	c *Client
}

// CheckEmail succeeds only when a user with this email exists.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (CheckEmailResult, error) {
	return call[CheckEmailResult](ctx, s.c, http.MethodPost, "/api/v1/auth/check-email",
		map[string]string{"email": email})
}

func (s *AuthService) CheckOrganization(ctx context.Context, domain string) (CheckOrganizationResult, error) {
	return call[CheckOrganizationResult](ctx, s.c, http.MethodPost, "/api/v1/auth0/check-organization",
		map[string]string{"domain": domain})
}

func (s *AuthService) RegisterWithOrg(ctx context.Context, req RegisterWithOrgRequest) (RegisterWithOrgResponse, error) {
	var out RegisterWithOrgResponse
	err := s.c.do(ctx, http.MethodPost, "/api/v1/auth/register-with-org", req, &out)
	return out, err
}

// Invite sends an identity-provider invitation into the organization.
func (s *AuthService) Invite(ctx context.Context, orgExternalID, email, inviterName string) error {
	path := "/api/v1/auth0/organizations/" + url.PathEscape(orgExternalID) + "/invitations"
	return s.c.do(ctx, http.MethodPost, path, InvitationRequest{
		Email:       email,
		InviterName: inviterName,
	}, nil)
}
