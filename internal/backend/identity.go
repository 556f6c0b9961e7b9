package backend

import (
	"context"
	"net/http"
	"net/url"
)

const identityBase = "/api/v1/auth0"

// IdentityService manages identity-provider users and organizations through
// the backend.
type IdentityService struct {
	c *Client
}

// createIdentityUserResponse tolerates the id at the top level as well as
// inside the envelope.
type createIdentityUserResponse struct {
	Envelope[IdentityUser]
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (s *IdentityService) CreateUser(ctx context.Context, req CreateIdentityUserRequest) (IdentityUser, error) {
	var out createIdentityUserResponse
	if err := s.c.do(ctx, http.MethodPost, identityBase+"/users", req, &out); err != nil {
		return IdentityUser{}, err
	}
	if u, ok := out.Value(); ok && u.UserID != "" {
		return u, nil
	}
	return IdentityUser{UserID: out.UserID, Email: out.Email}, nil
}

// AssignMembers adds principals to an identity-provider organization.
func (s *IdentityService) AssignMembers(ctx context.Context, orgExternalID string, userIDs ...string) error {
	path := identityBase + "/organizations/" + url.PathEscape(orgExternalID) + "/members"
	return s.c.do(ctx, http.MethodPost, path, map[string][]string{"members": userIDs}, nil)
}

// Register creates organization, user and mapping in one call.
func (s *IdentityService) Register(ctx context.Context, req RegisterOrganizationRequest) error {
	return s.c.do(ctx, http.MethodPost, identityBase+"/register", req, nil)
}
