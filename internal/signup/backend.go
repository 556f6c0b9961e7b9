package signup

import (
	"context"

	"github.com/Saurav036/nexus/internal/backend"
)

// Backend is the set of remote operations the signup flow sequences.
type Backend interface {
	// CheckEmail succeeds only when the email already belongs to a user.
	CheckEmail(ctx context.Context, email string) error
	// CheckOrganization returns nil when no organization owns the domain.
	CheckOrganization(ctx context.Context, domain string) (*backend.Organization, error)
	CreateIdentityUser(ctx context.Context, email, name string) (string, error)
	AssignMember(ctx context.Context, orgExternalID, userID string) error
	RegisterWithOrg(ctx context.Context, email string, orgID backend.ID) (backend.RegisterWithOrgResponse, error)
	RegisterOrganization(ctx context.Context, req backend.RegisterOrganizationRequest) error
}

type apiBackend struct {
	api *backend.API
}

// NewBackend adapts the backend API to the signup flow.
func NewBackend(api *backend.API) Backend {
	return apiBackend{api: api}
}

func (b apiBackend) CheckEmail(ctx context.Context, email string) error {
	_, err := b.api.Auth.CheckEmail(ctx, email)
	return err
}

func (b apiBackend) CheckOrganization(ctx context.Context, domain string) (*backend.Organization, error) {
	res, err := b.api.Auth.CheckOrganization(ctx, domain)
	if err != nil {
		return nil, err
	}
	if !res.Exists || res.Organization == nil {
		return nil, nil
	}
	return res.Organization, nil
}

func (b apiBackend) CreateIdentityUser(ctx context.Context, email, name string) (string, error) {
	u, err := b.api.Identity.CreateUser(ctx, backend.CreateIdentityUserRequest{
		Email: email,
		Name:  name,
	})
	if err != nil {
		return "", err
	}
	return u.UserID, nil
}

func (b apiBackend) AssignMember(ctx context.Context, orgExternalID, userID string) error {
	return b.api.Identity.AssignMembers(ctx, orgExternalID, userID)
}

func (b apiBackend) RegisterWithOrg(ctx context.Context, email string, orgID backend.ID) (backend.RegisterWithOrgResponse, error) {
	return b.api.Auth.RegisterWithOrg(ctx, backend.RegisterWithOrgRequest{
		Email:          email,
		OrganizationID: orgID,
	})
}

func (b apiBackend) RegisterOrganization(ctx context.Context, req backend.RegisterOrganizationRequest) error {
	return b.api.Identity.Register(ctx, req)
}
