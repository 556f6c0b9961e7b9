package backend

import "encoding/json"

// User is a backend users row with its organization memberships.
type User struct {
	ID          ID           `json:"id"`
	Email       string       `json:"email"`
	Auth0ID     string       `json:"auth0Id"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
	Memberships []Membership `json:"UserOrgMaps,omitempty"`
}

type Membership struct {
	Role string `json:"role"`
	Org  Org    `json:"org"`
}

// Role returns the user's role in the given organization, or the first
// membership's role when orgID is 0.
func (u User) Role(orgID ID) string {
	for _, m := range u.Memberships {
		if orgID == 0 || m.Org.ID == orgID {
			return m.Role
		}
	}
	return ""
}

type CreateUserRequest struct {
	Email   string `json:"email"`
	Auth0ID string `json:"auth0Id"`
	Role    string `json:"role,omitempty"`
	OrgID   ID     `json:"orgId,omitempty"`
}

type UpdateUserRequest struct {
	Email   string `json:"email,omitempty"`
	Auth0ID string `json:"auth0Id,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Org is a backend organization. Auth0ID is the identity-provider id of the
// same organization.
type Org struct {
	ID               ID     `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"displayName,omitempty"`
	Domain           string `json:"domain"`
	Auth0ID          string `json:"auth0Id"`
	OrgEncryptionKey string `json:"orgEncryptionKey,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
}

type UpdateOrgRequest struct {
	Name    string `json:"name,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Auth0ID string `json:"auth0Id,omitempty"`
}

// Connection is a Tableau server connection.
type Connection struct {
	ID           ID          `json:"id"`
	OrgID        ID          `json:"orgId"`
	CredentialID ID          `json:"credentialId"`
	Name         string      `json:"name"`
	Server       string      `json:"server"`
	Site         string      `json:"site"`
	IsActive     *bool       `json:"isActive,omitempty"`
	Credential   *Credential `json:"credential,omitempty"`
	CreatedAt    string      `json:"createdAt,omitempty"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
}

// CreateConnectionRequest creates a connection and its credential in one
// call. ConnectionType selects which of the secret pairs is used.
type CreateConnectionRequest struct {
	OrgID          ID     `json:"orgId"`
	Name           string `json:"name"`
	Server         string `json:"server"`
	Site           string `json:"site"`
	ConnectionType string `json:"connectionType"`
	TokenName      string `json:"tokenName,omitempty"`
	TokenSecret    string `json:"tokenSecret,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
}

type UpdateConnectionRequest struct {
	Name         string `json:"name,omitempty"`
	Server       string `json:"server,omitempty"`
	Site         string `json:"site,omitempty"`
	CredentialID ID     `json:"credentialId,omitempty"`
	IsActive     *bool  `json:"isActive,omitempty"`
}

type Credential struct {
	ID                  ID     `json:"id"`
	OrgID               ID     `json:"orgId"`
	CredentialName      string `json:"credentialName"`
	CredentialType      string `json:"credentialType"`
	TokenName           string `json:"tokenName"`
	EncryptedTokenValue string `json:"encryptedTokenValue,omitempty"`
	CreatedAt           string `json:"createdAt,omitempty"`
	UpdatedAt           string `json:"updatedAt,omitempty"`
}

type CreateCredentialRequest struct {
	OrgID          ID     `json:"orgId"`
	ConnectionType string `json:"connectionType"`
	TokenName      string `json:"tokenName,omitempty"`
	TokenSecret    string `json:"tokenSecret,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
}

type UpdateCredentialRequest struct {
	CredentialName      string `json:"credentialName,omitempty"`
	CredentialType      string `json:"credentialType,omitempty"`
	TokenName           string `json:"tokenName,omitempty"`
	EncryptedTokenValue string `json:"encryptedTokenValue,omitempty"`
}

// Report is a configured Tableau view export.
type Report struct {
	ID           ID              `json:"id"`
	ConnectionID ID              `json:"connectionId"`
	WorkbookName string          `json:"workbookName"`
	ViewName     string          `json:"viewName"`
	WorkbookID   string          `json:"workbookId"`
	ViewID       string          `json:"viewId"`
	FileFormat   string          `json:"fileFormat"`
	Orientation  string          `json:"orientation"`
	APIKey       string          `json:"apiKey"`
	Parameters   json.RawMessage `json:"parameters,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
}

// ReportRequest is used for both create and update.
type ReportRequest struct {
	ConnectionID ID              `json:"connectionId,omitempty"`
	WorkbookName string          `json:"workbookName,omitempty"`
	ViewName     string          `json:"viewName,omitempty"`
	WorkbookID   string          `json:"workbookId,omitempty"`
	ViewID       string          `json:"viewId,omitempty"`
	FileFormat   string          `json:"fileFormat,omitempty"`
	Orientation  string          `json:"orientation,omitempty"`
	APIKey       string          `json:"apiKey,omitempty"`
	APISecret    string          `json:"apiSecret,omitempty"`
	Parameters   json.RawMessage `json:"parameters,omitempty"`
}

// ReportAPIDetails is how an external caller reaches a report export.
type ReportAPIDetails struct {
	APIURL    string `json:"apiUrl"`
	APISecret string `json:"apiSecret"`
	APIKey    string `json:"apiKey,omitempty"`
}

type Workbook struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type View struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type HealthCheck struct {
	Status  string         `json:"status"`
	Info    map[string]any `json:"info,omitempty"`
	Error   map[string]any `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Organization is the organization shape returned by the signup checks.
type Organization struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Domain      string `json:"domain"`
	Auth0ID     string `json:"auth0Id,omitempty"`
}

type CheckEmailResult struct {
	ID      ID     `json:"id"`
	Email   string `json:"email"`
	Auth0ID string `json:"auth0Id"`
}

type CheckOrganizationResult struct {
	Exists       bool          `json:"exists"`
	Organization *Organization `json:"organization,omitempty"`
}

type RegisterWithOrgRequest struct {
	Email          string `json:"email"`
	OrganizationID ID     `json:"organizationId"`
}

// RegisterWithOrgResponse is not enveloped.
type RegisterWithOrgResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

// IdentityUser is a principal in the identity provider.
type IdentityUser struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type CreateIdentityUserRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	VerifyEmail   *bool  `json:"verify_email,omitempty"`
	Connection    string `json:"connection,omitempty"`
}

// RegisterOrganizationRequest creates the identity-provider organization,
// the user and the backend records in one call.
type RegisterOrganizationRequest struct {
	OrgName      string `json:"orgName"`
	DisplayName  string `json:"display_name,omitempty"`
	OrgDomain    string `json:"orgDomain"`
	UserEmail    string `json:"userEmail"`
	UserPassword string `json:"userPassword"`
}

type InvitationRequest struct {
	Email       string `json:"email"`
	InviterName string `json:"inviter_name"`
}
