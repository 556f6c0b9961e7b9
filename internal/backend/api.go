package backend

// API groups the typed services over one client.
type API struct {
	Auth        *AuthService
	Identity    *IdentityService
	Users       *UsersService
	Orgs        *OrgsService
	Connections *ConnectionsService
	Credentials *CredentialsService
	Reports     *ReportsService
	Tableau     *TableauService
	Health      *HealthService
}

func NewAPI(c *Client) *API {
	return &API{
		Auth:        &AuthService{c: c},
		Identity:    &IdentityService{c: c},
		Users:       &UsersService{c: c},
		Orgs:        &OrgsService{c: c},
		Connections: &ConnectionsService{c: c},
		Credentials: &CredentialsService{c: c},
		Reports:     &ReportsService{c: c},
		Tableau:     &TableauService{c: c},
		Health:      &HealthService{c: c},
	}
}
