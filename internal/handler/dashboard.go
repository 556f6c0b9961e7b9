package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/session"
	"github.com/Saurav036/nexus/internal/validation"

	"github.com/gin-gonic/gin"
)

var errNoOrganization = errors.New("session has no resolved organization")

type inviteRequest struct {
	Email string `json:"email" binding:"required,emailaddr"`
}

type updateOrganizationRequest struct {
	Name   string `json:"name" binding:"omitempty,orgname"`
	Domain string `json:"domain" binding:"omitempty,domainname"`
}

type createConnectionRequest struct {
	Name           string `json:"name" binding:"required"`
	Server         string `json:"server" binding:"required,url"`
	Site           string `json:"site"`
	ConnectionType string `json:"connectionType" binding:"required,oneof=PAT USERNAME"`
	TokenName      string `json:"tokenName" binding:"required_if=ConnectionType PAT"`
	TokenSecret    string `json:"tokenSecret" binding:"required_if=ConnectionType PAT"`
	Username       string `json:"username" binding:"required_if=ConnectionType USERNAME"`
	Password       string `json:"password" binding:"required_if=ConnectionType USERNAME"`
}

type createCredentialRequest struct {
	ConnectionType string `json:"connectionType" binding:"required,oneof=PAT USERNAME"`
	TokenName      string `json:"tokenName" binding:"required_if=ConnectionType PAT"`
	TokenSecret    string `json:"tokenSecret" binding:"required_if=ConnectionType PAT"`
	Username       string `json:"username" binding:"required_if=ConnectionType USERNAME"`
	Password       string `json:"password" binding:"required_if=ConnectionType USERNAME"`
}

type downloadRequest struct {
	ReportParameters []json.RawMessage `json:"reportParameters"`
}

func (h *Handler) dashboard(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"user":         s.User,
		"organization": s.Organization,
		"is_admin":     s.User.Role == session.RoleAdmin,
	})
}

// users

func (h *Handler) listUsers(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	users, err := h.api.Users.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.fail(c, "list_users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.api.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get_user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// inviteUser sends a provider invitation into the admin's organization.
func (h *Handler) inviteUser(c *gin.Context) {
	var req inviteRequest
	if !bind(c, &req) {
		return
	}
	s, _ := session.FromContext(c.Request.Context())
	if s.Organization.ExternalID == "" {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Please wait for the organization to load or refresh the page",
		})
		return
	}

	inviter := s.User.Name
	if inviter == "" {
		inviter = s.User.Email
	}
	if inviter == "" {
		inviter = "Administrator"
	}

	email := validation.Sanitize(req.Email)
	if err := h.api.Auth.Invite(c.Request.Context(), s.Organization.ExternalID, email, inviter); err != nil {
		h.failWith(c, "invite_user", err, "An account with this email already exists.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "An invitation has been sent to " + email,
	})
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req backend.UpdateUserRequest
	if !bind(c, &req) {
		return
	}
	if req.Role != "" && req.Role != session.RoleAdmin && req.Role != session.RoleMember {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": map[string]string{
			"role": "role must be one of: ADMIN MEMBER",
		}})
		return
	}
	user, err := h.api.Users.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, "update_user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.api.Users.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// organization

func (h *Handler) getOrganization(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	org, err := h.api.Orgs.Get(c.Request.Context(), orgID)
	if err != nil {
		h.fail(c, "get_organization", err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *Handler) updateOrganization(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	var req updateOrganizationRequest
	if !bind(c, &req) {
		return
	}
	org, err := h.api.Orgs.Update(c.Request.Context(), orgID, backend.UpdateOrgRequest{
		Name:   validation.Sanitize(req.Name),
		Domain: validation.Sanitize(req.Domain),
	})
	if err != nil {
		h.failWith(c, "update_organization", err, "An organization with this name or domain already exists.")
		return
	}
	c.JSON(http.StatusOK, org)
}

// connections

func (h *Handler) listConnections(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	conns, err := h.api.Connections.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.fail(c, "list_connections", err)
		return
	}
	c.JSON(http.StatusOK, conns)
}

// getConnection returns the connection with its credential attached.
func (h *Handler) getConnection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	conn, err := h.api.Connections.Get(ctx, id)
	if err != nil {
		h.fail(c, "get_connection", err)
		return
	}
	if conn.Credential == nil && conn.CredentialID != 0 {
		cred, err := h.api.Credentials.Get(ctx, conn.CredentialID)
		if err != nil {
			h.fail(c, "get_connection_credential", err)
			return
		}
		conn.Credential = &cred
	}
	c.JSON(http.StatusOK, conn)
}

func (h *Handler) createConnection(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	var req createConnectionRequest
	if !bind(c, &req) {
		return
	}
	conn, err := h.api.Connections.CreateWithCredentials(c.Request.Context(), backend.CreateConnectionRequest{
		OrgID:          orgID,
		Name:           validation.Sanitize(req.Name),
		Server:         validation.Sanitize(req.Server),
		Site:           validation.Sanitize(req.Site),
		ConnectionType: req.ConnectionType,
		TokenName:      req.TokenName,
		TokenSecret:    req.TokenSecret,
		Username:       req.Username,
		Password:       req.Password,
	})
	if err != nil {
		h.failWith(c, "create_connection", err, "A connection with this name already exists.")
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (h *Handler) updateConnection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req backend.UpdateConnectionRequest
	if !bind(c, &req) {
		return
	}
	conn, err := h.api.Connections.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, "update_connection", err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *Handler) deleteConnection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.api.Connections.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_connection", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getCredential(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cred, err := h.api.Credentials.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get_credential", err)
		return
	}
	c.JSON(http.StatusOK, cred)
}

// listCredentials returns the credentials of the admin's organization only.
func (h *Handler) listCredentials(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	all, err := h.api.Credentials.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list_credentials", err)
		return
	}
	creds := make([]backend.Credential, 0, len(all))
	for _, cred := range all {
		if cred.OrgID == orgID {
			creds = append(creds, cred)
		}
	}
	c.JSON(http.StatusOK, creds)
}

func (h *Handler) createCredential(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	var req createCredentialRequest
	if !bind(c, &req) {
		return
	}
	cred, err := h.api.Credentials.Create(c.Request.Context(), backend.CreateCredentialRequest{
		OrgID:          orgID,
		ConnectionType: req.ConnectionType,
		TokenName:      validation.Sanitize(req.TokenName),
		TokenSecret:    req.TokenSecret,
		Username:       validation.Sanitize(req.Username),
		Password:       req.Password,
	})
	if err != nil {
		h.fail(c, "create_credential", err)
		return
	}
	c.JSON(http.StatusCreated, cred)
}

func (h *Handler) updateCredential(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req backend.UpdateCredentialRequest
	if !bind(c, &req) {
		return
	}
	cred, err := h.api.Credentials.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, "update_credential", err)
		return
	}
	c.JSON(http.StatusOK, cred)
}

func (h *Handler) deleteCredential(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.api.Credentials.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_credential", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reports

func (h *Handler) listReports(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}
	reports, err := h.api.Reports.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.fail(c, "list_reports", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handler) getReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	report, err := h.api.Reports.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get_report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) reportAPIDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	details, err := h.api.Reports.APIDetails(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "report_api_details", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) createReport(c *gin.Context) {
	var req backend.ReportRequest
	if !bind(c, &req) {
		return
	}
	fields := map[string]string{}
	if req.ConnectionID == 0 {
		fields["connectionId"] = "connectionId is required"
	}
	if req.ViewID == "" {
		fields["viewId"] = "viewId is required"
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fields})
		return
	}
	report, err := h.api.Reports.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "create_report", err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) updateReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req backend.ReportRequest
	if !bind(c, &req) {
		return
	}
	report, err := h.api.Reports.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, "update_report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) deleteReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.api.Reports.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_report", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// downloadReport resolves the report's export endpoint and streams the
// file back as an attachment.
func (h *Handler) downloadReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req downloadRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	details, err := h.api.Reports.APIDetails(ctx, id)
	if err != nil {
		h.fail(c, "report_api_details", err)
		return
	}
	if details.APIURL == "" || details.APISecret == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Report API details are not configured"})
		return
	}

	params := req.ReportParameters
	if params == nil {
		params = []json.RawMessage{}
	}
	file, err := h.api.Reports.Download(ctx, details.APIURL, details.APISecret, params)
	if err != nil {
		h.fail(c, "download_report", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// tableau

func (h *Handler) workbooks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	wbs, err := h.api.Tableau.Workbooks(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "tableau_workbooks", err)
		return
	}
	c.JSON(http.StatusOK, wbs)
}

func (h *Handler) views(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	views, err := h.api.Tableau.Views(c.Request.Context(), id, c.Param("workbook"))
	if err != nil {
		h.fail(c, "tableau_views", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// orgID is the backend id of the session's organization. Sessions whose
// enrichment could not resolve it cannot use organization scoped pages.
func (h *Handler) orgID(c *gin.Context) (backend.ID, bool) {
	s, _ := session.FromContext(c.Request.Context())
	if s == nil || s.Organization.ID == 0 {
		h.failWith(c, "organization_scope", &backend.Error{
			Status:  http.StatusConflict,
			Message: "Organization information is missing",
			Err:     errNoOrganization,
		}, "")
		return 0, false
	}
	return backend.ID(s.Organization.ID), true
}

func pathID(c *gin.Context) (backend.ID, bool) {
	n, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return backend.ID(n), true
}
