package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/signup"

	"github.com/gin-gonic/gin"
)

type emailRequest struct {
	Email string `json:"email"`
}

type choiceRequest struct {
	Action string `json:"action" binding:"required,oneof=create retry"`
}

type outcomeResponse struct {
	signup.Outcome
	Redirect string `json:"redirect,omitempty"`
	DelayMS  int64  `json:"delay_ms,omitempty"`
}

func (h *Handler) submitEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalid})
		return
	}

	id := h.flowID(c)

	// a newer submission from the same flow cancels this one
	ticket := h.superseder.Begin(c.Request.Context(), id)
	defer ticket.Done()

	out, err := h.flow.SubmitEmail(ticket.Ctx, req.Email)
	if errors.Is(err, signup.ErrCancelled) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		h.fail(c, "signup_email", err)
		return
	}

	if !ticket.Commit(func() { h.persist(id, out) }) {
		c.Status(http.StatusNoContent)
		return
	}
	h.respond(c, "signup_email", out)
}

func (h *Handler) signupChoice(c *gin.Context) {
	var req choiceRequest
	if !bind(c, &req) {
		return
	}

	id := h.flowID(c)
	var out signup.Outcome
	if req.Action == "create" {
		out = h.flow.ChooseCreate(h.flows.Get(id))
	} else {
		out = h.flow.Retry()
	}
	h.persist(id, out)
	h.respond(c, "signup_choice", out)
}

func (h *Handler) continuePublicDomain(c *gin.Context) {
	id, state, ok := h.requireState(c, signup.StepPublicDomain)
	if !ok {
		return
	}
	out := h.flow.ContinuePublicDomain(state)
	h.persist(id, out)
	h.respond(c, "signup_public_domain", out)
}

func (h *Handler) joinOrganization(c *gin.Context) {
	id, state, ok := h.requireState(c, signup.StepOrgExists)
	if !ok {
		return
	}

	out, err := h.flow.JoinOrganization(c.Request.Context(), state)
	if err != nil {
		h.fail(c, "signup_join", err)
		return
	}
	h.persist(id, out)
	h.respond(c, "signup_join", out)
}

func (h *Handler) contactAdmin(c *gin.Context) {
	_, state, ok := h.requireState(c, signup.StepOrgExists)
	if !ok {
		return
	}
	h.respond(c, "signup_contact_admin", h.flow.ContactAdmin(state))
}

func (h *Handler) createOrganization(c *gin.Context) {
	id, state, ok := h.requireState(c, signup.StepCreateOrg)
	if !ok {
		return
	}

	var form signup.OrgForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalid})
		return
	}

	out, err := h.flow.CreateOrganization(c.Request.Context(), state, form)
	if err != nil {
		h.fail(c, "signup_create_org", err)
		return
	}
	h.persist(id, out)
	h.respond(c, "signup_create_org", out)
}

func (h *Handler) restartSignup(c *gin.Context) {
	if cookie, err := c.Request.Cookie(signup.FlowCookie); err == nil {
		h.flows.Delete(cookie.Value)
	}
	h.setFlowCookie(c, signup.FlowCookie, "", -1)
	h.respond(c, "signup_restart", h.flow.Retry())
}

// signupStep describes a step page. Entering a step without the state it
// needs starts over at the email step.
func (h *Handler) signupStep(c *gin.Context) {
	step, ok := signup.ParseStep(c.Param("step"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown signup step"})
		return
	}

	var state signup.FlowState
	if step == signup.StepEmail {
		// the flow id exists before the first submission so overlapping
		// submissions share one supersession slot
		state = h.flows.Get(h.flowID(c))
	} else if cookie, err := c.Request.Cookie(signup.FlowCookie); err == nil {
		state = h.flows.Get(cookie.Value)
	}
	if !state.Satisfies(step) {
		c.Redirect(http.StatusSeeOther, signup.StepEmail.Path())
		return
	}

	body := gin.H{"step": step, "state": state}
	if step == signup.StepUserExists {
		body["login"] = loginPath(state.Email)
		body["restart"] = "/signup/restart"
	}
	c.JSON(http.StatusOK, body)
}

// requireState loads the flow and answers with a redirect to the email
// step when it cannot serve step.
func (h *Handler) requireState(c *gin.Context, step signup.Step) (string, signup.FlowState, bool) {
	cookie, err := c.Request.Cookie(signup.FlowCookie)
	if err != nil || cookie.Value == "" {
		c.Redirect(http.StatusSeeOther, signup.StepEmail.Path())
		return "", signup.FlowState{}, false
	}
	state := h.flows.Get(cookie.Value)
	if !state.Satisfies(step) {
		c.Redirect(http.StatusSeeOther, signup.StepEmail.Path())
		return "", signup.FlowState{}, false
	}
	return cookie.Value, state, true
}

// flowID returns the browser's flow id, issuing one on first use.
func (h *Handler) flowID(c *gin.Context) string {
	if cookie, err := c.Request.Cookie(signup.FlowCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := h.flows.NewID()
	h.setFlowCookie(c, signup.FlowCookie, id, h.flows.TTL())
	return id
}

// persist stores what the next step needs. Leaving the flow or starting
// over forgets it; a rejected action leaves it untouched.
func (h *Handler) persist(id string, out signup.Outcome) {
	switch {
	case out.Next == signup.StepLogin, out.Next == signup.StepEmail, out.Done:
		h.flows.Delete(id)
	case out.Error != "", len(out.FieldErrors) > 0:
	default:
		h.flows.Save(id, out.State)
	}
}

func (h *Handler) respond(c *gin.Context, op string, out signup.Outcome) {
	resp := outcomeResponse{Outcome: out, DelayMS: out.Delay.Milliseconds()}
	switch out.Next {
	case "":
	case signup.StepLogin:
		resp.Redirect = loginPath(out.State.Email)
	default:
		resp.Redirect = out.Next.Path()
	}

	status := outcomeStatus(out)
	if out.Error != "" {
		fields := map[string]any{
			"op":      op,
			"message": out.Error,
			"status":  status,
		}
		if out.Err != nil {
			fields["error"] = out.Err.Error()
		}
		logger.Warn("signup step failed", fields)
	}
	c.JSON(status, resp)
}

func outcomeStatus(out signup.Outcome) int {
	switch {
	case len(out.FieldErrors) > 0:
		return http.StatusUnprocessableEntity
	case out.Error == "":
		return http.StatusOK
	case backend.IsConflict(out.Err):
		return http.StatusConflict
	case backend.IsNetwork(out.Err):
		return http.StatusBadGateway
	}
	if s := backend.StatusOf(out.Err); s >= 400 && s < 500 {
		return s
	}
	if out.Err != nil {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func loginPath(email string) string {
	if email == "" {
		return "/login"
	}
	return "/login?" + url.Values{"email": {email}}.Encode()
}
