package signup

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/metrics"
	"github.com/Saurav036/nexus/internal/validation"
)

// ErrCancelled is returned when the request was superseded or abandoned
// before it finished. The caller must not touch flow state.
var ErrCancelled = backend.ErrCancelled

const (
	msgInvalidEmail   = "Invalid email format"
	msgAccountExists  = "An account with this email already exists."
	msgOrgExists      = "An organization with this name or domain already exists."
	msgJoinFailed     = "Unable to complete registration. Please try again."
	msgRegisterFailed = "Registration failed. Please try again."
	msgCreateFailed   = "Unable to create organization. Please try again."
	msgUnexpected     = "An unexpected error occurred. Please try again later."

	// JoinRedirectDelay lets the success notice show before going to login.
	JoinRedirectDelay = 2 * time.Second
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Outcome is the result of one signup action. An empty Next means the user
// stays on the current step.
type Outcome struct {
	Next        Step              `json:"next,omitempty"`
	State       FlowState         `json:"state"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Error       string            `json:"error,omitempty"`
	Notice      *Notice           `json:"notice,omitempty"`
	// Choice offers "create an organization" or "try a different email".
	Choice bool `json:"choice,omitempty"`
	// Done marks a finished signup; the user goes to login manually.
	Done  bool          `json:"done,omitempty"`
	Delay time.Duration `json:"-"`
	// Err is the failure behind Error, for status mapping.
	Err error `json:"-"`
}

// OrgForm is the create-organization form.
type OrgForm struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Domain      string `json:"domain"`
	Password    string `json:"password"`
}

// Flow sequences the signup checks. It holds no per-user state; every
// method takes the current FlowState and returns the next one.
type Flow struct {
	backend       Backend
	publicDomains []string
}

func NewFlow(b Backend, publicDomains []string) *Flow {
	if publicDomains == nil {
		publicDomains = validation.PublicEmailDomains
	}
	return &Flow{backend: b, publicDomains: publicDomains}
}

// SubmitEmail classifies an email as an existing user, a public domain, a
// domain with an organization or an unregistered domain.
func (f *Flow) SubmitEmail(ctx context.Context, raw string) (Outcome, error) {
	email := validation.Sanitize(raw)
	if msg := validation.Email(email); msg != "" {
		return Outcome{
			State:       FlowState{Email: email},
			FieldErrors: map[string]string{"email": msg},
		}, nil
	}

	err := f.backend.CheckEmail(ctx, email)
	if cancelled(ctx, err) {
		return Outcome{}, ErrCancelled
	}
	if err == nil {
		return f.move(StepEmail, Outcome{Next: StepLogin, State: FlowState{Email: email}}), nil
	}

	domain, ok := validation.ExtractDomain(email)
	if !ok {
		return Outcome{State: FlowState{Email: email}, Error: msgInvalidEmail}, nil
	}

	if validation.IsPublicDomain(domain, f.publicDomains) {
		return f.move(StepEmail, Outcome{
			Next:  StepPublicDomain,
			State: FlowState{Email: email, Domain: domain},
		}), nil
	}

	org, err := f.backend.CheckOrganization(ctx, domain)
	if cancelled(ctx, err) {
		return Outcome{}, ErrCancelled
	}
	if err == nil && org != nil {
		return f.move(StepEmail, Outcome{
			Next:  StepOrgExists,
			State: FlowState{Email: email, Organization: org},
		}), nil
	}
	if err != nil {
		logger.Warn("organization check failed", map[string]any{
			"domain": domain,
			"error":  err.Error(),
		})
	}

	// unregistered domain, or the check itself failed
	return Outcome{
		State:  FlowState{Email: email, Domain: domain},
		Choice: true,
	}, nil
}

// ChooseCreate accepts the offer to create an organization for the domain.
func (f *Flow) ChooseCreate(state FlowState) Outcome {
	return f.toCreateOrg(StepEmail, state)
}

// Retry clears the email and stays on the email step.
func (f *Flow) Retry() Outcome {
	return Outcome{Next: StepEmail}
}

func (f *Flow) ContinuePublicDomain(state FlowState) Outcome {
	return f.toCreateOrg(StepPublicDomain, state)
}

func (f *Flow) toCreateOrg(from Step, state FlowState) Outcome {
	next := FlowState{Email: state.Email, Domain: state.Domain}
	if !next.Satisfies(StepCreateOrg) {
		return Outcome{Next: StepEmail}
	}
	return f.move(from, Outcome{Next: StepCreateOrg, State: next})
}

// JoinOrganization provisions the principal in the identity provider, adds
// it to the discovered organization and registers it with the backend.
func (f *Flow) JoinOrganization(ctx context.Context, state FlowState) (Outcome, error) {
	org := state.Organization
	if org == nil || org.ID == 0 {
		return Outcome{State: state, Error: "Organization information is missing"}, nil
	}
	if org.Auth0ID == "" {
		return Outcome{State: state, Error: "Organization identity ID is missing"}, nil
	}

	name, _, _ := strings.Cut(state.Email, "@")

	userID, err := f.backend.CreateIdentityUser(ctx, state.Email, name)
	if cancelled(ctx, err) {
		return Outcome{}, ErrCancelled
	}
	if err != nil {
		return f.joinFailed(state, err), nil
	}

	err = f.backend.AssignMember(ctx, org.Auth0ID, userID)
	if cancelled(ctx, err) {
		return Outcome{}, ErrCancelled
	}
	if err != nil {
		return f.joinFailed(state, err), nil
	}

	resp, err := f.backend.RegisterWithOrg(ctx, state.Email, org.ID)
	if cancelled(ctx, err) {
		return Outcome{}, ErrCancelled
	}
	if err != nil {
		return f.joinFailed(state, err), nil
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = msgRegisterFailed
		}
		return Outcome{State: state, Error: msg}, nil
	}

	logger.Info("user joined organization", map[string]any{
		"org_id": org.ID.String(),
	})

	return f.move(StepOrgExists, Outcome{
		Next:  StepLogin,
		State: FlowState{Email: state.Email},
		Delay: JoinRedirectDelay,
		Notice: &Notice{
			Kind:    NoticeSuccess,
			Title:   "Account Created!",
			Message: "Your account has been created and added to the organization. Redirecting to login...",
		},
	}), nil
}

func (f *Flow) joinFailed(state FlowState, err error) Outcome {
	msg := errorMessage(err, msgJoinFailed)
	if backend.IsConflict(err) {
		msg = msgAccountExists
	}
	return Outcome{State: state, Error: msg, Err: err}
}

// ContactAdmin only informs; nothing is sent anywhere.
func (f *Flow) ContactAdmin(state FlowState) Outcome {
	return Outcome{
		State: state,
		Notice: &Notice{
			Kind:    NoticeInfo,
			Title:   "Contact Administrator",
			Message: "Please reach out to your organization administrator to request access to your workspace.",
		},
	}
}

// CreateOrganization validates the form and registers the organization
// together with its first user.
func (f *Flow) CreateOrganization(ctx context.Context, state FlowState, form OrgForm) (Outcome, error) {
	form = OrgForm{
		Name:        validation.Sanitize(form.Name),
		DisplayName: validation.Sanitize(form.DisplayName),
		Domain:      validation.Sanitize(form.Domain),
		Password:    form.Password,
	}

	if errs := validateOrgForm(form); len(errs) > 0 {
		return Outcome{State: state, FieldErrors: errs}, nil
	}

	err := f.backend.RegisterOrganization(ctx, backend.RegisterOrganizationRequest{
		OrgName:      form.Name,
		DisplayName:  form.DisplayName,
		OrgDomain:    form.Domain,
		UserEmail:    state.Email,
		UserPassword: form.Password,
	})
	if cancelled(ctx, err) {
		return Outcome{}, ErrCancelled
	}
	if err != nil {
		msg := errorMessage(err, msgCreateFailed)
		if backend.IsConflict(err) {
			msg = msgOrgExists
		}
		return Outcome{State: state, Error: msg, Err: err}, nil
	}

	logger.Info("organization registered", map[string]any{
		"org_name": form.Name,
	})
	metrics.RecordSignup(string(StepCreateOrg), "done")

	return Outcome{
		State: FlowState{Email: state.Email},
		Done:  true,
		Notice: &Notice{
			Kind:    NoticeSuccess,
			Title:   "Organization Created",
			Message: "Your account and organization " + form.DisplayName + " have been created successfully.",
		},
	}, nil
}

func validateOrgForm(form OrgForm) map[string]string {
	errs := map[string]string{}
	if msg := validation.OrgName(form.Name); msg != "" {
		errs["name"] = msg
	}
	if msg := validation.DisplayName(form.DisplayName); msg != "" {
		errs["displayName"] = msg
	}
	if msg := validation.Domain(form.Domain); msg != "" {
		errs["domain"] = msg
	}
	if msg := validation.Password(form.Password); msg != "" {
		errs["password"] = msg
	}
	return errs
}

func (f *Flow) move(from Step, out Outcome) Outcome {
	metrics.RecordSignup(string(from), string(out.Next))
	return out
}

// cancelled reports a superseded request or one whose caller went away.
func cancelled(ctx context.Context, err error) bool {
	return errors.Is(err, backend.ErrCancelled) || ctx.Err() != nil
}

func errorMessage(err error, fallback string) string {
	var apiErr *backend.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if err != nil {
		return msgUnexpected
	}
	return fallback
}
