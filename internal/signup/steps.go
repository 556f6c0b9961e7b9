package signup

import "github.com/Saurav036/nexus/internal/backend"

// Step is a position in the signup wizard.
type Step string

const (
	StepEmail        Step = "email"
	StepUserExists   Step = "user-exists"
	StepPublicDomain Step = "public-domain"
	StepOrgExists    Step = "org-exists"
	StepCreateOrg    Step = "create-org"
	// StepLogin leaves the flow.
	StepLogin Step = "login"
)

// Path is the browser path of the step.
func (s Step) Path() string {
	switch s {
	case StepEmail:
		return "/signup"
	case StepLogin:
		return "/login"
	default:
		return "/signup/" + string(s)
	}
}

// ParseStep accepts the path segment of a step below /signup.
func ParseStep(segment string) (Step, bool) {
	switch s := Step(segment); s {
	case StepUserExists, StepPublicDomain, StepOrgExists, StepCreateOrg:
		return s, true
	case "", StepEmail:
		return StepEmail, true
	}
	return "", false
}

// FlowState is carried between steps of one signup attempt.
type FlowState struct {
	Email        string                `json:"email,omitempty"`
	Domain       string                `json:"domain,omitempty"`
	Organization *backend.Organization `json:"organization,omitempty"`
}

// Satisfies reports whether the state carries what step needs. Entering a
// step without it sends the user back to the email step.
func (f FlowState) Satisfies(step Step) bool {
	switch step {
	case StepEmail, StepLogin:
		return true
	case StepUserExists:
		return f.Email != ""
	case StepPublicDomain, StepCreateOrg:
		return f.Email != "" && f.Domain != ""
	case StepOrgExists:
		return f.Email != "" && f.Organization != nil
	}
	return false
}
