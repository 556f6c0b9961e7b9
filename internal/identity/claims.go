package identity

import "strings"

// Claims is the normalized view of an ID token.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	OrgID         string
	OrgName       string
	Roles         []string
}

// Role returns the first role claim, or "" when none is present.
func (c Claims) Role() string {
	if len(c.Roles) == 0 {
		return ""
	}
	return c.Roles[0]
}

// ParseClaims reads the standard claims plus the organization and role
// claims. The latter may be plain (org_id) or namespaced
// (<namespace>/org_id); the namespaced form wins when both are set.
func ParseClaims(raw map[string]any, namespace string) Claims {
	c := Claims{
		Subject:       stringClaim(raw["sub"]),
		Email:         stringClaim(raw["email"]),
		EmailVerified: boolClaim(raw["email_verified"]),
		Name:          stringClaim(raw["name"]),
		Picture:       stringClaim(raw["picture"]),
	}

	lookup := func(name string) any {
		if namespace != "" {
			if v, ok := raw[namespace+"/"+name]; ok && v != nil {
				return v
			}
		}
		return raw[name]
	}

	c.OrgID = stringClaim(lookup("org_id"))
	c.OrgName = stringClaim(lookup("org_name"))
	c.Roles = rolesClaim(lookup("roles"))

	return c
}

func stringClaim(v any) string {
	s, _ := v.(string)
	return s
}

func boolClaim(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}

// rolesClaim accepts either a JSON array or a single string.
func rolesClaim(v any) []string {
	switch r := v.(type) {
	case string:
		if r == "" {
			return nil
		}
		return []string{strings.ToUpper(r)}
	case []any:
		out := make([]string, 0, len(r))
		for _, item := range r {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, strings.ToUpper(s))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		out := make([]string, 0, len(r))
		for _, s := range r {
			if s != "" {
				out = append(out, strings.ToUpper(s))
			}
		}
		return out
	}
	return nil
}
