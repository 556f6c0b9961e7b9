package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "user@company.com", ""},
		{"valid subdomain", "first.last@mail.company.co.uk", ""},
		{"empty", "", "Email is required"},
		{"missing at", "user.company.com", "Please enter a valid email address"},
		{"two ats", "a@b@company.com", "Please enter a valid email address"},
		{"no dot after at", "user@localhost", "Please enter a valid email address"},
		{"whitespace", "us er@company.com", "Please enter a valid email address"},
		{"too long", strings.Repeat("a", 250) + "@b.com", "Email address is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.input))
		})
	}
}

func TestEmail_AcceptedShape(t *testing.T) {
	inputs := []string{"a@b.c", "x.y+z@d.e.f", "weird!#@host.tld", "no@dots", "@x.y", "a@.y"}
	for _, in := range inputs {
		if Email(in) != "" {
			continue
		}
		require.Equal(t, 1, strings.Count(in, "@"), in)
		after := in[strings.Index(in, "@")+1:]
		assert.Contains(t, after, ".", in)
	}
}

func TestOrgName(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"acme", true},
		{"acme-corp-42", true},
		{"ab", false},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
		{"Acme", false},
		{"acme corp", false},
		{"-acme", false},
		{"acme-", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := OrgName(tt.input)
			if tt.valid {
				assert.Empty(t, got)
				return
			}
			assert.NotEmpty(t, got)
		})
	}

	assert.Equal(t, "Organization name cannot start or end with a hyphen", OrgName("-acme"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Display name is required", DisplayName(""))
	assert.Equal(t, "Display name must be at least 2 characters", DisplayName("A"))
	assert.Empty(t, DisplayName("Acme Corp"))
	assert.Empty(t, DisplayName(strings.Repeat("x", 100)))
	assert.Equal(t, "Display name must be less than 100 characters", DisplayName(strings.Repeat("x", 101)))
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "company.com", ""},
		{"mixed case", "Company.COM", ""},
		{"empty", "", "Domain is required"},
		{"scheme", "https://company.com", "Domain should not include http:// or https://"},
		{"path", "company.com/about", "Domain should not include paths"},
		{"underscore", "comp_any.com", "Please enter a valid domain (e.g., company.com)"},
		{"leading hyphen label", "-company.com", "Please enter a valid domain (e.g., company.com)"},
		{"too long", strings.Repeat("a.", 127) + "com", "Domain is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Domain(tt.input))
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"strong", "Secr3t!pass", true},
		{"every symbol class", `Aa1"xxxx`, true},
		{"too short", "Aa1!", false},
		{"too long", "Aa1!" + strings.Repeat("x", 125), false},
		{"max length", "Aa1!" + strings.Repeat("x", 124), true},
		{"no upper", "secr3t!pass", false},
		{"no lower", "SECR3T!PASS", false},
		{"no digit", "Secret!pass", false},
		{"symbol outside set", "Secr3t-pass", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Password(tt.input)
			if tt.valid {
				assert.Empty(t, got)
				return
			}
			assert.NotEmpty(t, got)
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "user@company.com", Sanitize("  user@company.com \n"))
	assert.Equal(t, "", Sanitize("   "))
}

func TestExtractDomain(t *testing.T) {
	domain, ok := ExtractDomain("user@company.com")
	assert.True(t, ok)
	assert.Equal(t, "company.com", domain)

	domain, ok = ExtractDomain("User@Company.COM")
	assert.True(t, ok)
	assert.Equal(t, "company.com", domain)

	_, ok = ExtractDomain("not-an-email")
	assert.False(t, ok)

	_, ok = ExtractDomain("a@b@c.com")
	assert.False(t, ok)
}

func TestIsPublicDomain(t *testing.T) {
	assert.True(t, IsPublicDomain("gmail.com", PublicEmailDomains))
	assert.True(t, IsPublicDomain("GMail.com", PublicEmailDomains))
	assert.False(t, IsPublicDomain("acme.com", PublicEmailDomains))
	assert.False(t, IsPublicDomain("gmail.com", nil))
}

type orgForm struct {
	Name     string `json:"name" binding:"orgname"`
	Domain   string `json:"domain" binding:"domainname"`
	Password string `json:"password" binding:"strongpassword"`
	Role     string `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

func TestRegister_FieldErrors(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Register(v))

	err := v.Struct(orgForm{
		Name:     "-bad",
		Domain:   "https://acme.com",
		Password: "weak",
	})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "Organization name cannot start or end with a hyphen", fields["name"])
	assert.Equal(t, "Domain should not include http:// or https://", fields["domain"])
	assert.Equal(t, "Password must be at least 8 characters", fields["password"])
	assert.Equal(t, "role is required", fields["role"])

	assert.NoError(t, v.Struct(orgForm{
		Name:     "acme",
		Domain:   "acme.com",
		Password: "Secr3t!pass",
		Role:     "ADMIN",
	}))
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
}
