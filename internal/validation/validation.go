// Package validation holds the field validators shared by the signup flow
// and the dashboard forms. Every validator returns "" for a valid value or
// a message that can be shown next to the field.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	orgNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	domainPattern  = regexp.MustCompile(`(?i)^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)
)

// PasswordSymbols is the punctuation set a password must draw from.
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

// PublicEmailDomains are consumer mailbox providers shared by unrelated
// accounts; they never identify an organization.
var PublicEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"icloud.com",
	"aol.com",
	"protonmail.com",
	"mail.com",
	"zoho.com",
	"yandex.com",
	"live.com",
	"msn.com",
}

func Email(email string) string {
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email address"
	}
	if len(email) > 254 {
		return "Email address is too long"
	}
	return ""
}

func OrgName(name string) string {
	if name == "" {
		return "Organization name is required"
	}
	if len(name) < 3 {
		return "Organization name must be at least 3 characters"
	}
	if len(name) > 50 {
		return "Organization name must be less than 50 characters"
	}
	if !orgNamePattern.MatchString(name) {
		return "Organization name must contain only lowercase letters, numbers, and hyphens"
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return "Organization name cannot start or end with a hyphen"
	}
	return ""
}

func DisplayName(name string) string {
	if name == "" {
		return "Display name is required"
	}
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return "Display name must be at least 2 characters"
	}
	if n > 100 {
		return "Display name must be less than 100 characters"
	}
	return ""
}

func Domain(domain string) string {
	if domain == "" {
		return "Domain is required"
	}
	if strings.Contains(domain, "http://") || strings.Contains(domain, "https://") {
		return "Domain should not include http:// or https://"
	}
	if strings.Contains(domain, "/") {
		return "Domain should not include paths"
	}
	if len(domain) > 253 {
		return "Domain is too long"
	}
	if !domainPattern.MatchString(domain) {
		return "Please enter a valid domain (e.g., company.com)"
	}
	return ""
}

func Password(password string) string {
	if password == "" {
		return "Password is required"
	}
	n := utf8.RuneCountInString(password)
	if n < 8 {
		return "Password must be at least 8 characters"
	}
	if n > 128 {
		return "Password must be less than 128 characters"
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return "Password must contain uppercase, lowercase, number, and special character"
	}
	return ""
}

// Sanitize trims surrounding whitespace. Apply it to user input before
// validation and before sending it anywhere.
func Sanitize(s string) string {
	return strings.TrimSpace(s)
}

// ExtractDomain returns the lowercased part after the single '@'.
// ok is false when email does not contain exactly one '@'.
func ExtractDomain(email string) (domain string, ok bool) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", false
	}
	return strings.ToLower(parts[1]), true
}

func IsPublicDomain(domain string, known []string) bool {
	for _, d := range known {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}
