// Package redact removes credentials and personal data from strings before they
// are logged or returned in error responses: connection strings, passwords,
// bearer and JWT tokens, reset codes and email addresses.
package redact

import (
	"regexp"
	"strings"
)

// Placeholders substituted for redacted values.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_JWT]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	CodePlaceholder       = "[REDACTED_CODE]"
)

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Rules run in order; the DSN rule must precede the email rule because
// user:pass@host looks like an address.
var rules = []rule{
	{
		re:          regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|mongodb(?:\+srv)?)://[^@\s]+@`),
		replacement: "${1}://" + CredentialPlaceholder + "@",
	},
	{
		re:          regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/]+=*`),
		replacement: "Bearer " + TokenPlaceholder,
	},
	{
		re:          regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		replacement: TokenPlaceholder,
	},
	{
		re:          regexp.MustCompile(`(?i)\b(password|passwd|pwd|new_?password|secret|jwt_secret)(["']?\s*[=:]\s*["']?)[^"'&\s,}]+`),
		replacement: "${1}${2}" + CredentialPlaceholder,
	},
	{
		re:          regexp.MustCompile(`(?i)\b(code|reset_code)(["']?\s*[=:]\s*["']?)\d{4,8}\b`),
		replacement: "${1}${2}" + CodePlaceholder,
	},
	{
		re:          regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: EmailPlaceholder,
	},
}

// String redacts sensitive values from input.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive values from err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Email masks the local part of an address, keeping its first character and the
// domain: "alice@example.com" becomes "a***@example.com".
func Email(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return Placeholder
	}
	return addr[:1] + "***" + addr[at:]
}
