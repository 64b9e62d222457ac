// Package email validates account and contact email addresses.
package email

import (
	"net/mail"
	"strings"
	"unicode"

	dErrors "contactbook/pkg/domain-errors"
)

// maxLength is the RFC 5321 path limit.
const maxLength = 254

// Validate checks that s is a single bare address ("ann@example.com", no
// display name) and returns it trimmed. The local part keeps its case; the
// domain is lowercased.
func Validate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(s) > maxLength {
		return "", dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	if !strings.Contains(domain, ".") {
		return "", dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	return s[:at+1] + strings.ToLower(domain), nil
}

// DeriveNameFromEmail splits the local part of an address into a first and
// last name, used as the display name of accounts created without one.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
