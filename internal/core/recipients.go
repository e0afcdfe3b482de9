package core

import (
	"regexp"
	"strings"
)

// emailPattern is a shape check (local@domain.tld without whitespace), not an
// RFC 5322 parser and not a deliverability check.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s has the local@domain.tld shape
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ParseRecipients splits a comma-delimited string into a validated RecipientList.
// Empty segments are ignored. All invalid segments are reported together.
func ParseRecipients(raw string) (RecipientList, error) {
	var (
		valid   RecipientList
		invalid []string
	)

	for _, segment := range strings.Split(raw, ",") {
		addr := strings.TrimSpace(segment)
		if addr == "" {
			continue
		}
		if IsValidEmail(addr) {
			valid = append(valid, addr)
		} else {
			invalid = append(invalid, addr)
		}
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{Invalid: invalid}
	}
	if len(valid) == 0 {
		return nil, &ValidationError{Empty: true}
	}

	return valid, nil
}
