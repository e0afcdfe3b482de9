package core

import (
	"strings"
)

const (
	subjectLabel = "SUBJECT:"
	bodyLabel    = "EMAIL:"

	// FallbackSubject is used when the response carries no usable subject line
	FallbackSubject = "Generated Email"
	// FallbackBody is used when the response is blank or the body label has
	// nothing after it
	FallbackBody = "(the model returned an empty response)"
)

// ParseDraft extracts subject and body from a model response. It never fails:
// each field is searched independently and falls back when its label is missing.
func ParseDraft(raw string) Draft {
	draft := Draft{RawContent: raw}

	if subject, ok := extractSubject(raw); ok {
		draft.Subject = subject
	} else {
		draft.Subject = FallbackSubject
		draft.Degraded.SubjectFallback = true
	}

	body, labelled := extractBody(raw)
	switch {
	case body != "":
		draft.Body = body
	case labelled:
		draft.Degraded.BodyFallback = true
		draft.Body = FallbackBody
	default:
		draft.Degraded.BodyFallback = true
		draft.Body = strings.TrimSpace(raw)
		if draft.Body == "" {
			draft.Body = FallbackBody
		}
	}

	return draft
}

// extractSubject returns the rest of the line following the first SUBJECT: label
func extractSubject(raw string) (string, bool) {
	idx := strings.Index(raw, subjectLabel)
	if idx < 0 {
		return "", false
	}

	rest := raw[idx+len(subjectLabel):]
	if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
		rest = rest[:nl]
	}

	subject := strings.TrimSpace(rest)
	return subject, subject != ""
}

// extractBody returns everything after the first EMAIL: label and whether the
// label was found
func extractBody(raw string) (string, bool) {
	idx := strings.Index(raw, bodyLabel)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(raw[idx+len(bodyLabel):]), true
}
