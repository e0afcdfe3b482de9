package utils

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var (
	bodyPolicy     *bluemonday.Policy
	bodyPolicyOnce sync.Once
)

// policy allows basic formatting a user may type into a draft and strips
// scripts, event handlers and javascript: URLs
func policy() *bluemonday.Policy {
	bodyPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowStandardURLs()
		p.AllowElements(
			"p", "br",
			"strong", "b", "em", "i", "u",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		bodyPolicy = p
	})
	return bodyPolicy
}

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "..."
}

// SanitizeUTF8 drops invalid UTF-8 sequences
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// NormalizeText sanitizes UTF-8, composes characters to NFC and unifies line endings to \n
func (tp *TextProcessor) NormalizeText(text string) string {
	text = tp.SanitizeUTF8(text)
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// BodyToHTML renders an edited plain-text body for HTML mail clients:
// unsafe markup is removed and every line break becomes <br>.
func (tp *TextProcessor) BodyToHTML(body string) string {
	safe := policy().Sanitize(tp.NormalizeText(body))
	return strings.ReplaceAll(safe, "\n", "<br>")
}
