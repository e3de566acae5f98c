package parser

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// SanitizedContent is ExtractedContent with all markup removed.
type SanitizedContent struct {
	Heading  []string
	Comments []string
}

// HeadingText joins heading fragments into a single line.
func (c SanitizedContent) HeadingText() string {
	return strings.Join(c.Heading, " ")
}

// HN separates comment paragraphs with bare <p> tags.
var paragraphRe = regexp.MustCompile(`(?i)<p\b[^>]*>`)

// Entities are decoded for readability; literal angle brackets stay escaped
// so output never carries a tag delimiter.
var angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Sanitizer strips every tag and attribute from fragments.
// A bluemonday Policy is safe for concurrent use once built.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns plain text fragments, same count and order as the input.
func (s *Sanitizer) Sanitize(fragments []string) []string {
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = s.sanitizeOne(f)
	}
	return out
}

// SanitizeContent applies Sanitize to both heading and comments.
func (s *Sanitizer) SanitizeContent(c ExtractedContent) SanitizedContent {
	return SanitizedContent{
		Heading:  s.Sanitize(c.Heading),
		Comments: s.Sanitize(c.Comments),
	}
}

func (s *Sanitizer) sanitizeOne(fragment string) string {
	parts := paragraphRe.Split(fragment, -1)
	for i, p := range parts {
		parts[i] = angleEscaper.Replace(html.UnescapeString(s.policy.Sanitize(p)))
	}
	// A paragraph tag at either edge separates nothing.
	for len(parts) > 1 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	for len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "\n\n")
}
