package parser

import (
	"fmt"
	"regexp"
	"sort"
)

// Which part of a page was missing after extraction.
const (
	MissingHeading  = "heading"
	MissingComments = "comments"
)

// ExtractedContent holds raw markup fragments in page order.
type ExtractedContent struct {
	Heading  []string
	Comments []string
}

// ContentNotFoundError is returned when a page has no title or no comments.
type ContentNotFoundError struct {
	Missing string
}

func (e *ContentNotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Missing)
}

// Pattern search over raw markup, not a DOM walk. Lazy matching bounds each
// fragment at its closing tag; (?s) lets bodies span lines. RE2 has no
// backreferences, so each comment element gets its own pattern.
var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	commentRes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<div\b[^>]*\bclass="commtext[^"]*"[^>]*>(.*?)</div>`),
		regexp.MustCompile(`(?is)<span\b[^>]*\bclass="commtext[^"]*"[^>]*>(.*?)</span>`),
	}
)

// Extract finds the page title and every comment block in raw page text.
func Extract(raw string) (ExtractedContent, error) {
	heading, err := ExtractHeading(raw)
	if err != nil {
		return ExtractedContent{}, err
	}

	comments := findComments(raw)
	if len(comments) == 0 {
		return ExtractedContent{}, &ContentNotFoundError{Missing: MissingComments}
	}

	return ExtractedContent{Heading: heading, Comments: comments}, nil
}

// ExtractHeading returns only the title fragments.
func ExtractHeading(raw string) ([]string, error) {
	var heading []string
	for _, m := range titleRe.FindAllStringSubmatch(raw, -1) {
		heading = append(heading, m[1])
	}
	if len(heading) == 0 {
		return nil, &ContentNotFoundError{Missing: MissingHeading}
	}
	return heading, nil
}

type commentMatch struct {
	start, end int
	body       string
}

// findComments merges matches of every comment pattern in page order. A
// match starting inside an earlier one is nested and skipped.
func findComments(raw string) []string {
	var matches []commentMatch
	for _, re := range commentRes {
		for _, loc := range re.FindAllStringSubmatchIndex(raw, -1) {
			matches = append(matches, commentMatch{start: loc[0], end: loc[1], body: raw[loc[2]:loc[3]]})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var comments []string
	end := -1
	for _, m := range matches {
		if m.start < end {
			continue
		}
		comments = append(comments, m.body)
		end = m.end
	}
	return comments
}
