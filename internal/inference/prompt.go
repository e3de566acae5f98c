package inference

import (
	"fmt"
	"strings"
)

// DefaultTopComments bounds how many comments go into a summary prompt.
const DefaultTopComments = 5

const SummaryPrompt = `You are summarizing a Hacker News discussion for a reader who has not opened it.

Write the summary in Markdown:
- Start with a one-sentence description of what the submission is about.
- Then list the main points raised by commenters as bullet points.
- Note any strong disagreement between commenters.
- Do not invent facts that are not present in the comments.

Keep it under 200 words.`

const ImagePrompt = `An editorial illustration for a technology news article titled %q. Clean, modern, no text or lettering in the image.`

// TopComments returns the first n comments in their original order.
func TopComments(comments []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(comments) <= n {
		return comments
	}
	return comments[:n]
}

// BuildSummaryPrompt embeds the heading and comments verbatim after the
// fixed instructions.
func BuildSummaryPrompt(heading string, comments []string) string {
	var sb strings.Builder
	sb.WriteString(SummaryPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", heading))
	sb.WriteString("---\n")
	sb.WriteString("Comments:\n\n")
	sb.WriteString(strings.Join(comments, "\n\n"))
	return sb.String()
}

// BuildImagePrompt embeds only the heading.
func BuildImagePrompt(heading string) string {
	return fmt.Sprintf(ImagePrompt, heading)
}
