// Package markdown renders the small markdown subset that concierge
// replies use into inline markup a chat surface can display.
package markdown

import (
	"html"
	"regexp"
	"strings"
)

var (
	h3Pattern   = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Pattern   = regexp.MustCompile(`(?m)^## (.+)$`)
	linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	listPattern = regexp.MustCompile(`(?m)^- (.+)$`)
	// Runs of three or more breaks collapse to a paragraph break.
	breakRunPattern = regexp.MustCompile(`(<br>){3,}`)
)

// Formatter converts assistant-authored text into renderable markup.
// The zero value matches the base widget: no link support.
type Formatter struct {
	// AllowLinks enables [label](url) anchors. Anchors open in a new
	// browsing context with no back-reference to the opener.
	AllowLinks bool
}

// Render is pure and deterministic. Substitution order matters:
// headers, links and bold run before newline handling, and list items
// convert before generic breaks, so generated breaks are not
// mis-collapsed.
func (f Formatter) Render(text string) string {
	out := h3Pattern.ReplaceAllString(text, "<strong>$1</strong>")
	out = h2Pattern.ReplaceAllString(out, "<br><strong>$1</strong><br>")
	if f.AllowLinks {
		out = linkPattern.ReplaceAllString(out, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
	}
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = listPattern.ReplaceAllString(out, "&bull; $1<br>")
	out = strings.ReplaceAll(out, "\n\n", "<br><br>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	return breakRunPattern.ReplaceAllString(out, "<br><br>")
}

// Render formats text with the default (no-link) formatter.
func Render(text string) string {
	return Formatter{}.Render(text)
}

// EscapeText renders visitor-authored content as literal text. User
// input is never interpreted as markup.
func EscapeText(text string) string {
	return html.EscapeString(text)
}
