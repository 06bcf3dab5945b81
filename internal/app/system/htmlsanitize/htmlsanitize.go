// Package htmlsanitize cleans submitted blog content and strips markup from
// plain-text fields before they are stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
	policyOnce  sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		// Blog articles: user generated content plus figures and tables.
		richPolicy = bluemonday.UGCPolicy()
		richPolicy.AllowElements("figure", "figcaption")
		richPolicy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		richPolicy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		richPolicy.AllowElements("u", "s", "sub", "sup", "mark")
		richPolicy.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")

		plainPolicy = bluemonday.StrictPolicy()
	})
	return richPolicy, plainPolicy
}

// Sanitize cleans article content. Markdown without any tag is returned
// untouched so that quoting and entity syntax survive; anything that carries
// markup goes through the rich-text policy.
func Sanitize(content string) string {
	if content == "" || IsPlainText(content) {
		return content
	}
	rich, _ := policies()
	return rich.Sanitize(content)
}

// StripTags removes every tag from s and returns the remaining text,
// unescaped, for fields such as testimonial text or contact messages.
func StripTags(s string) string {
	if s == "" || IsPlainText(s) {
		return s
	}
	_, plain := policies()
	return strings.TrimSpace(html.UnescapeString(plain.Sanitize(s)))
}

// IsPlainText reports whether content has no HTML tags.
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid HTML tags require both characters, so if either is missing, treat as plain text
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
