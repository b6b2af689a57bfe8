// Package textutil normalises user supplied text and renders the profile bio.
package textutil

import (
	"bytes"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/unicode/norm"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
	bioPolicy    = newBioPolicy()
)

// Clean trims surrounding whitespace and converts s to Unicode NFC so the
// same visible text is always stored as the same bytes.
func Clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// IsBlank reports whether s holds nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// EnsureScheme returns link unchanged when it already carries a scheme and
// prefixes https:// otherwise. Blank input stays blank.
func EnsureScheme(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if u, err := url.Parse(link); err == nil && u.Scheme != "" && u.Host != "" {
		return link
	}
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return link
	}
	return "https://" + strings.TrimPrefix(link, "//")
}

// RenderMarkdown converts src to HTML and strips anything outside the UGC
// policy. Rendering errors fall back to the escaped plain text.
func RenderMarkdown(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return bioPolicy.Sanitize(src)
	}
	return strings.TrimSpace(bioPolicy.Sanitize(buf.String()))
}

func newBioPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}
