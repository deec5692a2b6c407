package transcript

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	policy = bluemonday.UGCPolicy()
)

// RenderHTML converts entry text to safe HTML. Markdown text is rendered then sanitized;
// plain text is escaped with line breaks preserved.
func RenderHTML(text string, markdown bool) string {
	if !markdown {
		return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	}
	return strings.TrimSpace(policy.Sanitize(buf.String()))
}
