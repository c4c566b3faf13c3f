// Package markup converts the markdown dialect returned by the insight model
// into escaped HTML, and into styled text for the terminal.
//
// The HTML transform is deliberately small: ATX headers, bold and italic
// spans, "* " bullet lists and paragraphs. Everything else passes through as
// escaped text.
package markup

import (
	"regexp"
	"strings"
)

const (
	// Title is the banner shown above every rendered insight.
	Title = "[AI System Insight]"

	// Attribution is the footer shown below every rendered insight.
	Attribution = "[Analysis provided by Gemini]"

	// noResponse replaces an empty or blank model reply.
	noResponse = "<p>No response received.</p>"
)

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	newlines    = strings.NewReplacer("\r\n", "\n", "\r", "\n")

	h3Re     = regexp.MustCompile(`(?m)^### (.*?)$`)
	h2Re     = regexp.MustCompile(`(?m)^## (.*?)$`)
	h1Re     = regexp.MustCompile(`(?m)^# (.*?)$`)
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)

	paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)
	emptyListRe      = regexp.MustCompile(`<ul>\s*</ul>`)
	emptyParaRe      = regexp.MustCompile(`<p>\s*</p>`)

	brBeforeBlockRe = regexp.MustCompile(`<br>\s*(</?(?:h[1-6]|ul|li|p)>)`)
	brAfterBlockRe  = regexp.MustCompile(`(</?(?:h[1-6]|ul|li|p)>)\s*<br>`)
)

// RenderBody converts raw model output to an HTML fragment.
//
// Markup characters are escaped before any markdown is recognised, so the
// output never contains a tag that was present in raw. Blank input yields a
// fixed "No response received." paragraph.
func RenderBody(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return noResponse
	}

	text = htmlEscaper.Replace(text)
	text = newlines.Replace(text)

	// Longest prefix first so "###" is never read as "#" plus text.
	text = h3Re.ReplaceAllString(text, "<h3>${1}</h3>")
	text = h2Re.ReplaceAllString(text, "<h2>${1}</h2>")
	text = h1Re.ReplaceAllString(text, "<h1>${1}</h1>")

	text = boldRe.ReplaceAllString(text, "<strong>${1}</strong>")
	text = italicRe.ReplaceAllString(text, "<em>${1}</em>")

	text = renderBlocks(text)

	text = strings.ReplaceAll(text, "\n", "<br>\n")
	text = brBeforeBlockRe.ReplaceAllString(text, "${1}")
	text = brAfterBlockRe.ReplaceAllString(text, "${1}")

	return text
}

// renderBlocks wraps each blank-line separated block in <p>, or in <ul> when
// any of its lines is a "* " bullet. A plain line inside a list block closes
// the list, becomes its own paragraph and reopens the list, which can leave
// empty <ul></ul> pairs; those are removed afterwards.
func renderBlocks(text string) string {
	paragraphs := paragraphSplitRe.Split(text, -1)

	var b strings.Builder
	for i, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if strings.HasPrefix(para, "* ") || strings.Contains(para, "\n* ") {
			b.WriteString("<ul>")
			for _, line := range strings.Split(para, "\n") {
				line = strings.TrimSpace(line)
				switch {
				case strings.HasPrefix(line, "* "):
					b.WriteString("<li>")
					b.WriteString(strings.TrimSpace(line[2:]))
					b.WriteString("</li>")
				case line != "":
					b.WriteString("</ul><p>")
					b.WriteString(line)
					b.WriteString("</p><ul>")
				}
			}
			b.WriteString("</ul>")
		} else {
			b.WriteString("<p>")
			b.WriteString(para)
			b.WriteString("</p>")
		}

		if i < len(paragraphs)-1 {
			b.WriteString("\n\n")
		}
	}

	out := emptyListRe.ReplaceAllString(b.String(), "")
	return emptyParaRe.ReplaceAllString(out, "")
}

// Render returns RenderBody wrapped in a standalone HTML document with the
// insight title and attribution.
func Render(raw string) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: sans-serif; font-size: 14px; padding: 10px; line-height: 1.4;">`)
	b.WriteString(`<h2 style="color: #7C3AED; border-bottom: 2px solid #7C3AED; padding-bottom: 5px;">`)
	b.WriteString(Title)
	b.WriteString(`</h2>`)
	b.WriteString(`<div style="margin-top: 15px;">`)
	b.WriteString(RenderBody(raw))
	b.WriteString(`</div>`)
	b.WriteString(`<hr style="margin: 20px 0; border: 1px solid #ddd;">`)
	b.WriteString(`<p style="color: #6B7280; font-style: italic;">`)
	b.WriteString(Attribution)
	b.WriteString(`</p>`)
	b.WriteString(`</body></html>`)
	return b.String()
}
