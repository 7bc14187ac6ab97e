package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
)

var (
	sanitizer = bluemonday.UGCPolicy()
	stripper  = bluemonday.StrictPolicy()

	textEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	// a literal "&" only needs escaping when it would be read as a character reference
	charRef = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)
)

// Sanitize cleans HTML content to prevent XSS attacks. Text between tags keeps
// its punctuation as typed; only what would parse as markup stays escaped.
func Sanitize(input string) string {
	return relaxTextEntities(sanitizer.Sanitize(input))
}

// SanitizeText strips every tag from a short single-line field and returns
// the remaining plain text, unescaped and trimmed.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(stripper.Sanitize(input)))
}

// relaxTextEntities rewrites the text tokens of already sanitized HTML with a
// minimal escape. Tags and attributes are copied byte for byte.
func relaxTextEntities(clean string) string {
	var b strings.Builder
	z := nethtml.NewTokenizer(strings.NewReader(clean))
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return b.String()
		case nethtml.TextToken:
			text := string(z.Text())
			text = charRef.ReplaceAllStringFunc(text, func(ref string) string {
				return "&amp;" + ref[1:]
			})
			b.WriteString(textEscaper.Replace(text))
		default:
			b.Write(z.Raw())
		}
	}
}
