package handler

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFilename folds name to printable ASCII for the legacy filename
// parameter: accents are stripped, anything else becomes '_'.
func asciiFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r < 0x20 || r > 0x7e, r == '"', r == '\\', r == '/', r == ';':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" || strings.Trim(out, "_.") == "" {
		return "download"
	}
	return out
}

// contentDisposition builds an attachment header carrying both the ASCII
// fallback and the RFC 5987 UTF-8 name.
func contentDisposition(name string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return `attachment; filename="` + asciiFilename(name) + `"; filename*=UTF-8''` + encoded
}
