package feed

import (
	"html"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const defaultMaxItems = 20

var cdataPattern = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*?)\]\]>\s*$`)

// WrapCDATA protects an HTML fragment from XML escaping. Fragments
// containing "]]>" cannot be wrapped safely and are left as-is.
func WrapCDATA(s string) string {
	if s == "" || strings.Contains(s, "]]>") {
		return s
	}
	return "<![CDATA[" + s + "]]>"
}

// StripCDATA removes a single leading/trailing CDATA wrapper.
func StripCDATA(s string) string {
	if m := cdataPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// decodeEntities reverses HTML-entity escaping, repeating up to three
// passes to undo sources that double- or triple-escape their content.
func decodeEntities(s string) string {
	for i := 0; i < 3; i++ {
		decoded := html.UnescapeString(s)
		if decoded == s {
			return s
		}
		s = decoded
	}
	return s
}

// normalizeDate parses arbitrary source date text into RFC 1123Z.
// Absent or unparseable dates fall back to the current time; a parse
// failure never propagates.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().Format(time.RFC1123Z)
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Now().Format(time.RFC1123Z)
	}
	return t.Format(time.RFC1123Z)
}

func formatUnix(value int64, unit string) string {
	if unit == "ms" {
		return time.UnixMilli(value).Format(time.RFC1123Z)
	}
	return time.Unix(value, 0).Format(time.RFC1123Z)
}

// absoluteURL resolves raw against base unless raw is already absolute.
// Protocol-relative URLs get the base's scheme. Resolution failures
// return raw unchanged rather than dropping the value.
func absoluteURL(raw, base string) string {
	if raw == "" || strings.HasPrefix(raw, "http") {
		return raw
	}

	parsedBase, err := url.Parse(base)
	if err != nil || parsedBase.Scheme == "" {
		return raw
	}

	if strings.HasPrefix(raw, "//") {
		return parsedBase.Scheme + ":" + raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return parsedBase.ResolveReference(ref).String()
}

// enclosureTypeFromURL guesses a MIME type from the URL's extension.
func enclosureTypeFromURL(u string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(u, "?", 2)[0]))
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return "image/jpeg"
}
