package feed

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// Interpolate expands a template against a value. A template containing
// both braces has every {path} placeholder replaced by its resolution;
// anything else is treated as a bare path and resolved directly, so
// "title" and "{title}" behave the same for single fields while
// "PE={pe}, pct={pct}%" composes several.
func Interpolate(value any, template string) string {
	if !strings.Contains(template, "{") || !strings.Contains(template, "}") {
		return ResolveString(value, template)
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		path := strings.TrimSpace(match[1 : len(match)-1])
		return ResolveString(value, path)
	})
}
