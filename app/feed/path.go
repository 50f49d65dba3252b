package feed

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Path resolution over the internal value representation shared by the
// JSON decoder and the XML normalizer: string | float64 | bool | nil |
// []any | map[string]any.
//
// Paths are user-authored configuration, so resolution is deliberately
// lenient: any lookup that goes nowhere yields the empty string instead
// of an error.

var bracketReplacer = strings.NewReplacer("[", ".", "]", "")

// ResolvePath walks value along a dotted/bracketed path expression.
// "" resolves to the empty string, "." to the whole value. Segments
// that parse as non-negative integers index arrays, everything else
// does key access. A nil/undefined intermediate short-circuits to "".
func ResolvePath(value any, path string) any {
	if path == "" {
		return ""
	}
	if path == "." {
		return value
	}

	segments := strings.Split(bracketReplacer.Replace(path), ".")
	current := value
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if current == nil {
			return ""
		}

		switch v := current.(type) {
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return ""
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return ""
			}
			current = v[idx]
		default:
			return ""
		}
	}

	if current == nil {
		return ""
	}
	return current
}

// ResolveString resolves a path to display text. Composite results are
// serialized as JSON rather than fmt's default rendering.
func ResolveString(value any, path string) string {
	return Stringify(ResolvePath(value, path))
}

// Stringify converts a resolved value to text. Text-node wrapper
// objects ({"#text": ...}) produced by the XML normalizer are unwrapped
// first, so JSON and XML templates share one code path.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		if text, ok := v["#text"]; ok {
			return Stringify(text)
		}
		return jsonText(v)
	default:
		return jsonText(v)
	}
}

func jsonText(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(data)
}
