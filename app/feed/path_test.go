package feed

import (
	"testing"
)

func TestResolvePath_DottedAccess(t *testing.T) {
	value := map[string]any{
		"data": map[string]any{
			"items": []any{
				map[string]any{"title": "First"},
				map[string]any{"title": "Second"},
			},
		},
	}

	result := ResolvePath(value, "data.items.1.title")
	if result != "Second" {
		t.Errorf("Expected 'Second', got %v", result)
	}
}

func TestResolvePath_BracketNotation(t *testing.T) {
	value := map[string]any{
		"items": []any{"a", "b", "c"},
	}

	// Bracket and dotted notation resolve identically
	bracketed := ResolvePath(value, "items[2]")
	dotted := ResolvePath(value, "items.2")

	if bracketed != "c" {
		t.Errorf("Expected 'c' from bracket notation, got %v", bracketed)
	}
	if bracketed != dotted {
		t.Errorf("Bracket and dotted notation should match: %v vs %v", bracketed, dotted)
	}
}

func TestResolvePath_EmptyPath(t *testing.T) {
	value := map[string]any{"key": "value"}

	if result := ResolvePath(value, ""); result != "" {
		t.Errorf("Empty path should resolve to empty string, got %v", result)
	}
}

func TestResolvePath_DotReturnsRoot(t *testing.T) {
	value := []any{"a", "b"}

	result := ResolvePath(value, ".")
	list, ok := result.([]any)
	if !ok || len(list) != 2 {
		t.Errorf("Path '.' should return the root value unchanged, got %v", result)
	}
}

func TestResolvePath_MissingKey(t *testing.T) {
	value := map[string]any{"key": "value"}

	if result := ResolvePath(value, "missing.deeper.path"); result != "" {
		t.Errorf("Missing key should resolve to empty string, got %v", result)
	}
}

func TestResolvePath_IndexOutOfRange(t *testing.T) {
	value := map[string]any{"items": []any{"only"}}

	if result := ResolvePath(value, "items.5"); result != "" {
		t.Errorf("Out-of-range index should resolve to empty string, got %v", result)
	}
	if result := ResolvePath(value, "items.-1"); result != "" {
		t.Errorf("Negative index should resolve to empty string, got %v", result)
	}
}

func TestResolvePath_NilIntermediate(t *testing.T) {
	value := map[string]any{"key": nil}

	if result := ResolvePath(value, "key.deeper"); result != "" {
		t.Errorf("Nil intermediate should resolve to empty string, got %v", result)
	}
	if result := ResolvePath(value, "key"); result != "" {
		t.Errorf("Nil leaf should resolve to empty string, got %v", result)
	}
}

func TestResolvePath_ScalarIntermediate(t *testing.T) {
	value := map[string]any{"key": "scalar"}

	if result := ResolvePath(value, "key.deeper"); result != "" {
		t.Errorf("Descending into a scalar should resolve to empty string, got %v", result)
	}
}

func TestStringify_Scalars(t *testing.T) {
	cases := []struct {
		value    any
		expected string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(42), "42"},
		{float64(3.14), "3.14"},
		{true, "true"},
		{false, "false"},
	}

	for _, tc := range cases {
		if result := Stringify(tc.value); result != tc.expected {
			t.Errorf("Stringify(%v): expected %q, got %q", tc.value, tc.expected, result)
		}
	}
}

func TestStringify_TextNodeWrapper(t *testing.T) {
	// XML normalizer output: leaf with attributes
	value := map[string]any{"@href": "https://example.com", "#text": "Example"}

	if result := Stringify(value); result != "Example" {
		t.Errorf("Expected text node content 'Example', got %q", result)
	}
}

func TestStringify_CompositeAsJSON(t *testing.T) {
	value := map[string]any{"key": "value"}

	result := Stringify(value)
	if result != `{"key":"value"}` {
		t.Errorf("Composite should serialize as JSON, got %q", result)
	}

	list := []any{"a", float64(1)}
	if result := Stringify(list); result != `["a",1]` {
		t.Errorf("Array should serialize as JSON, got %q", result)
	}
}

func TestResolveString_FloatFormatting(t *testing.T) {
	value := map[string]any{"count": float64(100)}

	// Whole floats render without a decimal point
	if result := ResolveString(value, "count"); result != "100" {
		t.Errorf("Expected '100', got %q", result)
	}
}
