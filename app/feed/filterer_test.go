package feed

import (
	"testing"
)

func TestFilterer_NoRules(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "First"},
		{Title: "Second"},
	}

	result := filterer.Run(items, nil)
	if len(result) != 2 {
		t.Errorf("Expected all items back with no rules, got %d", len(result))
	}
}

func TestFilterer_IncludeRequiresMatch(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Go 1.24 released"},
		{Title: "Weather report"},
		{Title: "New Go proposal"},
	}

	rules := []FilterRule{
		{Field: "title", Value: "go", Mode: "include", Active: true},
	}

	result := filterer.Run(items, rules)
	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	if result[0].Title != "Go 1.24 released" || result[1].Title != "New Go proposal" {
		t.Errorf("Unexpected items kept: %+v", result)
	}
}

func TestFilterer_MultipleIncludesAreOr(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "About cats"},
		{Title: "About dogs"},
		{Title: "About fish"},
	}

	rules := []FilterRule{
		{Field: "title", Value: "cats", Mode: "include", Active: true},
		{Field: "title", Value: "dogs", Mode: "include", Active: true},
	}

	result := filterer.Run(items, rules)
	if len(result) != 2 {
		t.Errorf("Any matching include rule should keep the item, got %d items", len(result))
	}
}

func TestFilterer_ExcludeWinsOverInclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Go release [sponsored]"},
		{Title: "Go release"},
	}

	rules := []FilterRule{
		{Field: "title", Value: "go", Mode: "include", Active: true},
		{Field: "title", Value: "sponsored", Mode: "exclude", Active: true},
	}

	result := filterer.Run(items, rules)
	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}
	if result[0].Title != "Go release" {
		t.Errorf("Exclude should win even when an include matches, kept %q", result[0].Title)
	}
}

func TestFilterer_SubstringIsCaseInsensitive(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{{Title: "BREAKING News"}}
	rules := []FilterRule{
		{Field: "title", Value: "breaking", Mode: "include", Active: true},
	}

	if result := filterer.Run(items, rules); len(result) != 1 {
		t.Errorf("Substring matching should ignore case")
	}
}

func TestFilterer_RegexRule(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Release v1.2.3"},
		{Title: "Weekly digest"},
	}

	rules := []FilterRule{
		{Field: "title", Type: "regex", Value: `v\d+\.\d+\.\d+`, Mode: "include", Active: true},
	}

	result := filterer.Run(items, rules)
	if len(result) != 1 || result[0].Title != "Release v1.2.3" {
		t.Errorf("Expected only the version-tagged item, got %+v", result)
	}
}

func TestFilterer_InvalidRegexSkipsRuleOnly(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Keep me", Author: "alice"},
		{Title: "Drop me", Author: "spammer"},
	}

	rules := []FilterRule{
		// Malformed pattern: must be skipped, not fail the batch
		{Field: "title", Type: "regex", Value: "([unclosed", Mode: "exclude", Active: true},
		{Field: "author", Value: "spammer", Mode: "exclude", Active: true},
	}

	result := filterer.Run(items, rules)
	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}
	if result[0].Title != "Keep me" {
		t.Errorf("Valid rule should still apply after an invalid one, kept %q", result[0].Title)
	}
}

func TestFilterer_InactiveRulesIgnored(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{{Title: "Anything"}}
	rules := []FilterRule{
		{Field: "title", Value: "nomatch", Mode: "include", Active: false},
	}

	if result := filterer.Run(items, rules); len(result) != 1 {
		t.Errorf("Inactive rules should not drop items")
	}
}

func TestFilterer_FieldSelection(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "T", Link: "https://example.com/keep", GUID: "g-1", Author: "bob", Description: "desc"},
	}

	fields := map[string]string{
		"title":       "T",
		"link":        "keep",
		"guid":        "g-1",
		"author":      "bob",
		"description": "desc",
	}

	for field, value := range fields {
		rules := []FilterRule{{Field: field, Value: value, Mode: "include", Active: true}}
		if result := filterer.Run(items, rules); len(result) != 1 {
			t.Errorf("Field %q should match value %q", field, value)
		}
	}

	// Unknown fields resolve to empty and never match
	rules := []FilterRule{{Field: "category", Value: "x", Mode: "include", Active: true}}
	if result := filterer.Run(items, rules); len(result) != 0 {
		t.Errorf("Unknown field should not match anything")
	}
}
