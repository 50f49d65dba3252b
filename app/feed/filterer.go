package feed

import (
	"log/slog"
	"regexp"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run evaluates the active rules against each item. An exclude rule
// that matches drops the item immediately; when include rules exist, at
// least one of them must match or the item is dropped. Exclude always
// wins over include.
func (f *Filterer) Run(items []Item, rules []FilterRule) []Item {
	if len(rules) == 0 {
		return items
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if f.keep(item, rules) {
			kept = append(kept, item)
		}
	}

	return kept
}

func (f *Filterer) keep(item Item, rules []FilterRule) bool {
	sawInclude := false
	includeMatched := false

	for _, rule := range rules {
		if !rule.Active {
			continue
		}

		value := f.fieldValue(item, rule.Field)
		matched := f.matches(value, rule)

		switch rule.Mode {
		case "exclude":
			if matched {
				return false
			}
		default:
			sawInclude = true
			if matched {
				includeMatched = true
			}
		}
	}

	return !sawInclude || includeMatched
}

func (f *Filterer) matches(value string, rule FilterRule) bool {
	if rule.Type == "regex" {
		re, err := regexp.Compile("(?i)" + rule.Value)
		if err != nil {
			// A malformed pattern skips the single rule, never the batch.
			slog.Warn("Skipping invalid regex filter rule", "field", rule.Field, "pattern", rule.Value, "error", err)
			return false
		}
		return re.MatchString(value)
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(rule.Value))
}

func (f *Filterer) fieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "author":
		return item.Author
	case "link":
		return item.Link
	case "guid":
		return item.GUID
	default:
		return ""
	}
}
