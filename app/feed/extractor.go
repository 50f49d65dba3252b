package feed

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Extractor turns a fetched document into a normalized item list. Four
// modes are supported: CSS-selector extraction over HTML, path-template
// extraction over JSON or normalized XML, and standard RSS/Atom parsing
// for sources that are already feeds.
type Extractor struct {
	gofeedParser *gofeed.Parser
}

func NewExtractor() *Extractor {
	return &Extractor{
		gofeedParser: gofeed.NewParser(),
	}
}

func (e *Extractor) Run(doc *Document, feedConfig *Config) ([]Item, error) {
	if doc == nil || feedConfig == nil {
		return nil, fmt.Errorf("document and configuration are required")
	}

	switch e.resolveMode(doc, feedConfig) {
	case ModeHTML:
		return e.extractHTML(doc, feedConfig)
	case ModeJSON:
		return e.extractJSON(doc, feedConfig)
	case ModeXML:
		return e.extractXML(doc, feedConfig)
	default:
		return e.extractStandard(doc, feedConfig)
	}
}

// resolveMode honors an explicit mode and otherwise infers one from the
// configured selectors and the document shape.
func (e *Extractor) resolveMode(doc *Document, feedConfig *Config) Mode {
	if feedConfig.Mode != "" {
		return feedConfig.Mode
	}
	if feedConfig.Selectors.Container != "" {
		return ModeHTML
	}
	if feedConfig.Paths.Items != "" {
		trimmed := bytes.TrimSpace(doc.Body)
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
			return ModeJSON
		}
		return ModeXML
	}
	return ModeFeed
}

func maxItems(feedConfig *Config) int {
	if feedConfig.Settings.MaxItems > 0 {
		return feedConfig.Settings.MaxItems
	}
	return defaultMaxItems
}

// HTML CSS-selector mode

func (e *Extractor) extractHTML(doc *Document, feedConfig *Config) ([]Item, error) {
	sel := feedConfig.Selectors
	if sel.Container == "" {
		return nil, fmt.Errorf("container selector is required")
	}
	if sel.Title == "" && sel.Link == "" {
		return nil, fmt.Errorf("at least one of title or link selector is required")
	}

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	limit := maxItems(feedConfig)
	items := make([]Item, 0, limit)

	gq.Find(sel.Container).EachWithBreak(func(_ int, container *goquery.Selection) bool {
		title := strings.TrimSpace(htmlField(container, sel.Title, sel.TitleAttr))
		link := absoluteURL(htmlField(container, sel.Link, cmp.Or(sel.LinkAttr, "href")), doc.EffectiveURL)

		if title == "" && link == "" {
			return true
		}

		item := Item{
			Title:   title,
			Link:    link,
			Author:  strings.TrimSpace(htmlField(container, sel.Author, sel.AuthorAttr)),
			PubDate: normalizeDate(htmlField(container, sel.PubDate, sel.PubDateAttr)),
			GUID:    cmp.Or(link, title),
		}

		if sel.Description != "" {
			if desc := htmlInner(container, sel.Description, sel.DescriptionAttr); desc != "" {
				item.Description = WrapCDATA(desc)
			}
		}

		if sel.Image != "" {
			if src := htmlField(container, sel.Image, cmp.Or(sel.ImageAttr, "src")); src != "" {
				src = absoluteURL(src, doc.EffectiveURL)
				item.Enclosure = &Enclosure{URL: src, Type: enclosureTypeFromURL(src), Length: "0"}
			}
		}

		items = append(items, item)
		return len(items) < limit
	})

	return items, nil
}

// htmlField resolves a field selector scoped to a container, preferring
// an explicit attribute over element text.
func htmlField(container *goquery.Selection, selector, attr string) string {
	if selector == "" {
		return ""
	}
	node := container.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	if attr != "" {
		value, _ := node.Attr(attr)
		return value
	}
	return node.Text()
}

// htmlInner is like htmlField but keeps inner HTML instead of text.
func htmlInner(container *goquery.Selection, selector, attr string) string {
	if attr != "" {
		return htmlField(container, selector, attr)
	}
	node := container.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	inner, err := node.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(inner)
}

// JSON and XML path-template modes

func (e *Extractor) extractJSON(doc *Document, feedConfig *Config) ([]Item, error) {
	var root any
	if err := json.Unmarshal(doc.Body, &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return e.extractByPath(root, doc, feedConfig)
}

func (e *Extractor) extractXML(doc *Document, feedConfig *Config) ([]Item, error) {
	root, err := NormalizeXML(doc.Body)
	if err != nil {
		return nil, err
	}
	return e.extractByPath(root, doc, feedConfig)
}

func (e *Extractor) extractByPath(root any, doc *Document, feedConfig *Config) ([]Item, error) {
	paths := feedConfig.Paths
	if paths.Items == "" {
		return nil, fmt.Errorf("items path is required")
	}

	resolved := ResolvePath(root, paths.Items)
	list, ok := resolved.([]any)
	if !ok {
		// A single-occurrence XML element is not wrapped in an array.
		if resolved == nil || resolved == "" {
			return nil, fmt.Errorf("items path %q resolved to nothing", paths.Items)
		}
		list = []any{resolved}
	}

	if paths.ReverseOrder {
		reversed := make([]any, len(list))
		for i, v := range list {
			reversed[len(list)-1-i] = v
		}
		list = reversed
	}

	// Cap before resolving field sets: reverse-then-cap, consistently.
	if limit := maxItems(feedConfig); len(list) > limit {
		list = list[:limit]
	}

	items := make([]Item, 0, len(list))
	for _, entry := range list {
		item := e.resolveEntry(entry, doc, feedConfig)
		if item.Title == "" && item.Link == "" {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (e *Extractor) resolveEntry(entry any, doc *Document, feedConfig *Config) Item {
	paths := feedConfig.Paths

	link := Interpolate(entry, paths.Link)
	if paths.LinkNeedJoin {
		link = absoluteURL(link, cmp.Or(paths.LinkBaseURL, doc.EffectiveURL))
	}
	link = absoluteURL(link, doc.EffectiveURL)

	item := Item{
		Title:  strings.TrimSpace(Interpolate(entry, paths.Title)),
		Link:   link,
		Author: strings.TrimSpace(Interpolate(entry, paths.Author)),
	}

	if desc := Interpolate(entry, paths.Description); desc != "" {
		item.Description = WrapCDATA(desc)
	}

	item.PubDate = e.resolveDate(entry, feedConfig)

	if paths.Image != "" {
		if src := Interpolate(entry, paths.Image); src != "" {
			src = absoluteURL(src, doc.EffectiveURL)
			item.Enclosure = &Enclosure{URL: src, Type: enclosureTypeFromURL(src), Length: "0"}
		}
	}

	if paths.GUID != "" {
		item.GUID = Interpolate(entry, paths.GUID)
	}
	item.GUID = cmp.Or(item.GUID, item.Link, item.Title)

	return item
}

func (e *Extractor) resolveDate(entry any, feedConfig *Config) string {
	paths := feedConfig.Paths
	raw := strings.TrimSpace(Interpolate(entry, paths.PubDate))
	if raw == "" {
		return time.Now().Format(time.RFC1123Z)
	}

	if paths.TimestampMode {
		if ts, err := strconv.ParseFloat(raw, 64); err == nil {
			return formatUnix(int64(ts), paths.TimestampUnit)
		}
	}

	return normalizeDate(raw)
}

// Standard RSS/Atom mode

func (e *Extractor) extractStandard(doc *Document, feedConfig *Config) ([]Item, error) {
	parsed, err := e.gofeedParser.Parse(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := e.normalizeFeedItem(entry, doc)
		if item.Title == "" && item.Link == "" {
			continue
		}
		items = append(items, item)
		if len(items) >= maxItems(feedConfig) {
			break
		}
	}

	return items, nil
}

func (e *Extractor) normalizeFeedItem(entry *gofeed.Item, doc *Document) Item {
	link := absoluteURL(entry.Link, doc.EffectiveURL)

	item := Item{
		GUID:   cmp.Or(entry.GUID, link),
		Title:  strings.TrimSpace(entry.Title),
		Link:   link,
		Author: feedItemAuthor(entry),
	}

	// Prefer content:encoded/content over description, keep inner HTML,
	// and undo CDATA wrappers plus entity double-escaping before
	// re-wrapping for storage.
	body := cmp.Or(entry.Content, entry.Description)
	if body != "" {
		item.Description = WrapCDATA(decodeEntities(StripCDATA(body)))
	}

	if entry.PublishedParsed != nil {
		item.PubDate = entry.PublishedParsed.Format(time.RFC1123Z)
	} else {
		item.PubDate = normalizeDate(entry.Published)
	}

	if len(entry.Enclosures) > 0 && entry.Enclosures[0] != nil {
		enclosure := entry.Enclosures[0]
		item.Enclosure = &Enclosure{
			URL:    absoluteURL(enclosure.URL, doc.EffectiveURL),
			Type:   enclosure.Type,
			Length: cmp.Or(enclosure.Length, "0"),
		}
	}

	return item
}

func feedItemAuthor(entry *gofeed.Item) string {
	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		if name := strings.TrimSpace(entry.Authors[0].Name); name != "" {
			return name
		}
		return strings.TrimSpace(entry.Authors[0].Email)
	}
	if entry.Author != nil {
		if name := strings.TrimSpace(entry.Author.Name); name != "" {
			return name
		}
		return strings.TrimSpace(entry.Author.Email)
	}
	return ""
}
