package feed

import (
	"bytes"
	"cmp"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/rssforge/rssforge/app/cfg"
)

// Serialization formats recognized by the HTTP layer.
const (
	FormatRSS  = "rss"
	FormatAtom = "atom"
	FormatJSON = "json"
)

// Literal fallbacks so serialization never emits empty required
// elements. Kept byte-for-byte for parity with existing consumers.
const (
	fallbackField = "无"
	fallbackTitle = "Feed"
)

const summaryLimit = 200

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders an item list plus channel metadata into the requested
// wire format. feedName is used for the self-referencing link.
func (g *Generator) Run(items []Item, channel Channel, format, feedName string) (string, error) {
	channel.Title = cmp.Or(channel.Title, fallbackTitle)
	channel.Link = cmp.Or(channel.Link, fallbackField)
	channel.Description = cmp.Or(channel.Description, fallbackField)

	switch format {
	case FormatAtom:
		return g.renderAtom(items, channel, feedName), nil
	case FormatJSON:
		return g.renderJSONFeed(items, channel, feedName)
	case FormatRSS, "":
		return g.renderRSS(items, channel, feedName), nil
	default:
		return "", fmt.Errorf("unknown feed format: %q", format)
	}
}

func (g *Generator) selfLink(feedName string) string {
	if cfg.Get().BaseUrl != "" {
		return fmt.Sprintf("%s/feeds/%s", cfg.Get().BaseUrl, feedName)
	}
	return fmt.Sprintf("http://localhost:%s/feeds/%s", cfg.Get().Port, feedName)
}

// RSS 2.0

func (g *Generator) renderRSS(items []Item, channel Channel, feedName string) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", channel.Description, 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.selfLink(feedName))))
	g.writeElement(&buf, "generator", fmt.Sprintf("RSS Forge/%s", cfg.Get().Version), 4)

	if channel.Image != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", channel.Image, 6)
		g.writeElement(&buf, "title", channel.Title, 6)
		g.writeElement(&buf, "link", channel.Link, 6)
		buf.WriteString("    </image>\n")
	}

	for _, item := range items {
		g.writeRSSItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func (g *Generator) writeRSSItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", cmp.Or(item.Title, fallbackField), 6)
	g.writeElement(buf, "link", cmp.Or(item.Link, fallbackField), 6)

	// Description is inserted verbatim: it is already CDATA-wrapped by
	// the extraction engine where needed.
	buf.WriteString("      <description>")
	buf.WriteString(cmp.Or(item.Description, fallbackField))
	buf.WriteString("</description>\n")

	if item.Author != "" {
		g.writeElement(buf, "author", item.Author, 6)
	}

	if item.Enclosure != nil && item.Enclosure.URL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%s\" type=\"%s\" />\n",
			html.EscapeString(item.Enclosure.URL),
			html.EscapeString(cmp.Or(item.Enclosure.Length, "0")),
			html.EscapeString(item.Enclosure.Type)))
	}

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(cmp.Or(item.GUID, item.Link, item.Title)))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "pubDate", item.PubDate, 6)

	buf.WriteString("    </item>\n")
}

// Atom

func (g *Generator) renderAtom(items []Item, channel Channel, feedName string) string {
	var buf bytes.Buffer
	self := g.selfLink(feedName)

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n")

	g.writeElement(&buf, "title", channel.Title, 2)
	buf.WriteString(fmt.Sprintf("  <link href=\"%s\" />\n", html.EscapeString(channel.Link)))
	buf.WriteString(fmt.Sprintf("  <link href=\"%s\" rel=\"self\" />\n", html.EscapeString(self)))
	g.writeElement(&buf, "id", channel.Link, 2)

	updated := time.Now()
	if len(items) > 0 {
		if t, err := time.Parse(time.RFC1123Z, items[0].PubDate); err == nil {
			updated = t
		}
	}
	g.writeElement(&buf, "updated", updated.Format(time.RFC3339), 2)
	g.writeElement(&buf, "subtitle", channel.Description, 2)

	if channel.Image != "" {
		g.writeElement(&buf, "logo", channel.Image, 2)
		g.writeElement(&buf, "icon", channel.Image, 2)
	}

	for _, item := range items {
		g.writeAtomEntry(&buf, item)
	}

	buf.WriteString("</feed>")

	return buf.String()
}

func (g *Generator) writeAtomEntry(buf *bytes.Buffer, item Item) {
	buf.WriteString("  <entry>\n")

	g.writeElement(buf, "title", cmp.Or(item.Title, fallbackField), 4)
	if item.Link != "" {
		buf.WriteString(fmt.Sprintf("    <link href=\"%s\" />\n", html.EscapeString(item.Link)))
	}
	g.writeElement(buf, "id", cmp.Or(item.GUID, item.Link, item.Title), 4)

	updated := time.Now()
	if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
		updated = t
	}
	g.writeElement(buf, "updated", updated.Format(time.RFC3339), 4)

	content := StripCDATA(item.Description)
	g.writeElement(buf, "summary", summarize(content), 4)

	if content != "" {
		buf.WriteString("    <content type=\"html\"><![CDATA[")
		buf.WriteString(content)
		buf.WriteString("]]></content>\n")
	}

	if item.Author != "" {
		buf.WriteString("    <author>\n")
		g.writeElement(buf, "name", item.Author, 6)
		buf.WriteString("    </author>\n")
	}

	buf.WriteString("  </entry>\n")
}

// JSON Feed v1.1

type jsonFeed struct {
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	HomePageURL string         `json:"home_page_url"`
	FeedURL     string         `json:"feed_url"`
	Description string         `json:"description"`
	Icon        string         `json:"icon,omitempty"`
	Favicon     string         `json:"favicon,omitempty"`
	Items       []jsonFeedItem `json:"items"`
}

type jsonFeedItem struct {
	ID            string           `json:"id"`
	URL           string           `json:"url"`
	Title         string           `json:"title"`
	ContentHTML   string           `json:"content_html"`
	Summary       string           `json:"summary,omitempty"`
	DatePublished string           `json:"date_published"`
	Author        *jsonFeedAuthor  `json:"author,omitempty"`
	Attachments   []jsonAttachment `json:"attachments,omitempty"`
}

type jsonFeedAuthor struct {
	Name string `json:"name"`
}

type jsonAttachment struct {
	URL         string `json:"url"`
	MimeType    string `json:"mime_type"`
	SizeInBytes int64  `json:"size_in_bytes"`
}

func (g *Generator) renderJSONFeed(items []Item, channel Channel, feedName string) (string, error) {
	out := jsonFeed{
		Version:     "https://jsonfeed.org/version/1.1",
		Title:       channel.Title,
		HomePageURL: channel.Link,
		FeedURL:     g.selfLink(feedName),
		Description: channel.Description,
		Icon:        channel.Image,
		Favicon:     channel.Image,
		Items:       make([]jsonFeedItem, 0, len(items)),
	}

	for _, item := range items {
		content := StripCDATA(item.Description)

		entry := jsonFeedItem{
			ID:            cmp.Or(item.GUID, item.Link, item.Title),
			URL:           item.Link,
			Title:         cmp.Or(item.Title, fallbackField),
			ContentHTML:   content,
			Summary:       summarize(content),
			DatePublished: jsonFeedDate(item.PubDate),
		}

		if item.Author != "" {
			entry.Author = &jsonFeedAuthor{Name: item.Author}
		}

		if item.Enclosure != nil && item.Enclosure.URL != "" {
			size, err := strconv.ParseInt(item.Enclosure.Length, 10, 64)
			if err != nil {
				size = 0
			}
			entry.Attachments = []jsonAttachment{{
				URL:         item.Enclosure.URL,
				MimeType:    item.Enclosure.Type,
				SizeInBytes: size,
			}}
		}

		out.Items = append(out.Items, entry)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON Feed: %w", err)
	}
	return string(data), nil
}

// jsonFeedDate converts the stored RFC 1123Z pubDate to ISO 8601;
// invalid or missing dates normalize to the epoch.
func jsonFeedDate(pubDate string) string {
	t, err := time.Parse(time.RFC1123Z, pubDate)
	if err != nil {
		return time.Unix(0, 0).UTC().Format(time.RFC3339)
	}
	return t.Format(time.RFC3339)
}

// summarize strips a single CDATA wrapper and hard-truncates to 200
// UTF-16 code units, matching what existing feed consumers expect.
func summarize(s string) string {
	units := utf16.Encode([]rune(StripCDATA(s)))
	if len(units) > summaryLimit {
		units = units[:summaryLimit]
	}
	return string(utf16.Decode(units))
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
