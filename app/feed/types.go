package feed

import "context"

// Extraction and serialization types

// Item is the canonical extracted record. Description holds an HTML
// fragment, usually wrapped in CDATA markers to protect embedded markup;
// it is stored already-unescaped and the RSS serializer inserts it
// verbatim.
type Item struct {
	GUID         string
	Title        string
	Link         string
	Description  string
	Author       string
	PubDate      string // RFC 1123Z
	Enclosure    *Enclosure
	IsTranslated bool
}

type Enclosure struct {
	URL    string
	Type   string
	Length string // "0" when the true size is unknown
}

// Channel describes the feed as a whole. Empty fields fall back to
// literal defaults at serialization time so required elements are never
// emitted empty.
type Channel struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// Result is the shape handed to the HTTP layer. IsError is the only
// structured signal distinguishing a real feed from a failure
// placeholder; EffectiveURL reports the URL actually fetched (redirect
// or mirror target) and is strictly informational.
type Result struct {
	Data         string
	Items        []Item
	IsError      bool
	Message      string
	EffectiveURL string
}

// Document is what the fetch collaborator hands to the engine. Body is
// decoded to UTF-8; EffectiveURL may differ from the requested URL and
// is the base for relative-link resolution.
type Document struct {
	Body         []byte
	EffectiveURL string
	ContentType  string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// Configuration types

type Mode string

const (
	ModeFeed Mode = "feed" // standard RSS/Atom via gofeed
	ModeHTML Mode = "html" // CSS-selector extraction
	ModeJSON Mode = "json" // path-template extraction over JSON
	ModeXML  Mode = "xml"  // path-template extraction over normalized XML
)

type Config struct {
	Name      string       // derived from filename (without .yml extension)
	URL       string       `yaml:"url"`
	Mode      Mode         `yaml:"mode"`
	Channel   Channel      `yaml:"channel"`
	Settings  Settings     `yaml:"settings"`
	Selectors Selectors    `yaml:"selectors"`
	Paths     Paths        `yaml:"paths"`
	Filters   []FilterRule `yaml:"filters"`
	Sources   []string     `yaml:"sources"` // non-empty makes this a folder config
}

type Settings struct {
	Enabled          bool   `yaml:"enabled"`
	RefreshInterval  int    `yaml:"refresh_interval"` // seconds
	MaxItems         int    `yaml:"max_items"`
	Timeout          int    `yaml:"timeout"` // seconds
	FullText         bool   `yaml:"full_text"`
	FullTextSelector string `yaml:"full_text_selector"`
	Translate        bool   `yaml:"translate"`
	TargetLanguage   string `yaml:"target_language"`
}

// Selectors configure the HTML CSS-selector mode. An explicit *Attr
// takes precedence over element text for that field.
type Selectors struct {
	Container       string `yaml:"container"`
	Title           string `yaml:"title"`
	TitleAttr       string `yaml:"title_attr"`
	Link            string `yaml:"link"`
	LinkAttr        string `yaml:"link_attr"`
	Description     string `yaml:"description"`
	DescriptionAttr string `yaml:"description_attr"`
	Author          string `yaml:"author"`
	AuthorAttr      string `yaml:"author_attr"`
	PubDate         string `yaml:"pub_date"`
	PubDateAttr     string `yaml:"pub_date_attr"`
	Image           string `yaml:"image"`
	ImageAttr       string `yaml:"image_attr"`
}

// Paths configure the JSON and XML path-template modes. Items is a
// dotted/bracketed path to the item list; the field entries are
// templates expanded per item ("{t}" or a bare path).
type Paths struct {
	Items         string `yaml:"items"`
	Title         string `yaml:"title"`
	Link          string `yaml:"link"`
	Description   string `yaml:"description"`
	Author        string `yaml:"author"`
	PubDate       string `yaml:"pub_date"`
	Image         string `yaml:"image"`
	GUID          string `yaml:"guid"`
	ReverseOrder  bool   `yaml:"reverse_order"`
	LinkNeedJoin  bool   `yaml:"link_need_join"`
	LinkBaseURL   string `yaml:"link_base_url"`
	TimestampMode bool   `yaml:"timestamp_mode"`
	TimestampUnit string `yaml:"timestamp_unit"` // "s" or "ms"
}

type FilterRule struct {
	Field  string `yaml:"field"`
	Type   string `yaml:"type"` // "substring" or "regex"
	Value  string `yaml:"value"`
	Mode   string `yaml:"mode"` // "include" or "exclude"
	Active bool   `yaml:"active"`
}

func (c *Config) IsFolder() bool {
	return len(c.Sources) > 0
}
