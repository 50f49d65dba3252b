package feed

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Delay between article fetches of one batch. Fetches stay sequential
// so the request rate against a single upstream host stays low.
const fullTextFetchDelay = 200 * time.Millisecond

// FullTextEnricher replaces short item descriptions with content
// scraped from each item's own linked page.
type FullTextEnricher struct {
	fetcher Fetcher
}

func NewFullTextEnricher(fetcher Fetcher) *FullTextEnricher {
	return &FullTextEnricher{fetcher: fetcher}
}

// Run enriches items in place. Per-item failures leave the item
// unchanged and never abort the batch.
func (e *FullTextEnricher) Run(ctx context.Context, items []Item, feedConfig *Config) []Item {
	for i := range items {
		if items[i].Link == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return items
		default:
		}

		content, err := e.extractArticle(ctx, items[i].Link, feedConfig)
		if err != nil {
			slog.Debug("Full-text extraction failed, keeping original description",
				"feed", feedConfig.Name, "link", items[i].Link, "error", err)
		} else if content != "" {
			items[i].Description = WrapCDATA(content)
		}

		if i < len(items)-1 {
			time.Sleep(fullTextFetchDelay)
		}
	}

	return items
}

func (e *FullTextEnricher) extractArticle(ctx context.Context, link string, feedConfig *Config) (string, error) {
	doc, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		return "", err
	}

	if selector := feedConfig.Settings.FullTextSelector; selector != "" {
		return e.extractBySelector(doc, selector, link)
	}

	article, err := readability.FromReader(bytes.NewReader(doc.Body), nil)
	if err != nil {
		return "", err
	}
	return article.Content, nil
}

func (e *FullTextEnricher) extractBySelector(doc *Document, selector, link string) (string, error) {
	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return "", err
	}

	node := gq.Find(selector).First()
	if node.Length() == 0 {
		return "", nil
	}

	fixLazyImages(node)
	fixRelativeURLs(node, link)

	inner, err := node.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(inner), nil
}

// fixLazyImages promotes common lazy-loading attributes to src so the
// extracted fragment renders outside the origin page.
func fixLazyImages(root *goquery.Selection) {
	root.Find("img").Each(func(_ int, img *goquery.Selection) {
		for _, attr := range []string{"data-src", "data-original", "data-lazy-src"} {
			if v, ok := img.Attr(attr); ok && v != "" {
				img.SetAttr("src", v)
				return
			}
		}
	})
}

func fixRelativeURLs(root *goquery.Selection, base string) {
	root.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			img.SetAttr("src", absoluteURL(src, base))
		}
	})
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			a.SetAttr("href", absoluteURL(href, base))
		}
	})
}
