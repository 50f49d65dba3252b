package api

import (
	"github.com/rssforge/rssforge/app/database"
	"github.com/rssforge/rssforge/app/feed"
)

type Handler struct {
	configCache     *feed.ConfigCache
	processor       *feed.Processor
	aggregator      *feed.Aggregator
	fingerprintRepo database.FingerprintRepository
}

var contentTypes = map[string]string{
	feed.FormatRSS:  "application/rss+xml; charset=utf-8",
	feed.FormatAtom: "application/atom+xml; charset=utf-8",
	feed.FormatJSON: "application/json; charset=utf-8",
}
