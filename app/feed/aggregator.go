package feed

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Aggregator merges several sources into one feed. Sources target
// different hosts, so they are fetched concurrently; a failing source
// contributes an empty list instead of failing the aggregate.
type Aggregator struct {
	processor *Processor
}

func NewAggregator(processor *Processor) *Aggregator {
	return &Aggregator{processor: processor}
}

func (a *Aggregator) Run(ctx context.Context, folderConfig *Config, sources []*Config) []Item {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	merged := make([]Item, 0)

	for _, source := range sources {
		wg.Add(1)
		go func(source *Config) {
			defer wg.Done()

			items, err := a.processor.ExtractItems(ctx, source)
			if err != nil {
				slog.Warn("Folder source failed, contributing no items",
					"folder", folderConfig.Name, "source", source.Name, "error", err)
				return
			}

			mu.Lock()
			merged = append(merged, items...)
			mu.Unlock()
		}(source)
	}

	wg.Wait()

	sort.SliceStable(merged, func(i, j int) bool {
		return parsePubDate(merged[i].PubDate).After(parsePubDate(merged[j].PubDate))
	})

	if limit := maxItems(folderConfig); len(merged) > limit {
		merged = merged[:limit]
	}

	return merged
}

func parsePubDate(pubDate string) time.Time {
	t, err := time.Parse(time.RFC1123Z, pubDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
