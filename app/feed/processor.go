package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Processor is the top-level extraction entry point: fetch → extract →
// post-process → serialize. It never returns an error; every failure
// path still yields a syntactically valid feed containing exactly one
// descriptive item, with IsError set so the HTTP layer can choose a
// short cache lifetime.
type Processor struct {
	fetcher   Fetcher
	extractor *Extractor
	pipeline  *Pipeline
	generator *Generator
}

func NewProcessor(fetcher Fetcher, extractor *Extractor, pipeline *Pipeline, generator *Generator) *Processor {
	return &Processor{
		fetcher:   fetcher,
		extractor: extractor,
		pipeline:  pipeline,
		generator: generator,
	}
}

func (p *Processor) Run(ctx context.Context, feedConfig *Config, format string) Result {
	started := time.Now()

	ctx, cancel := timeoutContext(ctx, feedConfig)
	defer cancel()

	doc, err := p.fetcher.Fetch(ctx, feedConfig.URL)
	if err != nil {
		return p.errorResult(feedConfig, format, fmt.Errorf("failed to fetch source: %w", err))
	}

	items, err := p.extractor.Run(doc, feedConfig)
	if err != nil {
		return p.errorResult(feedConfig, format, err)
	}

	items = p.pipeline.Run(ctx, items, feedConfig)

	data, err := p.generator.Run(items, p.channelFor(feedConfig), format, feedConfig.Name)
	if err != nil {
		return p.errorResult(feedConfig, format, err)
	}

	slog.Info("Feed processed",
		"feed", feedConfig.Name,
		"format", format,
		"items", len(items),
		"duration", time.Since(started))

	return Result{
		Data:         data,
		Items:        items,
		EffectiveURL: doc.EffectiveURL,
	}
}

// ExtractItems runs fetch → extract → pipeline without serialization,
// for callers that consume the ordered item list directly (preview,
// aggregation, change detection).
func (p *Processor) ExtractItems(ctx context.Context, feedConfig *Config) ([]Item, error) {
	ctx, cancel := timeoutContext(ctx, feedConfig)
	defer cancel()

	doc, err := p.fetcher.Fetch(ctx, feedConfig.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}

	items, err := p.extractor.Run(doc, feedConfig)
	if err != nil {
		return nil, err
	}

	return p.pipeline.Run(ctx, items, feedConfig), nil
}

// Serialize renders an already-extracted item list, used by the folder
// aggregation path.
func (p *Processor) Serialize(items []Item, feedConfig *Config, format string) (string, error) {
	return p.generator.Run(items, p.channelFor(feedConfig), format, feedConfig.Name)
}

// timeoutContext bounds one processing run by the feed's configured
// timeout, covering the source fetch and any full-text page fetches.
func timeoutContext(ctx context.Context, feedConfig *Config) (context.Context, context.CancelFunc) {
	if feedConfig.Settings.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(feedConfig.Settings.Timeout)*time.Second)
}

func (p *Processor) channelFor(feedConfig *Config) Channel {
	channel := feedConfig.Channel
	channel.Link = cmp.Or(channel.Link, feedConfig.URL)
	return channel
}

func (p *Processor) errorResult(feedConfig *Config, format string, cause error) Result {
	slog.Error("Feed processing failed", "feed", feedConfig.Name, "error", cause)

	errorItem := Item{
		Title:       "Feed processing failed",
		Link:        feedConfig.URL,
		GUID:        feedConfig.URL,
		Description: WrapCDATA(fmt.Sprintf("Failed to process feed: %s", cause.Error())),
		PubDate:     time.Now().Format(time.RFC1123Z),
	}

	data, err := p.generator.Run([]Item{errorItem}, p.channelFor(feedConfig), format, feedConfig.Name)
	if err != nil {
		// Unknown format: fall back to RSS so the client still gets a
		// well-formed body.
		data, _ = p.generator.Run([]Item{errorItem}, p.channelFor(feedConfig), FormatRSS, feedConfig.Name)
	}

	return Result{
		Data:    data,
		Items:   []Item{errorItem},
		IsError: true,
		Message: cause.Error(),
	}
}
