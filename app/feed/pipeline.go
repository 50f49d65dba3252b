package feed

import (
	"context"
	"log/slog"
)

// Pipeline applies the optional post-processing stages over an
// extracted item list, strictly in order: full-text replacement, rule
// filtering, translation. Each stage is toggled by the feed config.
type Pipeline struct {
	enricher   *FullTextEnricher
	filterer   *Filterer
	translator Translator
}

func NewPipeline(enricher *FullTextEnricher, filterer *Filterer, translator Translator) *Pipeline {
	return &Pipeline{
		enricher:   enricher,
		filterer:   filterer,
		translator: translator,
	}
}

func (p *Pipeline) Run(ctx context.Context, items []Item, feedConfig *Config) []Item {
	if feedConfig.Settings.FullText && p.enricher != nil {
		items = p.enricher.Run(ctx, items, feedConfig)
	}

	if len(feedConfig.Filters) > 0 {
		items = p.filterer.Run(items, feedConfig.Filters)
	}

	if feedConfig.Settings.Translate && p.translator != nil {
		translated, err := p.translator.Run(ctx, items, feedConfig)
		if err != nil {
			slog.Warn("Translation failed, serving untranslated items", "feed", feedConfig.Name, "error", err)
		} else {
			items = translated
		}
	}

	return items
}
