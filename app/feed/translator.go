package feed

import "context"

// Translator is the invocation contract for the external translation
// service: items in, replacement items out. Implementations should set
// IsTranslated on items they touch.
type Translator interface {
	Run(ctx context.Context, items []Item, feedConfig *Config) ([]Item, error)
}

// NoopTranslator satisfies the contract without an external service.
type NoopTranslator struct{}

func (NoopTranslator) Run(_ context.Context, items []Item, _ *Config) ([]Item, error) {
	return items, nil
}
