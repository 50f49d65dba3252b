package tasks

import (
	"context"
	"log/slog"

	"github.com/rssforge/rssforge/app/database"
)

// Notifier is told when a feed's leading content changed. Delivery
// (mail, webhooks, chat) is plugged in from outside; the default just
// records the change.
type Notifier interface {
	FeedChanged(ctx context.Context, feedName string, fingerprint database.Fingerprint) error
}

type LogNotifier struct{}

func (LogNotifier) FeedChanged(_ context.Context, feedName string, fingerprint database.Fingerprint) error {
	slog.Info("Feed content changed",
		"feed", feedName,
		"title", fingerprint.Title,
		"link", fingerprint.Link)
	return nil
}
