package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rssforge/rssforge/app/database"
	"github.com/rssforge/rssforge/app/feed"
)

// RefreshFeedTask runs one source through the extraction pipeline and
// compares the result's leading item against the stored fingerprint.
type RefreshFeedTask struct {
	Task
	FeedConfig      *feed.Config
	processor       *feed.Processor
	fingerprintRepo database.FingerprintRepository
	notifier        Notifier
}

func NewRefreshFeedTask(feedName string, feedConfig *feed.Config, processor *feed.Processor,
	fingerprintRepo database.FingerprintRepository, notifier Notifier) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:            NewTask(TaskTypeRefreshFeed, feedName),
		FeedConfig:      feedConfig,
		processor:       processor,
		fingerprintRepo: fingerprintRepo,
		notifier:        notifier,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	items, err := t.processor.ExtractItems(ctx, t.FeedConfig)
	if err != nil {
		return fmt.Errorf("failed to refresh feed: %w", err)
	}

	now := time.Now().UTC()
	current := fingerprintOf(t.FeedName, items)

	previous, err := t.fingerprintRepo.GetFingerprint(t.FeedName)
	if err != nil {
		return fmt.Errorf("failed to load fingerprint: %w", err)
	}

	changed := previous != nil && !current.Matches(previous)

	if err := t.fingerprintRepo.UpsertFingerprint(current); err != nil {
		return fmt.Errorf("failed to store fingerprint: %w", err)
	}
	if err := t.fingerprintRepo.TouchRefreshed(t.FeedName, now); err != nil {
		return fmt.Errorf("failed to record refresh time: %w", err)
	}

	if changed {
		if err := t.notifier.FeedChanged(ctx, t.FeedName, current); err != nil {
			slog.Warn("Change notification failed", "feed", t.FeedName, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"items", len(items),
		"changed", changed)

	return nil
}

// fingerprintOf derives the change-detection record from the ordered
// item list: the first item's link and title plus its description
// length.
func fingerprintOf(feedName string, items []feed.Item) database.Fingerprint {
	fp := database.Fingerprint{
		FeedName:  feedName,
		ItemCount: len(items),
	}
	if len(items) > 0 {
		fp.Link = items[0].Link
		fp.Title = items[0].Title
		fp.DescriptionLength = len(items[0].Description)
	}
	return fp
}
