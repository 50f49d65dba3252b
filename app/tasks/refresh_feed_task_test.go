package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rssforge/rssforge/app/database"
	"github.com/rssforge/rssforge/app/feed"
)

type fakeFetcher struct {
	body string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*feed.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &feed.Document{Body: []byte(f.body), EffectiveURL: url}, nil
}

type fakeRepo struct {
	fingerprints map[string]*database.Fingerprint
	touched      map[string]time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		fingerprints: make(map[string]*database.Fingerprint),
		touched:      make(map[string]time.Time),
	}
}

func (r *fakeRepo) GetFingerprint(feedName string) (*database.Fingerprint, error) {
	return r.fingerprints[feedName], nil
}

func (r *fakeRepo) GetFingerprintCount() (int, error) {
	return len(r.fingerprints), nil
}

func (r *fakeRepo) UpsertFingerprint(fingerprint database.Fingerprint) error {
	r.fingerprints[fingerprint.FeedName] = &fingerprint
	return nil
}

func (r *fakeRepo) TouchRefreshed(feedName string, refreshedAt time.Time) error {
	r.touched[feedName] = refreshedAt
	return nil
}

type recordingNotifier struct {
	changed []string
}

func (n *recordingNotifier) FeedChanged(_ context.Context, feedName string, _ database.Fingerprint) error {
	n.changed = append(n.changed, feedName)
	return nil
}

func testProcessor(fetcher feed.Fetcher) *feed.Processor {
	pipeline := feed.NewPipeline(feed.NewFullTextEnricher(fetcher), feed.NewFilterer(), feed.NoopTranslator{})
	return feed.NewProcessor(fetcher, feed.NewExtractor(), pipeline, feed.NewGenerator())
}

func enabledConfig() *feed.Config {
	return &feed.Config{
		Name:     "news",
		URL:      "https://example.com/list",
		Mode:     feed.ModeJSON,
		Settings: feed.Settings{Enabled: true},
		Paths:    feed.Paths{Items: "list", Title: "t", Link: "u"},
	}
}

func TestRefreshFeedTask_FirstRunStoresFingerprintWithoutNotifying(t *testing.T) {
	fetcher := &fakeFetcher{body: `{"list":[{"t":"Hello","u":"https://example.com/1"}]}`}
	repo := newFakeRepo()
	notifier := &recordingNotifier{}

	task := NewRefreshFeedTask("news", enabledConfig(), testProcessor(fetcher), repo, notifier)
	require.NoError(t, task.Execute(context.Background()))

	fp := repo.fingerprints["news"]
	require.NotNil(t, fp)
	assert.Equal(t, "Hello", fp.Title)
	assert.Equal(t, "https://example.com/1", fp.Link)
	assert.Equal(t, 1, fp.ItemCount)

	assert.Empty(t, notifier.changed, "first run has no previous fingerprint to compare against")
	assert.Contains(t, repo.touched, "news")
}

func TestRefreshFeedTask_UnchangedContentDoesNotNotify(t *testing.T) {
	fetcher := &fakeFetcher{body: `{"list":[{"t":"Hello","u":"https://example.com/1"}]}`}
	repo := newFakeRepo()
	notifier := &recordingNotifier{}

	task := NewRefreshFeedTask("news", enabledConfig(), testProcessor(fetcher), repo, notifier)
	require.NoError(t, task.Execute(context.Background()))
	require.NoError(t, task.Execute(context.Background()))

	assert.Empty(t, notifier.changed)
}

func TestRefreshFeedTask_ChangedContentNotifies(t *testing.T) {
	fetcher := &fakeFetcher{body: `{"list":[{"t":"Hello","u":"https://example.com/1"}]}`}
	repo := newFakeRepo()
	notifier := &recordingNotifier{}

	config := enabledConfig()
	processor := testProcessor(fetcher)

	task := NewRefreshFeedTask("news", config, processor, repo, notifier)
	require.NoError(t, task.Execute(context.Background()))

	fetcher.body = `{"list":[{"t":"Breaking","u":"https://example.com/2"}]}`
	require.NoError(t, task.Execute(context.Background()))

	assert.Equal(t, []string{"news"}, notifier.changed)
	assert.Equal(t, "Breaking", repo.fingerprints["news"].Title)
}

func TestRefreshFeedTask_DisabledFeedSkips(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("should not be called")}
	repo := newFakeRepo()
	notifier := &recordingNotifier{}

	config := enabledConfig()
	config.Settings.Enabled = false

	task := NewRefreshFeedTask("news", config, testProcessor(fetcher), repo, notifier)
	require.NoError(t, task.Execute(context.Background()))
	assert.Empty(t, repo.fingerprints)
}

func TestRefreshFeedTask_FetchErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("connection refused")}
	repo := newFakeRepo()

	task := NewRefreshFeedTask("news", enabledConfig(), testProcessor(fetcher), repo, &recordingNotifier{})
	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh feed")
	assert.Empty(t, repo.touched, "a failed refresh must not move the refresh clock")
}

func TestRefreshFeedTask_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewRefreshFeedTask("news", enabledConfig(), testProcessor(&fakeFetcher{}), newFakeRepo(), &recordingNotifier{})
	assert.Error(t, task.Execute(ctx))
}

func TestTask_RetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeed, "news")

	assert.NotEmpty(t, task.GetID())
	assert.Equal(t, TaskTypeRefreshFeed, task.GetType())
	assert.Equal(t, "news", task.GetFeedName())
	assert.Equal(t, DefaultMaxRetries, task.GetMaxRetries())

	for i := 0; i < DefaultMaxRetries; i++ {
		assert.True(t, task.CanRetry())
		task.IncrementRetryCount()
	}
	assert.False(t, task.CanRetry())
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeed, "news")
	assert.Equal(t, time.Duration(0), task.GetDuration())

	task.Start()
	assert.GreaterOrEqual(t, task.GetDuration(), time.Duration(0))
}
