package feed

import (
	"context"
	"testing"
)

func folderSources(fetcher *stubFetcher) (*Aggregator, []*Config) {
	aggregator := NewAggregator(newTestProcessor(fetcher))

	sources := []*Config{
		{
			Name:  "alpha",
			URL:   "https://a.example.com/list",
			Mode:  ModeJSON,
			Paths: Paths{Items: "list", Title: "t", PubDate: "d"},
		},
		{
			Name:  "beta",
			URL:   "https://b.example.com/list",
			Mode:  ModeJSON,
			Paths: Paths{Items: "list", Title: "t", PubDate: "d"},
		},
	}

	return aggregator, sources
}

func TestAggregator_MergesAndSortsByDate(t *testing.T) {
	setupTestCfg()

	fetcher := &stubFetcher{docs: map[string]*Document{
		"https://a.example.com/list": {
			EffectiveURL: "https://a.example.com/list",
			Body:         []byte(`{"list":[{"t":"Old","d":"2023-07-01T10:00:00Z"},{"t":"Newest","d":"2023-07-05T10:00:00Z"}]}`),
		},
		"https://b.example.com/list": {
			EffectiveURL: "https://b.example.com/list",
			Body:         []byte(`{"list":[{"t":"Middle","d":"2023-07-03T10:00:00Z"}]}`),
		},
	}}

	aggregator, sources := folderSources(fetcher)
	folderConfig := &Config{Name: "all", Sources: []string{"alpha", "beta"}}

	items := aggregator.Run(context.Background(), folderConfig, sources)
	if len(items) != 3 {
		t.Fatalf("Expected 3 merged items, got %d", len(items))
	}

	order := []string{"Newest", "Middle", "Old"}
	for i, expected := range order {
		if items[i].Title != expected {
			t.Errorf("Position %d: expected %q, got %q", i, expected, items[i].Title)
		}
	}
}

func TestAggregator_FailingSourceContributesNothing(t *testing.T) {
	setupTestCfg()

	// Only alpha has a document; beta's fetch fails
	fetcher := &stubFetcher{docs: map[string]*Document{
		"https://a.example.com/list": {
			EffectiveURL: "https://a.example.com/list",
			Body:         []byte(`{"list":[{"t":"Survivor","d":"2023-07-01T10:00:00Z"}]}`),
		},
	}}

	aggregator, sources := folderSources(fetcher)
	folderConfig := &Config{Name: "all", Sources: []string{"alpha", "beta"}}

	items := aggregator.Run(context.Background(), folderConfig, sources)
	if len(items) != 1 || items[0].Title != "Survivor" {
		t.Errorf("A failing source must not fail the aggregate, got %+v", items)
	}
}

func TestAggregator_CapsByFolderMaxItems(t *testing.T) {
	setupTestCfg()

	fetcher := &stubFetcher{docs: map[string]*Document{
		"https://a.example.com/list": {
			EffectiveURL: "https://a.example.com/list",
			Body:         []byte(`{"list":[{"t":"1","d":"2023-07-01T10:00:00Z"},{"t":"2","d":"2023-07-02T10:00:00Z"},{"t":"3","d":"2023-07-03T10:00:00Z"}]}`),
		},
	}}

	aggregator, sources := folderSources(fetcher)
	folderConfig := &Config{
		Name:     "all",
		Sources:  []string{"alpha"},
		Settings: Settings{MaxItems: 2},
	}

	items := aggregator.Run(context.Background(), folderConfig, sources[:1])
	if len(items) != 2 {
		t.Fatalf("Expected folder cap of 2, got %d", len(items))
	}
	if items[0].Title != "3" || items[1].Title != "2" {
		t.Errorf("Cap should keep the newest items, got [%s %s]", items[0].Title, items[1].Title)
	}
}
