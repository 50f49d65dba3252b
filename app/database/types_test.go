package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Matches(t *testing.T) {
	base := Fingerprint{
		FeedName:          "news",
		Link:              "https://example.com/1",
		Title:             "Hello",
		DescriptionLength: 42,
		ItemCount:         10,
	}

	same := base
	assert.True(t, base.Matches(&same))

	// Item count is informational and does not affect matching
	differentCount := base
	differentCount.ItemCount = 5
	assert.True(t, base.Matches(&differentCount))

	differentLink := base
	differentLink.Link = "https://example.com/2"
	assert.False(t, base.Matches(&differentLink))

	differentTitle := base
	differentTitle.Title = "Changed"
	assert.False(t, base.Matches(&differentTitle))

	differentLength := base
	differentLength.DescriptionLength = 7
	assert.False(t, base.Matches(&differentLength))

	assert.False(t, base.Matches(nil))
}
