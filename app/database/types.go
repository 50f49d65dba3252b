package database

import (
	"time"
)

// Fingerprint is the per-feed change-detection record: the leading
// item's identity plus the description length, enough to tell whether a
// feed's head moved since the previous run.
type Fingerprint struct {
	FeedName          string
	Link              string
	Title             string
	DescriptionLength int
	ItemCount         int
	LastRefreshedAt   *time.Time
	UpdatedAt         time.Time
}

// Matches reports whether another fingerprint describes the same
// leading content.
func (f *Fingerprint) Matches(other *Fingerprint) bool {
	if other == nil {
		return false
	}
	return f.Link == other.Link &&
		f.Title == other.Title &&
		f.DescriptionLength == other.DescriptionLength
}
