package database

import "time"

type FingerprintRepository interface {
	GetFingerprint(feedName string) (*Fingerprint, error)
	GetFingerprintCount() (int, error)

	UpsertFingerprint(fingerprint Fingerprint) error
	TouchRefreshed(feedName string, refreshedAt time.Time) error
}
