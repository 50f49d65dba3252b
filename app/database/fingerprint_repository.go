package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ FingerprintRepository = (*SQLFingerprintRepository)(nil)

type SQLFingerprintRepository struct {
	db *DB
}

func NewFingerprintRepository(db *DB) *SQLFingerprintRepository {
	return &SQLFingerprintRepository{db: db}
}

func (r *SQLFingerprintRepository) GetFingerprint(feedName string) (*Fingerprint, error) {
	var fp Fingerprint
	err := r.db.QueryRow(`
		SELECT feed_name, link, title, description_length, item_count, last_refreshed_at, updated_at
		FROM fingerprints
		WHERE feed_name = ?
	`, feedName).Scan(&fp.FeedName, &fp.Link, &fp.Title, &fp.DescriptionLength,
		&fp.ItemCount, &fp.LastRefreshedAt, &fp.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fingerprint: %w", err)
	}

	return &fp, nil
}

func (r *SQLFingerprintRepository) GetFingerprintCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM fingerprints`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fingerprints: %w", err)
	}
	return count, nil
}

func (r *SQLFingerprintRepository) UpsertFingerprint(fingerprint Fingerprint) error {
	_, err := r.db.Exec(`
		INSERT INTO fingerprints (feed_name, link, title, description_length, item_count, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (feed_name) DO UPDATE SET
			link = excluded.link,
			title = excluded.title,
			description_length = excluded.description_length,
			item_count = excluded.item_count,
			updated_at = CURRENT_TIMESTAMP
	`, fingerprint.FeedName, fingerprint.Link, fingerprint.Title,
		fingerprint.DescriptionLength, fingerprint.ItemCount)

	if err != nil {
		return fmt.Errorf("failed to upsert fingerprint: %w", err)
	}
	return nil
}

func (r *SQLFingerprintRepository) TouchRefreshed(feedName string, refreshedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE fingerprints SET last_refreshed_at = ? WHERE feed_name = ?
	`, refreshedAt, feedName)
	if err != nil {
		return fmt.Errorf("failed to update refresh time: %w", err)
	}
	return nil
}
