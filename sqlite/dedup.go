package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/transpress"
)

// Compile-time interface verification.
var _ transpress.DedupStore = (*DedupStore)(nil)

// DedupStore implements transpress.DedupStore using SQLite.
type DedupStore struct {
	db *DB
}

// NewDedupStore creates a new DedupStore.
func NewDedupStore(db *DB) *DedupStore {
	return &DedupStore{db: db}
}

const recordColumns = `key, source_id, post_id, post_link, slug, source_published_at, recorded_at, content_hash`

// LoadRecords retrieves all records.
func (s *DedupStore) LoadRecords(ctx context.Context) ([]*transpress.DedupRecord, error) {
	return s.FindRecords(ctx, 0, 0)
}

// FindRecords retrieves records, most recently recorded first. A limit of
// zero returns all records.
func (s *DedupStore) FindRecords(ctx context.Context, limit, offset int) ([]*transpress.DedupRecord, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + recordColumns + ` FROM posted_articles ORDER BY recorded_at DESC, key ASC`)
	var args []any
	appendPagination(&query, &args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*transpress.DedupRecord
	for rows.Next() {
		var r transpress.DedupRecord
		var published, recorded string
		if err := rows.Scan(&r.Key, &r.SourceID, &r.PostID, &r.PostLink, &r.Slug,
			&published, &recorded, &r.ContentHash); err != nil {
			return nil, err
		}
		if r.SourcePublishedAt, err = parseTime(published, "source_published_at"); err != nil {
			return nil, err
		}
		if r.RecordedAt, err = parseTime(recorded, "recorded_at"); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// SaveRecords upserts records in one transaction.
func (s *DedupStore) SaveRecords(ctx context.Context, records []*transpress.DedupRecord) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posted_articles (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			source_id = excluded.source_id,
			post_id = excluded.post_id,
			post_link = excluded.post_link,
			slug = excluded.slug,
			source_published_at = excluded.source_published_at,
			recorded_at = excluded.recorded_at,
			content_hash = excluded.content_hash
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Key, r.SourceID, r.PostID, r.PostLink, r.Slug,
			formatTime(r.SourcePublishedAt), formatTime(r.RecordedAt), r.ContentHash); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountRecords returns the number of stored records.
func (s *DedupStore) CountRecords(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posted_articles`).Scan(&n)
	return n, err
}
