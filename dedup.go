package transpress

import (
	"context"
	"sort"
	"time"
)

// DedupRecord records that a source article produced a destination post.
type DedupRecord struct {
	// Key is the normalized source URL (or source ID when no URL exists).
	Key               string    `json:"key"`
	SourceID          string    `json:"sourceId,omitempty"`
	PostID            int64     `json:"postId,omitempty"`
	PostLink          string    `json:"postLink,omitempty"`
	Slug              string    `json:"slug,omitempty"`
	SourcePublishedAt time.Time `json:"sourcePublishedAt,omitzero"`

	// RecordedAt is when the destination post was created. Records loaded
	// from legacy state files have a zero RecordedAt.
	RecordedAt  time.Time `json:"recordedAt,omitzero"`
	ContentHash string    `json:"contentHash,omitempty"`
}

// Validate returns an error if the record contains invalid fields.
func (r *DedupRecord) Validate() error {
	if r.Key == "" {
		return Errorf(EINVALID, "dedup record key required")
	}
	return nil
}

// DedupStore persists dedup records across runs.
// Implementations must make SaveRecords an idempotent merge: saving a
// record whose key already exists replaces it, and records not passed in
// are left untouched.
type DedupStore interface {
	LoadRecords(ctx context.Context) ([]*DedupRecord, error)
	SaveRecords(ctx context.Context, records []*DedupRecord) error
}

// Tracker is the in-process view of the set of already-published source
// articles. It is loaded once at run start, has a single writer, and is
// persisted through its store explicitly with Persist.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	store   DedupStore
	records map[string]*DedupRecord
	pending []*DedupRecord
	loaded  bool
}

// NewTracker returns a Tracker backed by store.
func NewTracker(store DedupStore) *Tracker {
	return &Tracker{
		store:   store,
		records: make(map[string]*DedupRecord),
	}
}

// Load reads all persisted records. Records already marked in memory win
// over persisted ones with the same key.
func (t *Tracker) Load(ctx context.Context) error {
	records, err := t.store.LoadRecords(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r == nil || r.Key == "" {
			continue
		}
		if _, ok := t.records[r.Key]; !ok {
			t.records[r.Key] = r
		}
	}
	t.loaded = true
	return nil
}

// Loaded reports whether Load has completed successfully.
func (t *Tracker) Loaded() bool {
	return t.loaded
}

// Seen reports whether key has already been published.
func (t *Tracker) Seen(key string) bool {
	_, ok := t.records[key]
	return ok
}

// Len returns the number of known records.
func (t *Tracker) Len() int {
	return len(t.records)
}

// Mark records a successful publish. The record is held in memory until
// the next Persist.
func (t *Tracker) Mark(r *DedupRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	t.records[r.Key] = r
	t.pending = append(t.pending, r)
	return nil
}

// Pending returns the number of marked records not yet persisted.
func (t *Tracker) Pending() int {
	return len(t.pending)
}

// Persist saves all pending records to the store. On failure the pending
// records are kept so a later Persist can retry.
func (t *Tracker) Persist(ctx context.Context) error {
	if len(t.pending) == 0 {
		return nil
	}
	if err := t.store.SaveRecords(ctx, t.pending); err != nil {
		return err
	}
	t.pending = nil
	return nil
}

// CountRecordedSince returns how many records were recorded at or after since.
func (t *Tracker) CountRecordedSince(since time.Time) int {
	var n int
	for _, r := range t.records {
		if !r.RecordedAt.IsZero() && !r.RecordedAt.Before(since) {
			n++
		}
	}
	return n
}

// Records returns all known records, most recently recorded first.
func (t *Tracker) Records() []*DedupRecord {
	out := make([]*DedupRecord, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
