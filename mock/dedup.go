package mock

import (
	"context"

	"github.com/fwojciec/transpress"
)

var _ transpress.DedupStore = (*DedupStore)(nil)

// DedupStore is a mock implementation of transpress.DedupStore.
type DedupStore struct {
	LoadRecordsFn func(ctx context.Context) ([]*transpress.DedupRecord, error)
	SaveRecordsFn func(ctx context.Context, records []*transpress.DedupRecord) error
}

func (s *DedupStore) LoadRecords(ctx context.Context) ([]*transpress.DedupRecord, error) {
	return s.LoadRecordsFn(ctx)
}

func (s *DedupStore) SaveRecords(ctx context.Context, records []*transpress.DedupRecord) error {
	return s.SaveRecordsFn(ctx, records)
}
