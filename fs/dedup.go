// Package fs provides file-based storage: a JSON dedup state file and a
// directory of dry-run previews, both replaced atomically.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/transpress"
)

// Ensure DedupFile implements transpress.DedupStore at compile time.
var _ transpress.DedupStore = (*DedupFile)(nil)

// DedupFile stores dedup records in a JSON object keyed by record key.
// It also reads the legacy formats: a list of URLs, or an object whose keys
// are URLs and whose values are arbitrary.
type DedupFile struct {
	path string
	mu   sync.Mutex
}

// NewDedupFile creates a DedupFile at path. The file need not exist.
func NewDedupFile(path string) *DedupFile {
	return &DedupFile{path: path}
}

// LoadRecords reads all records. A missing file yields no records.
func (f *DedupFile) LoadRecords(ctx context.Context) ([]*transpress.DedupRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]*transpress.DedupRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	return out, nil
}

// SaveRecords merges records into the file, replacing records with the
// same key, and writes it atomically.
func (f *DedupFile) SaveRecords(ctx context.Context, records []*transpress.DedupRecord) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, err := f.load()
	if err != nil {
		return err
	}
	for _, r := range records {
		existing[r.Key] = r
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return transpress.Errorf(transpress.EINTERNAL, "encode dedup state: %v", err)
	}
	return writeAtomic(f.path, append(data, '\n'))
}

func (f *DedupFile) load() (map[string]*transpress.DedupRecord, error) {
	records := make(map[string]*transpress.DedupRecord)

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, transpress.Errorf(transpress.EINTERNAL, "read dedup state: %v", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return records, nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, transpress.Errorf(transpress.EINVALID, "decode dedup state: %v", err)
		}
		for _, item := range items {
			if r := decodeRecord("", item); r != nil {
				records[r.Key] = r
			}
		}
	case '{':
		var items map[string]json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, transpress.Errorf(transpress.EINVALID, "decode dedup state: %v", err)
		}
		for key, item := range items {
			if r := decodeRecord(key, item); r != nil {
				records[r.Key] = r
			}
		}
	default:
		return nil, transpress.Errorf(transpress.EINVALID, "decode dedup state: unexpected format")
	}
	return records, nil
}

// decodeRecord decodes one entry: a URL string, a record object, or (for
// object-keyed files) any legacy value.
func decodeRecord(key string, raw json.RawMessage) *transpress.DedupRecord {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && key == "" {
		if s == "" {
			return nil
		}
		return &transpress.DedupRecord{Key: s}
	}

	var r transpress.DedupRecord
	if err := json.Unmarshal(raw, &r); err != nil || r.Key == "" {
		r = transpress.DedupRecord{}
	}
	if key != "" {
		r.Key = key
	}
	if r.Key == "" {
		return nil
	}
	return &r
}

// writeAtomic writes data to a temporary file next to path and renames it
// over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return transpress.Errorf(transpress.EINTERNAL, "create state directory: %v", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return transpress.Errorf(transpress.EINTERNAL, "create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return transpress.Errorf(transpress.EINTERNAL, "write temp file: %v", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return transpress.Errorf(transpress.EINTERNAL, "sync temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return transpress.Errorf(transpress.EINTERNAL, "close temp file: %v", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return transpress.Errorf(transpress.EINTERNAL, "replace state file: %v", err)
	}
	return nil
}
