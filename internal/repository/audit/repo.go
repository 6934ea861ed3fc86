package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domaudit "github.com/kailas-cloud/alprsearch/internal/domain/audit"
)

// Entry and index keys share a hash tag so Save's transaction stays in one slot.
const (
	entryPrefix = "alprsearch:{audit}:"
	indexKey    = "alprsearch:{audit}:index"
)

// DefaultIndexSize caps the audit index when none is configured.
const DefaultIndexSize = 10000

// store is the consumer interface for the audit log (ISP).
type store interface {
	HSetIndexed(ctx context.Context, key string, fields map[string]string, ttl time.Duration,
		indexKey, member string, maxLen int) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo persists search audit entries as hashes plus a newest-first index list.
type Repo struct {
	store     store
	indexSize int
	retention time.Duration
	newID     func() string
}

// New creates an audit repository. retention 0 keeps entries forever.
func New(s store, indexSize int, retention time.Duration) *Repo {
	if indexSize <= 0 {
		indexSize = DefaultIndexSize
	}
	return &Repo{store: s, indexSize: indexSize, retention: retention, newID: uuid.NewString}
}

// Save assigns an id and writes the entry with its index slot in one
// transaction. The entry is durable once Save returns nil.
func (r *Repo) Save(ctx context.Context, e domaudit.Entry) (domaudit.Entry, error) {
	if e.ID == "" {
		e.ID = r.newID()
	}
	fields, err := e.Fields()
	if err != nil {
		return domaudit.Entry{}, fmt.Errorf("encode audit entry: %w", err)
	}

	err = r.store.HSetIndexed(ctx, entryKey(e.ID), fields, r.retention, indexKey, e.ID, r.indexSize)
	if err != nil {
		return domaudit.Entry{}, fmt.Errorf("write audit entry: %w", err)
	}
	return e, nil
}

// Recent returns up to n entries, newest first. Expired entries are skipped.
func (r *Repo) Recent(ctx context.Context, n int) ([]domaudit.Entry, error) {
	if n <= 0 {
		return []domaudit.Entry{}, nil
	}
	ids, err := r.store.LRange(ctx, indexKey, 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("list audit index: %w", err)
	}
	if len(ids) == 0 {
		return []domaudit.Entry{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(id)
	}
	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load audit entries: %w", err)
	}

	out := make([]domaudit.Entry, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		e, err := domaudit.FromFields(row)
		if err != nil {
			return nil, fmt.Errorf("decode audit entry %s: %w", ids[i], err)
		}
		out = append(out, e)
	}
	return out, nil
}

func entryKey(id string) string {
	return entryPrefix + id
}
