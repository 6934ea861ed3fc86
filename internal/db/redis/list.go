package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/alprsearch/internal/db"
)

// PushCapped prepends value and trims the list to maxLen entries (LPUSH + LTRIM).
func (s *Store) PushCapped(ctx context.Context, key, value string, maxLen int) error {
	if maxLen <= 0 {
		return fmt.Errorf("push capped %s: max length must be positive", key)
	}
	return s.doTx(ctx, []string{db.OpLPush, db.OpLTrim},
		s.b().Lpush().Key(key).Element(value).Build(),
		s.b().Ltrim().Key(key).Start(0).Stop(int64(maxLen-1)).Build(),
	)
}

// PushUnique moves value to the head of the list (LREM + LPUSH + LTRIM).
// Concurrent pushes of the same value cannot leave a duplicate.
func (s *Store) PushUnique(ctx context.Context, key, value string, maxLen int) error {
	if maxLen <= 0 {
		return fmt.Errorf("push unique %s: max length must be positive", key)
	}
	return s.doTx(ctx, []string{db.OpLRem, db.OpLPush, db.OpLTrim},
		s.b().Lrem().Key(key).Count(0).Element(value).Build(),
		s.b().Lpush().Key(key).Element(value).Build(),
		s.b().Ltrim().Key(key).Start(0).Stop(int64(maxLen-1)).Build(),
	)
}

// LRange returns list elements between start and stop (inclusive, negative from tail).
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return vals, nil
}
