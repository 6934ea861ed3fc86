package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/alprsearch/internal/db"
)

// SMembers returns all members of a set. A missing key yields an empty slice.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Smembers().Key(key).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return vals, nil
}

// ReplaceSet swaps the set contents in one transaction (DEL + SADD [+ EXPIRE]),
// so readers never observe the set empty mid-swap.
func (s *Store) ReplaceSet(ctx context.Context, key string, members []string, ttl time.Duration) error {
	if len(members) == 0 {
		return s.Del(ctx, key)
	}

	ops := []string{db.OpDel, db.OpSAdd}
	cmds := []rueidis.Completed{
		s.b().Del().Key(key).Build(),
		s.b().Sadd().Key(key).Member(members...).Build(),
	}
	if ttl > 0 {
		ops = append(ops, db.OpExpire)
		cmds = append(cmds, s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build())
	}
	return s.doTx(ctx, ops, cmds...)
}
