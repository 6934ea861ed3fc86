package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/alprsearch/internal/db"
)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetIndexed writes the hash, its TTL and the capped index entry in one
// transaction (HSET [+ EXPIRE] + LPUSH + LTRIM).
func (s *Store) HSetIndexed(ctx context.Context, key string, fields map[string]string, ttl time.Duration,
	indexKey, member string, maxLen int) error {
	if maxLen <= 0 {
		return fmt.Errorf("hset indexed %s: max length must be positive", indexKey)
	}

	hset := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		hset = hset.FieldValue(k, v)
	}
	ops := []string{db.OpHSet}
	cmds := []rueidis.Completed{hset.Build()}
	if ttl > 0 {
		ops = append(ops, db.OpExpire)
		cmds = append(cmds, s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build())
	}
	ops = append(ops, db.OpLPush, db.OpLTrim)
	cmds = append(cmds,
		s.b().Lpush().Key(indexKey).Element(member).Build(),
		s.b().Ltrim().Key(indexKey).Start(0).Stop(int64(maxLen-1)).Build(),
	)
	return s.doTx(ctx, ops, cmds...)
}

// HGetAllMulti fetches all fields for multiple hashes in a single DoMulti round-trip.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))

	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		out[i] = m
	}

	return out, nil
}
