package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/alprsearch/internal/db"
)

// --- client.go tests ---

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForReady_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := NewStoreForTest(c)
	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

// --- kv.go tests ---

func TestDel_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "k")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Del(context.Background(), "k")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpDel {
		t.Errorf("expected DEL db.Error, got %v", err)
	}
}

func TestExpire(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "k", "3600")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Expire(context.Background(), "k", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "mykey"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "mykey", map[string]string{"f1": "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "mykey", map[string]string{"f": "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHSetIndexed(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("MULTI"),
			mock.Match("HSET", "entry", "f", "v"),
			mock.Match("EXPIRE", "entry", "86400"),
			mock.Match("LPUSH", "index", "id-1"),
			mock.Match("LTRIM", "index", "0", "49"),
			mock.Match("EXEC"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(), queued(), queued(),
			mock.Result(mock.RedisArray(
				mock.RedisInt64(1), mock.RedisInt64(1), mock.RedisInt64(1), mock.RedisString("OK"),
			)),
		})

	s := NewStoreForTest(c)
	err := s.HSetIndexed(context.Background(), "entry", map[string]string{"f": "v"}, 24*time.Hour, "index", "id-1", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetIndexed_NoTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("MULTI"),
			mock.Match("HSET", "entry", "f", "v"),
			mock.Match("LPUSH", "index", "id-1"),
			mock.Match("LTRIM", "index", "0", "49"),
			mock.Match("EXEC"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(), queued(),
			mock.Result(mock.RedisArray(mock.RedisInt64(1), mock.RedisInt64(1), mock.RedisString("OK"))),
		})

	s := NewStoreForTest(c)
	err := s.HSetIndexed(context.Background(), "entry", map[string]string{"f": "v"}, 0, "index", "id-1", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetIndexed_ReportsFailingOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(), queued(),
			mock.Result(mock.RedisArray(
				mock.RedisInt64(1),
				mock.RedisError("WRONGTYPE Operation against a key holding the wrong kind of value"),
				mock.RedisString("OK"),
			)),
		})

	s := NewStoreForTest(c)
	err := s.HSetIndexed(context.Background(), "entry", map[string]string{"f": "v"}, 0, "index", "id-1", 50)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpLPush {
		t.Fatalf("expected LPUSH db.Error, got %v", err)
	}
}

func TestHSetIndexed_InvalidMax(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	if err := s.HSetIndexed(context.Background(), "entry", nil, 0, "index", "id-1", 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestHGetAllMulti(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("a"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("b"),
			})),
		})

	s := NewStoreForTest(c)
	results, err := s.HGetAllMulti(context.Background(), []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0]["f"] != "a" || results[1]["f"] != "b" {
		t.Errorf("got %v", results)
	}
}

func TestHGetAllMulti_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	results, err := s.HGetAllMulti(context.Background(), nil)
	if err != nil || results != nil {
		t.Errorf("got %v, %v", results, err)
	}
}

// --- list.go tests ---

func queued() rueidis.RedisResult {
	return mock.Result(mock.RedisString("QUEUED"))
}

func TestPushUnique_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("MULTI"),
			mock.Match("LREM", "recent", "0", "ABC123"),
			mock.Match("LPUSH", "recent", "ABC123"),
			mock.Match("LTRIM", "recent", "0", "9"),
			mock.Match("EXEC"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(), queued(),
			mock.Result(mock.RedisArray(
				mock.RedisInt64(1),
				mock.RedisInt64(3),
				mock.RedisString("OK"),
			)),
		})

	s := NewStoreForTest(c)
	if err := s.PushUnique(context.Background(), "recent", "ABC123", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPushUnique_ReportsFailingOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(), queued(),
			mock.Result(mock.RedisArray(
				mock.RedisInt64(0),
				mock.RedisError("WRONGTYPE Operation against a key holding the wrong kind of value"),
				mock.RedisString("OK"),
			)),
		})

	s := NewStoreForTest(c)
	err := s.PushUnique(context.Background(), "recent", "ABC123", 10)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpLPush {
		t.Fatalf("expected LPUSH db.Error, got %v", err)
	}
}

func TestPushUnique_QueueErrorAbortsTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(),
			mock.Result(mock.RedisError("ERR wrong number of arguments")),
			queued(),
			mock.Result(mock.RedisError("EXECABORT Transaction discarded because of previous errors.")),
		})

	s := NewStoreForTest(c)
	err := s.PushUnique(context.Background(), "recent", "ABC123", 10)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpLPush {
		t.Fatalf("expected LPUSH db.Error, got %v", err)
	}
}

func TestPushUnique_ConnectionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.ErrorResult(context.DeadlineExceeded),
			mock.ErrorResult(context.DeadlineExceeded),
			mock.ErrorResult(context.DeadlineExceeded),
			mock.ErrorResult(context.DeadlineExceeded),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	err := s.PushUnique(context.Background(), "recent", "ABC123", 10)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpMulti {
		t.Fatalf("expected MULTI db.Error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline, got %v", err)
	}
}

func TestPushUnique_InvalidMax(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	if err := s.PushUnique(context.Background(), "recent", "x", 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestPushCapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("MULTI"),
			mock.Match("LPUSH", "idx", "id-1"),
			mock.Match("LTRIM", "idx", "0", "99"),
			mock.Match("EXEC"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(),
			mock.Result(mock.RedisArray(mock.RedisInt64(1), mock.RedisString("OK"))),
		})

	s := NewStoreForTest(c)
	if err := s.PushCapped(context.Background(), "idx", "id-1", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPushCapped_ExecAborted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(),
			mock.Result(mock.RedisNil()),
		})

	s := NewStoreForTest(c)
	err := s.PushCapped(context.Background(), "idx", "id-1", 100)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpExec {
		t.Fatalf("expected EXEC db.Error, got %v", err)
	}
}

func TestLRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("LRANGE", "recent", "0", "-1")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("B"), mock.RedisString("A"))))

	s := NewStoreForTest(c)
	got, err := s.LRange(context.Background(), "recent", 0, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Errorf("got %v", got)
	}
}

// --- set.go tests ---

func TestSMembers(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SMEMBERS", "hot")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("abc123"))))

	s := NewStoreForTest(c)
	got, err := s.SMembers(context.Background(), "hot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "abc123" {
		t.Errorf("got %v", got)
	}
}

func TestReplaceSet_WithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("MULTI"),
			mock.Match("DEL", "hot"),
			mock.Match("SADD", "hot", "a", "b"),
			mock.Match("EXPIRE", "hot", "900"),
			mock.Match("EXEC"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			queued(), queued(), queued(),
			mock.Result(mock.RedisArray(mock.RedisInt64(1), mock.RedisInt64(2), mock.RedisInt64(1))),
		})

	s := NewStoreForTest(c)
	if err := s.ReplaceSet(context.Background(), "hot", []string{"a", "b"}, 15*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReplaceSet_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "hot")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.ReplaceSet(context.Background(), "hot", nil, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
