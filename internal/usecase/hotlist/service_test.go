package hotlist

import (
	"context"
	"errors"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/alprsearch/internal/metrics"
	hotlistrepo "github.com/kailas-cloud/alprsearch/internal/repository/hotlist"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

// mockCache behaves like the Redis-backed cache: a Replace makes later reads hit.
type mockCache struct {
	mu         sync.Mutex
	plates     []string
	loaded     bool
	getErr     error
	replaceErr error
	replaced   []string
}

func (m *mockCache) Plates(_ context.Context) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plates, m.loaded, m.getErr
}

func (m *mockCache) Replace(_ context.Context, plates []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	m.replaced = hotlistrepo.Normalize(plates)
	m.plates, m.loaded = m.replaced, true
	return m.replaced, nil
}

type mockReader struct {
	calls atomic.Int32
	delay time.Duration
	rows  []map[string][]any
	err   error
}

func (m *mockReader) EntitySetData(_ context.Context, _ string) ([]map[string][]any, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.rows, m.err
}

func hotlistRows() []map[string][]any {
	return []map[string][]any{
		{"ol.id": {"ABC123"}},
		{"ol.id": {"xyz999"}},
		{"ol.name": {"no plate"}},
		{"ol.id": {}},
	}
}

func TestPlates_CacheHit(t *testing.T) {
	cache := &mockCache{plates: []string{"abc123"}, loaded: true}
	src := &mockReader{}
	got, err := New(cache, src, "hot-es").Plates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"abc123"}) {
		t.Errorf("got %v", got)
	}
	if src.calls.Load() != 0 {
		t.Error("remote must not be read on cache hit")
	}
}

func TestPlates_MissLoadsAndCaches(t *testing.T) {
	cache := &mockCache{}
	src := &mockReader{rows: hotlistRows()}
	got, err := New(cache, src, "hot-es").Plates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"abc123", "xyz999"}
	if !reflect.DeepEqual(got, want) || !reflect.DeepEqual(cache.replaced, want) {
		t.Errorf("got %v, cached %v", got, cache.replaced)
	}
}

func TestPlates_EmptyHotlistLoadsOnce(t *testing.T) {
	cache := &mockCache{}
	src := &mockReader{rows: []map[string][]any{{"ol.name": {"no plate"}}}}
	svc := New(cache, src, "hot-es")

	for i := 0; i < 3; i++ {
		got, err := svc.Plates(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %#v, want empty", got)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("remote loads = %d, want 1", n)
	}
}

func TestPlates_ConcurrentMissesShareOneLoad(t *testing.T) {
	cache := &mockCache{}
	src := &mockReader{rows: hotlistRows(), delay: 100 * time.Millisecond}
	svc := New(cache, src, "hot-es")

	var wg sync.WaitGroup
	results := make(chan []string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Plates(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	for got := range results {
		if !reflect.DeepEqual(got, []string{"abc123", "xyz999"}) {
			t.Errorf("got %v", got)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("remote loads = %d, want 1", n)
	}
}

func TestPlates_CacheReadErrorFallsBackToRemote(t *testing.T) {
	cache := &mockCache{getErr: errors.New("redis down"), replaceErr: errors.New("redis down")}
	src := &mockReader{rows: hotlistRows()}
	got, err := New(cache, src, "hot-es").Plates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %v", got)
	}
}

func TestPlates_RemoteError(t *testing.T) {
	src := &mockReader{err: errors.New("502")}
	if _, err := New(&mockCache{}, src, "hot-es").Plates(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPlates_NoEntitySet(t *testing.T) {
	src := &mockReader{}
	got, err := New(&mockCache{}, src, "").Plates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 || src.calls.Load() != 0 {
		t.Errorf("got %v, calls %d", got, src.calls.Load())
	}
}

func TestReplace(t *testing.T) {
	cache := &mockCache{}
	got, err := New(cache, &mockReader{}, "").Replace(context.Background(), []string{"B2", "a1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a1", "b2"}) {
		t.Errorf("got %v", got)
	}

	cache.replaceErr = errors.New("down")
	if _, err := New(cache, &mockReader{}, "").Replace(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
}
