package hotlist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const key = "alprsearch:hotlist"

// loadedMarker is stored alongside the plates so an empty hotlist still has a
// key. Normalize never yields a blank plate.
const loadedMarker = ""

// store is the consumer interface for the hotlist cache (ISP).
type store interface {
	SMembers(ctx context.Context, key string) ([]string, error)
	ReplaceSet(ctx context.Context, key string, members []string, ttl time.Duration) error
}

// Repo caches the hotlist plate set in Redis.
type Repo struct {
	store store
	ttl   time.Duration
}

// New creates a hotlist repository. ttl 0 keeps the set until replaced.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl}
}

// Plates returns the cached plates, sorted. loaded is false on a cache miss;
// a loaded hotlist may still be empty.
func (r *Repo) Plates(ctx context.Context) (plates []string, loaded bool, err error) {
	members, err := r.store.SMembers(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("get hotlist: %w", err)
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	plates = make([]string, 0, len(members))
	for _, m := range members {
		if m != loadedMarker {
			plates = append(plates, m)
		}
	}
	sort.Strings(plates)
	return plates, true, nil
}

// Replace swaps the cached set for plates, lowercased and de-duplicated.
// It returns the normalized plates that were stored.
func (r *Repo) Replace(ctx context.Context, plates []string) ([]string, error) {
	norm := Normalize(plates)
	members := append([]string{loadedMarker}, norm...)
	if err := r.store.ReplaceSet(ctx, key, members, r.ttl); err != nil {
		return nil, fmt.Errorf("replace hotlist: %w", err)
	}
	return norm, nil
}

// Normalize lowercases, trims, drops blanks and sorts plates.
func Normalize(plates []string) []string {
	seen := make(map[string]struct{}, len(plates))
	out := make([]string, 0, len(plates))
	for _, p := range plates {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
