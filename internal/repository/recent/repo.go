package recent

import (
	"context"
	"fmt"
	"strings"
)

const keyPrefix = "alprsearch:recent:"

// DefaultSize is the number of plates kept per user when none is configured.
const DefaultSize = 10

// store is the consumer interface for recent plates (ISP).
type store interface {
	PushUnique(ctx context.Context, key, value string, maxLen int) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo keeps a bounded, most-recent-first list of searched plates per user.
type Repo struct {
	store store
	size  int
}

// New creates a recent-plates repository. size <= 0 falls back to DefaultSize.
func New(s store, size int) *Repo {
	if size <= 0 {
		size = DefaultSize
	}
	return &Repo{store: s, size: size}
}

// Save moves plate to the front of the user's list. Plates are compared
// case-insensitively; blank plates are ignored.
func (r *Repo) Save(ctx context.Context, user, plate string) error {
	plate = normalize(plate)
	if plate == "" {
		return nil
	}
	if err := r.store.PushUnique(ctx, key(user), plate, r.size); err != nil {
		return fmt.Errorf("save recent plate: %w", err)
	}
	return nil
}

// List returns the user's recent plates, newest first.
func (r *Repo) List(ctx context.Context, user string) ([]string, error) {
	plates, err := r.store.LRange(ctx, key(user), 0, int64(r.size-1))
	if err != nil {
		return nil, fmt.Errorf("list recent plates: %w", err)
	}
	if plates == nil {
		plates = []string{}
	}
	return plates, nil
}

func key(user string) string {
	return keyPrefix + strings.ToLower(user)
}

func normalize(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
