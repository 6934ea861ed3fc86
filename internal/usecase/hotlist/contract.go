package hotlist

import "context"

// Cache stores the normalized hotlist plate set. loaded is false on a miss.
type Cache interface {
	Plates(ctx context.Context) (plates []string, loaded bool, err error)
	Replace(ctx context.Context, plates []string) ([]string, error)
}

// EntitySetReader reads raw entity rows from the remote data API.
type EntitySetReader interface {
	EntitySetData(ctx context.Context, entitySetID string) ([]map[string][]any, error)
}
