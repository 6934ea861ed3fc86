package search

import (
	"context"

	"github.com/kailas-cloud/alprsearch/internal/domain/audit"
	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
)

// RegistryProvider supplies the current property-type registry.
type RegistryProvider interface {
	Registry(ctx context.Context) (edm.PropertyTypeRegistry, error)
}

// HotlistProvider supplies the lowercase hotlist plates.
type HotlistProvider interface {
	Plates(ctx context.Context) ([]string, error)
}

// RecentPlates remembers the plates a user searched for.
type RecentPlates interface {
	Save(ctx context.Context, user, plate string) error
	List(ctx context.Context, user string) ([]string, error)
}

// AuditLog persists a record of every executed search.
type AuditLog interface {
	Save(ctx context.Context, e audit.Entry) (audit.Entry, error)
	Recent(ctx context.Context, n int) ([]audit.Entry, error)
}

// Searcher executes a built request against the remote search API.
type Searcher interface {
	ExecuteSearch(ctx context.Context, req constraint.Request) (constraint.Results, error)
}
