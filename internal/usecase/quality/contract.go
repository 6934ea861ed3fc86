package quality

import (
	"context"

	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
)

// Counter runs count-only searches over one entity set.
type Counter interface {
	SearchEntitySet(ctx context.Context, entitySetID string, q constraint.EntitySetSearch) (constraint.Results, error)
}

// EntitySetReader reads raw entity rows from the remote data API.
type EntitySetReader interface {
	EntitySetData(ctx context.Context, entitySetID string) ([]map[string][]any, error)
}

// RegistryProvider supplies the current property-type registry.
type RegistryProvider interface {
	Registry(ctx context.Context) (edm.PropertyTypeRegistry, error)
}
