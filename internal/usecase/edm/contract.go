package edm

import (
	"context"

	domedm "github.com/kailas-cloud/alprsearch/internal/domain/edm"
)

// PropertyTypeSource fetches the full list of property types from the remote API.
type PropertyTypeSource interface {
	PropertyTypes(ctx context.Context) ([]domedm.PropertyType, error)
}
