package lookup

import (
	"context"

	"github.com/poiesic/titlelens/core"
)

// Service is the upstream title lookup.
type Service interface {
	// Search returns the titles matching query, in upstream rank order.
	// Returned records are not enriched. An empty result is not an error.
	Search(ctx context.Context, query string) ([]*core.Record, error)

	// Enrich returns the genre labels of a single record. The result may be empty.
	Enrich(ctx context.Context, record *core.Record) ([]string, error)
}
