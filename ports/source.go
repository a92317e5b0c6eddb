package ports

import (
	"context"

	"goab/domain/experiment"
)

// DatasetSource supplies experiment records to the analysis layer without
// binding it to a file format or generator. The returned dataset is read-only
// to every consumer.
type DatasetSource interface {
	// Load materializes the full dataset.
	Load(ctx context.Context) (*experiment.Dataset, error)

	// Describe names the source for logs and reports.
	Describe() string
}
