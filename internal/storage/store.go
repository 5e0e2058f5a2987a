package storage

import (
	"context"

	"archgen/internal/model"
)

// Store defines persistence for generated architectures and batches.
type Store interface {
	Init(ctx context.Context) error
	SaveArchitecture(ctx context.Context, arch model.Architecture) error
	GetArchitecture(ctx context.Context, id string) (model.Architecture, bool, error)
	ListArchitectures(ctx context.Context) ([]string, error)
	SaveBatch(ctx context.Context, batch model.Batch) error
	GetBatch(ctx context.Context, id string) (model.Batch, bool, error)
}
