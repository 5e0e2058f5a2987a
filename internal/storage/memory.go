package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"archgen/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu            sync.RWMutex
	initialized   bool
	architectures map[string]model.Architecture
	batches       map[string]model.Batch
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.architectures = make(map[string]model.Architecture)
	s.batches = make(map[string]model.Batch)
	return nil
}

func (s *MemoryStore) SaveArchitecture(_ context.Context, arch model.Architecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.architectures[arch.ID] = cloneArchitecture(arch)
	return nil
}

func (s *MemoryStore) GetArchitecture(_ context.Context, id string) (model.Architecture, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Architecture{}, false, ErrNotInitialized
	}
	arch, ok := s.architectures[id]
	if !ok {
		return model.Architecture{}, false, nil
	}
	return cloneArchitecture(arch), true, nil
}

func (s *MemoryStore) ListArchitectures(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	ids := make([]string, 0, len(s.architectures))
	for id := range s.architectures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveBatch(_ context.Context, batch model.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.batches[batch.ID] = cloneBatch(batch)
	return nil
}

func (s *MemoryStore) GetBatch(_ context.Context, id string) (model.Batch, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Batch{}, false, ErrNotInitialized
	}
	batch, ok := s.batches[id]
	if !ok {
		return model.Batch{}, false, nil
	}
	return cloneBatch(batch), true, nil
}

func cloneArchitecture(arch model.Architecture) model.Architecture {
	out := arch
	out.InitialShape = arch.InitialShape.Clone()
	out.FinalShape = arch.FinalShape.Clone()
	if arch.Steps != nil {
		out.Steps = make([]model.Step, len(arch.Steps))
		for i, step := range arch.Steps {
			step.Input = step.Input.Clone()
			step.Output = step.Output.Clone()
			if step.Params.Dims != nil {
				step.Params.Dims = append([]int(nil), step.Params.Dims...)
			}
			out.Steps[i] = step
		}
	}
	return out
}

func cloneBatch(batch model.Batch) model.Batch {
	out := batch
	out.InitialShape = batch.InitialShape.Clone()
	if batch.ArchitectureIDs != nil {
		out.ArchitectureIDs = append([]string(nil), batch.ArchitectureIDs...)
	}
	return out
}
