package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"archgen/internal/pool"
	"archgen/internal/shape"
)

type BatchConfig struct {
	InitialShape shape.Shape
	Depth        int
	Pool         *pool.Pool
	Count        int
	Workers      int
	Seed         int64
}

// RunSeed is the seed of run index within a batch seeded with seed.
func RunSeed(seed int64, index int) int64 {
	return seed + int64(index)
}

// GenerateBatch runs cfg.Count independent generations across a worker
// pool. Run i always uses its own source seeded with RunSeed(cfg.Seed, i),
// so results do not depend on worker count or scheduling. Results are
// returned in run order; the first failure cancels the remaining runs.
func GenerateBatch(ctx context.Context, cfg BatchConfig) ([]Architecture, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, cfg.Count)
	}
	if cfg.Depth < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, cfg.Depth)
	}
	if cfg.Pool == nil {
		return nil, ErrNilPool
	}
	if err := cfg.InitialShape.Validate(); err != nil {
		return nil, err
	}

	type result struct {
		idx  int
		arch Architecture
		err  error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan result, cfg.Count)

	workerCount := cfg.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > cfg.Count {
		workerCount = cfg.Count
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: idx, err: err}
					continue
				}
				arch, err := Generate(ctx, Config{
					InitialShape: cfg.InitialShape,
					Depth:        cfg.Depth,
					Pool:         cfg.Pool,
					Rand:         rand.New(rand.NewSource(RunSeed(cfg.Seed, idx))),
				})
				results <- result{idx: idx, arch: arch, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Count; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Architecture, cfg.Count)
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("run %d: %w", r.idx, r.err)
				cancel()
			}
			continue
		}
		out[r.idx] = r.arch
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
