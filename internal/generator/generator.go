package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/pool"
	"archgen/internal/shape"
)

type Config struct {
	InitialShape shape.Shape
	Depth        int
	Pool         *pool.Pool
	// Rand drives operator choice and every operator's sampling. A nil
	// Rand is replaced by a time-seeded source.
	Rand *rand.Rand
	// OnStep, when set, observes each completed step in order.
	OnStep func(model.Step)
}

// Architecture is the ordered layer chain produced by one run.
type Architecture struct {
	Layers     []nn.Layer
	Steps      []model.Step
	FinalShape shape.Shape
}

func (a Architecture) Sequential() *nn.Sequential {
	return nn.NewSequential(a.Layers...)
}

// Operators lists the chosen operator names in order.
func (a Architecture) Operators() []string {
	names := make([]string, len(a.Steps))
	for i, step := range a.Steps {
		names[i] = step.Operator
	}
	return names
}

// Generate threads cfg.InitialShape through cfg.Depth randomly chosen
// operators. Each step picks uniformly among the pool's candidates for
// the current rank, samples that operator's parameters and materializes
// its layer. Any failing step aborts the whole run.
func Generate(ctx context.Context, cfg Config) (Architecture, error) {
	if cfg.Depth < 0 {
		return Architecture{}, fmt.Errorf("%w: got %d", ErrInvalidDepth, cfg.Depth)
	}
	if cfg.Pool == nil {
		return Architecture{}, ErrNilPool
	}
	if err := cfg.InitialShape.Validate(); err != nil {
		return Architecture{}, err
	}
	rng := ensureRNG(cfg.Rand)

	current := cfg.InitialShape.Clone()
	arch := Architecture{
		Layers: make([]nn.Layer, 0, cfg.Depth),
		Steps:  make([]model.Step, 0, cfg.Depth),
	}
	for step := 0; step < cfg.Depth; step++ {
		if err := ctx.Err(); err != nil {
			return Architecture{}, err
		}

		candidates, err := cfg.Pool.Candidates(current.Rank())
		if err != nil {
			return Architecture{}, &NoCompatibleOperatorError{Rank: current.Rank(), Step: step}
		}
		op := candidates[rng.Intn(len(candidates))]

		next, params, err := op.ComputeDims(rng, current)
		if err != nil {
			return Architecture{}, fmt.Errorf("step %d (%s): %w", step, op.Name(), err)
		}
		layer, err := op.Materialize(params)
		if err != nil {
			return Architecture{}, fmt.Errorf("step %d (%s): %w", step, op.Name(), err)
		}

		record := model.Step{
			Index:    step,
			Operator: op.Name(),
			Input:    current,
			Output:   next.Clone(),
			Params:   params,
		}
		arch.Layers = append(arch.Layers, layer)
		arch.Steps = append(arch.Steps, record)
		if cfg.OnStep != nil {
			cfg.OnStep(record)
		}
		current = next
	}
	arch.FinalShape = current
	return arch, nil
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
