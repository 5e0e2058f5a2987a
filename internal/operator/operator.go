package operator

import (
	"errors"
	"fmt"
	"math/rand"

	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/shape"
)

// AnyRank marks an operator that accepts (or preserves) any rank.
const AnyRank = 0

var (
	ErrMaterializeBeforeCompute = errors.New("materialize called without computed params")
	ErrInvalidBounds            = errors.New("invalid sampling bounds")
)

// Operator is a stateless layer template. ComputeDims samples the
// operator's hyperparameters for one input shape and returns them with
// the produced shape; Materialize builds the concrete layer from exactly
// those parameters. Templates can be reused across steps and runs.
type Operator interface {
	Name() string
	AcceptedRank() int
	ProducedRank() int
	ComputeDims(rng *rand.Rand, input shape.Shape) (shape.Shape, model.Params, error)
	Materialize(params model.Params) (nn.Layer, error)
}

func checkInput(op Operator, input shape.Shape) error {
	if err := input.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op.Name(), err)
	}
	if rank := op.AcceptedRank(); rank != AnyRank && input.Rank() != rank {
		return fmt.Errorf("%w: %s accepts rank %d, got %s", shape.ErrInvalidShape, op.Name(), rank, input)
	}
	return nil
}

// checkOutput rejects a sampled shape that grew past shape.MaxElements.
func checkOutput(op Operator, out shape.Shape) error {
	if err := out.Validate(); err != nil {
		return fmt.Errorf("%s output: %w", op.Name(), err)
	}
	return nil
}

func checkParams(op Operator, params model.Params, kind string) error {
	if params.Kind != kind {
		return fmt.Errorf("%w: %s got params of kind %q", ErrMaterializeBeforeCompute, op.Name(), params.Kind)
	}
	return nil
}

// uniformInt samples from [lo, hi] inclusive.
func uniformInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func resolveBounds(name string, lo, hi, defaultLo, defaultHi int) (int, int, error) {
	if lo == 0 {
		lo = defaultLo
	}
	if hi == 0 {
		hi = defaultHi
	}
	if lo < 1 || lo > hi {
		return 0, 0, fmt.Errorf("%w: %s [%d, %d]", ErrInvalidBounds, name, lo, hi)
	}
	return lo, hi, nil
}
