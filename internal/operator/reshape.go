package operator

import (
	"fmt"
	"math/rand"

	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/shape"
)

// Flatten maps [b, c, h, w] to [b, c*h*w]. Nothing is sampled.
type Flatten struct{}

func (f Flatten) Name() string      { return "flatten" }
func (f Flatten) AcceptedRank() int { return 4 }
func (f Flatten) ProducedRank() int { return 2 }

func (f Flatten) ComputeDims(_ *rand.Rand, input shape.Shape) (shape.Shape, model.Params, error) {
	if err := checkInput(f, input); err != nil {
		return nil, model.Params{}, err
	}
	return shape.Shape{input[0], input.PerSample()}, model.Params{Kind: model.KindFlatten}, nil
}

func (f Flatten) Materialize(params model.Params) (nn.Layer, error) {
	if err := checkParams(f, params, model.KindFlatten); err != nil {
		return nil, err
	}
	return nn.NewFlatten(), nil
}

// Unflatten maps [b, n] to [b, d1, d2, d3] with d1*d2*d3 == n. d1 is a
// random small divisor of n, d2 a random small divisor of n/d1 and d3
// takes the remaining quotient.
type Unflatten struct{}

func (u Unflatten) Name() string      { return "unflatten" }
func (u Unflatten) AcceptedRank() int { return 2 }
func (u Unflatten) ProducedRank() int { return 4 }

func (u Unflatten) ComputeDims(rng *rand.Rand, input shape.Shape) (shape.Shape, model.Params, error) {
	if err := checkInput(u, input); err != nil {
		return nil, model.Params{}, err
	}
	n := input[1]
	d1 := pickDivisor(rng, n)
	d2 := pickDivisor(rng, n/d1)
	d3 := n / (d1 * d2)

	params := model.Params{Kind: model.KindUnflatten, Dims: []int{d1, d2, d3}}
	return shape.Shape{input[0], d1, d2, d3}, params, nil
}

func (u Unflatten) Materialize(params model.Params) (nn.Layer, error) {
	if err := checkParams(u, params, model.KindUnflatten); err != nil {
		return nil, err
	}
	if len(params.Dims) != 3 {
		return nil, fmt.Errorf("%w: unflatten needs 3 dims, got %v", ErrMaterializeBeforeCompute, params.Dims)
	}
	for _, d := range params.Dims {
		if d <= 0 {
			return nil, fmt.Errorf("%w: unflatten dims %v", ErrMaterializeBeforeCompute, params.Dims)
		}
	}
	return nn.NewUnflatten(params.Dims...), nil
}

// pickDivisor requires n >= 1; 1 always divides n so the candidate set is never empty.
func pickDivisor(rng *rand.Rand, n int) int {
	candidates := shape.SmallDivisors(n)
	return candidates[rng.Intn(len(candidates))]
}
