package operator

import (
	"fmt"
	"math/rand"

	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/shape"
)

const (
	DefaultMinFeatures = 10
	DefaultMaxFeatures = 10000
)

// Dense maps [b, in] to [b, out] with out drawn from [MinFeatures, MaxFeatures].
type Dense struct {
	MinFeatures int
	MaxFeatures int
}

func (d Dense) Name() string      { return "dense" }
func (d Dense) AcceptedRank() int { return 2 }
func (d Dense) ProducedRank() int { return 2 }

func (d Dense) ComputeDims(rng *rand.Rand, input shape.Shape) (shape.Shape, model.Params, error) {
	if err := checkInput(d, input); err != nil {
		return nil, model.Params{}, err
	}
	lo, hi, err := resolveBounds(d.Name(), d.MinFeatures, d.MaxFeatures, DefaultMinFeatures, DefaultMaxFeatures)
	if err != nil {
		return nil, model.Params{}, err
	}
	out := uniformInt(rng, lo, hi)
	params := model.Params{
		Kind:        model.KindDense,
		InFeatures:  input[1],
		OutFeatures: out,
	}
	produced := shape.Shape{input[0], out}
	if err := checkOutput(d, produced); err != nil {
		return nil, model.Params{}, err
	}
	return produced, params, nil
}

func (d Dense) Materialize(params model.Params) (nn.Layer, error) {
	if err := checkParams(d, params, model.KindDense); err != nil {
		return nil, err
	}
	if params.InFeatures <= 0 || params.OutFeatures <= 0 {
		return nil, fmt.Errorf("%w: dense features %d -> %d", ErrMaterializeBeforeCompute, params.InFeatures, params.OutFeatures)
	}
	return nn.NewLinear(params.InFeatures, params.OutFeatures, true), nil
}
