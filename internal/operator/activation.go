package operator

import (
	"math/rand"

	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/shape"
)

// Activation is rank-agnostic and leaves the shape untouched. Function
// names an entry of the nn activation registry; empty means relu.
type Activation struct {
	Function string
}

func (a Activation) Name() string {
	if a.Function == "" {
		return "relu"
	}
	return a.Function
}

func (a Activation) AcceptedRank() int { return AnyRank }
func (a Activation) ProducedRank() int { return AnyRank }

func (a Activation) ComputeDims(_ *rand.Rand, input shape.Shape) (shape.Shape, model.Params, error) {
	if err := checkInput(a, input); err != nil {
		return nil, model.Params{}, err
	}
	if _, err := nn.GetActivation(a.Name()); err != nil {
		return nil, model.Params{}, err
	}
	return input.Clone(), model.Params{Kind: model.KindActivation, Activation: a.Name()}, nil
}

func (a Activation) Materialize(params model.Params) (nn.Layer, error) {
	if err := checkParams(a, params, model.KindActivation); err != nil {
		return nil, err
	}
	return nn.NewActivation(params.Activation)
}
