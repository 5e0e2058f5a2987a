package operator

import (
	"fmt"
	"math/rand"

	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/shape"
)

const (
	DefaultMinChannels = 1
	DefaultMaxChannels = 512
)

// Conv2D is an unpadded stride-1 convolution over [b, c, h, w]. Kernel
// height and width are drawn independently from [1, h] and [1, w], so the
// output spatial dims are always at least 1.
type Conv2D struct {
	MinChannels int
	MaxChannels int
}

func (c Conv2D) Name() string      { return "conv2d" }
func (c Conv2D) AcceptedRank() int { return 4 }
func (c Conv2D) ProducedRank() int { return 4 }

func (c Conv2D) ComputeDims(rng *rand.Rand, input shape.Shape) (shape.Shape, model.Params, error) {
	if err := checkInput(c, input); err != nil {
		return nil, model.Params{}, err
	}
	lo, hi, err := resolveBounds(c.Name(), c.MinChannels, c.MaxChannels, DefaultMinChannels, DefaultMaxChannels)
	if err != nil {
		return nil, model.Params{}, err
	}
	height, width := input[2], input[3]
	outChannels := uniformInt(rng, lo, hi)
	kernelH := uniformInt(rng, 1, height)
	kernelW := uniformInt(rng, 1, width)

	params := model.Params{
		Kind:        model.KindConv2D,
		InChannels:  input[1],
		OutChannels: outChannels,
		KernelH:     kernelH,
		KernelW:     kernelW,
	}
	produced := shape.Shape{input[0], outChannels, height - kernelH + 1, width - kernelW + 1}
	if err := checkOutput(c, produced); err != nil {
		return nil, model.Params{}, err
	}
	return produced, params, nil
}

func (c Conv2D) Materialize(params model.Params) (nn.Layer, error) {
	if err := checkParams(c, params, model.KindConv2D); err != nil {
		return nil, err
	}
	if params.InChannels <= 0 || params.OutChannels <= 0 || params.KernelH <= 0 || params.KernelW <= 0 {
		return nil, fmt.Errorf("%w: conv2d params %+v", ErrMaterializeBeforeCompute, params)
	}
	return nn.NewConv2d(params.InChannels, params.OutChannels, params.KernelH, params.KernelW), nil
}
