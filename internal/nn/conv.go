package nn

import (
	"fmt"

	"archgen/internal/shape"
)

// Conv2d is a stride-1, unpadded 2-D convolution.
type Conv2d struct {
	inChannels  int
	outChannels int
	kernelH     int
	kernelW     int
}

func NewConv2d(inChannels, outChannels, kernelH, kernelW int) *Conv2d {
	return &Conv2d{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelH:     kernelH,
		kernelW:     kernelW,
	}
}

func (c *Conv2d) Kind() string { return "Conv2d" }

func (c *Conv2d) Kernel() (int, int) { return c.kernelH, c.kernelW }

func (c *Conv2d) OutputShape(in shape.Shape) (shape.Shape, error) {
	if err := requireRank(c.Kind(), in, 4); err != nil {
		return nil, err
	}
	if in[1] != c.inChannels {
		return nil, fmt.Errorf("%w: Conv2d expects %d input channels, got %d", ErrShapeMismatch, c.inChannels, in[1])
	}
	outH := in[2] - c.kernelH + 1
	outW := in[3] - c.kernelW + 1
	if outH < 1 || outW < 1 {
		return nil, fmt.Errorf("%w: kernel (%d, %d) larger than input %s", ErrShapeMismatch, c.kernelH, c.kernelW, in)
	}
	return shape.Shape{in[0], c.outChannels, outH, outW}, nil
}

func (c *Conv2d) ParameterCount() int {
	return c.outChannels*c.inChannels*c.kernelH*c.kernelW + c.outChannels
}

func (c *Conv2d) String() string {
	return fmt.Sprintf("Conv2d(%d, %d, kernel_size=(%d, %d), stride=(1, 1))", c.inChannels, c.outChannels, c.kernelH, c.kernelW)
}
