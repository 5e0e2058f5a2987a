package nn

import (
	"fmt"
	"strconv"
	"strings"

	"archgen/internal/shape"
)

// Flatten collapses every non-batch dimension: [b, c, h, w] -> [b, c*h*w].
type Flatten struct{}

func NewFlatten() *Flatten {
	return &Flatten{}
}

func (f *Flatten) Kind() string { return "Flatten" }

func (f *Flatten) OutputShape(in shape.Shape) (shape.Shape, error) {
	if in.Rank() < 2 {
		return nil, fmt.Errorf("%w: Flatten expects rank >= 2, got %s", ErrShapeMismatch, in)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: Flatten: %v", ErrShapeMismatch, err)
	}
	return shape.Shape{in[0], in.PerSample()}, nil
}

func (f *Flatten) ParameterCount() int { return 0 }

func (f *Flatten) String() string { return "Flatten(start_dim=1, end_dim=-1)" }

// Unflatten splits the feature dimension of a [b, n] input into dims.
type Unflatten struct {
	dims []int
}

func NewUnflatten(dims ...int) *Unflatten {
	return &Unflatten{dims: append([]int(nil), dims...)}
}

func (u *Unflatten) Kind() string { return "Unflatten" }

func (u *Unflatten) Dims() []int { return append([]int(nil), u.dims...) }

func (u *Unflatten) OutputShape(in shape.Shape) (shape.Shape, error) {
	if err := requireRank(u.Kind(), in, 2); err != nil {
		return nil, err
	}
	product := shape.Shape(u.dims).NumElements()
	if product != in[1] {
		return nil, fmt.Errorf("%w: Unflatten dims %v do not factor %d", ErrShapeMismatch, u.dims, in[1])
	}
	out := make(shape.Shape, 0, 1+len(u.dims))
	out = append(out, in[0])
	return append(out, u.dims...), nil
}

func (u *Unflatten) ParameterCount() int { return 0 }

func (u *Unflatten) String() string {
	parts := make([]string, len(u.dims))
	for i, d := range u.dims {
		parts[i] = strconv.Itoa(d)
	}
	return fmt.Sprintf("Unflatten(dim=1, unflattened_size=(%s))", strings.Join(parts, ", "))
}
