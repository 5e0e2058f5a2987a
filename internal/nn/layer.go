package nn

import (
	"errors"
	"fmt"
	"strings"

	"archgen/internal/shape"
)

var ErrShapeMismatch = errors.New("layer shape mismatch")

// Layer is a concrete, materialized layer. It carries the hyperparameters
// it was built with and can report the shape it produces for an input.
type Layer interface {
	Kind() string
	OutputShape(in shape.Shape) (shape.Shape, error)
	ParameterCount() int
	String() string
}

type Sequential struct {
	layers []Layer
}

func NewSequential(layers ...Layer) *Sequential {
	copied := make([]Layer, len(layers))
	copy(copied, layers)
	return &Sequential{layers: copied}
}

func (s *Sequential) Len() int {
	return len(s.layers)
}

func (s *Sequential) Layers() []Layer {
	return append([]Layer(nil), s.layers...)
}

func (s *Sequential) ParameterCount() int {
	total := 0
	for _, l := range s.layers {
		total += l.ParameterCount()
	}
	return total
}

// InferShape threads in through every layer and returns the final shape.
func (s *Sequential) InferShape(in shape.Shape) (shape.Shape, error) {
	out := in.Clone()
	for idx, l := range s.layers {
		next, err := l.OutputShape(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", idx, l.Kind(), err)
		}
		out = next
	}
	return out, nil
}

func (s *Sequential) String() string {
	if len(s.layers) == 0 {
		return "Sequential()"
	}
	var b strings.Builder
	b.WriteString("Sequential(\n")
	for idx, l := range s.layers {
		fmt.Fprintf(&b, "  (%d): %s\n", idx, l.String())
	}
	b.WriteString(")")
	return b.String()
}

func requireRank(kind string, in shape.Shape, rank int) error {
	if in.Rank() != rank {
		return fmt.Errorf("%w: %s expects rank %d, got %s", ErrShapeMismatch, kind, rank, in)
	}
	return nil
}
