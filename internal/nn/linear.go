package nn

import (
	"fmt"

	"archgen/internal/shape"
)

type Linear struct {
	inFeatures  int
	outFeatures int
	bias        bool
}

func NewLinear(inFeatures, outFeatures int, withBias bool) *Linear {
	return &Linear{inFeatures: inFeatures, outFeatures: outFeatures, bias: withBias}
}

func (l *Linear) Kind() string { return "Linear" }

func (l *Linear) InFeatures() int { return l.inFeatures }

func (l *Linear) OutFeatures() int { return l.outFeatures }

func (l *Linear) OutputShape(in shape.Shape) (shape.Shape, error) {
	if err := requireRank(l.Kind(), in, 2); err != nil {
		return nil, err
	}
	if in[1] != l.inFeatures {
		return nil, fmt.Errorf("%w: Linear expects %d input features, got %d", ErrShapeMismatch, l.inFeatures, in[1])
	}
	return shape.Shape{in[0], l.outFeatures}, nil
}

func (l *Linear) ParameterCount() int {
	n := l.inFeatures * l.outFeatures
	if l.bias {
		n += l.outFeatures
	}
	return n
}

func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d, bias=%s)", l.inFeatures, l.outFeatures, pyBool(l.bias))
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
