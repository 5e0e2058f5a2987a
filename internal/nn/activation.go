package nn

import "archgen/internal/shape"

// Activation applies a registered elementwise function and never changes shape.
type Activation struct {
	spec ActivationSpec
}

func NewActivation(name string) (*Activation, error) {
	spec, err := GetActivation(name)
	if err != nil {
		return nil, err
	}
	return &Activation{spec: spec}, nil
}

func (a *Activation) Kind() string { return a.spec.Display }

func (a *Activation) Name() string { return a.spec.Name }

func (a *Activation) OutputShape(in shape.Shape) (shape.Shape, error) {
	return in.Clone(), nil
}

func (a *Activation) ParameterCount() int { return 0 }

func (a *Activation) String() string { return a.spec.Display + "()" }
