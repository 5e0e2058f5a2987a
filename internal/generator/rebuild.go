package generator

import (
	"fmt"

	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/operator"
	"archgen/internal/shape"
)

// Rebuild materializes persisted steps from their stored params without
// sampling anything, checking that each layer maps the recorded input
// shape to the recorded output shape.
func Rebuild(initial shape.Shape, steps []model.Step) (Architecture, error) {
	if err := initial.Validate(); err != nil {
		return Architecture{}, err
	}
	current := initial.Clone()
	arch := Architecture{
		Layers: make([]nn.Layer, 0, len(steps)),
		Steps:  make([]model.Step, 0, len(steps)),
	}
	for i, step := range steps {
		op, err := operator.ForParams(step.Operator, step.Params.Kind)
		if err != nil {
			return Architecture{}, fmt.Errorf("step %d: %w", i, err)
		}
		layer, err := op.Materialize(step.Params)
		if err != nil {
			return Architecture{}, fmt.Errorf("step %d (%s): %w", i, step.Operator, err)
		}
		out, err := layer.OutputShape(current)
		if err != nil {
			return Architecture{}, fmt.Errorf("%w: step %d (%s): %v", ErrRebuildFailed, i, step.Operator, err)
		}
		if !out.Equal(step.Output) {
			return Architecture{}, fmt.Errorf("%w: step %d (%s) produced %s, recorded %s", ErrRebuildFailed, i, step.Operator, out, step.Output)
		}
		arch.Layers = append(arch.Layers, layer)
		arch.Steps = append(arch.Steps, step)
		current = out
	}
	arch.FinalShape = current
	return arch, nil
}
