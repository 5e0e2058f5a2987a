package generator

import (
	"errors"
	"fmt"

	"archgen/internal/pool"
	"archgen/internal/shape"
)

var (
	ErrInvalidDepth  = errors.New("depth must be >= 0")
	ErrInvalidCount  = errors.New("count must be > 0")
	ErrNilPool       = errors.New("operator pool is required")
	ErrRebuildFailed = errors.New("persisted steps do not chain")
)

// NoCompatibleOperatorError reports the rank that had no eligible
// operator and the step at which it was reached. At step 0 it also
// matches shape.ErrInvalidShape: the initial shape itself is unusable.
type NoCompatibleOperatorError struct {
	Rank int
	Step int
}

func (e *NoCompatibleOperatorError) Error() string {
	return fmt.Sprintf("no compatible operator for rank %d at step %d", e.Rank, e.Step)
}

func (e *NoCompatibleOperatorError) Is(target error) bool {
	if target == pool.ErrNoCompatibleOperator {
		return true
	}
	return e.Step == 0 && target == shape.ErrInvalidShape
}
