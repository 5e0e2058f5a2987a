package operator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"archgen/internal/model"
)

var (
	ErrOperatorExists   = errors.New("operator already registered")
	ErrOperatorNotFound = errors.New("operator not found")
)

// Factory builds a fresh operator template.
type Factory func() Operator

var operatorRegistry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

func init() {
	initializeBuiltInOperators()
}

func initializeBuiltInOperators() {
	MustRegister("dense", func() Operator { return Dense{} })
	MustRegister("conv2d", func() Operator { return Conv2D{} })
	MustRegister("flatten", func() Operator { return Flatten{} })
	MustRegister("unflatten", func() Operator { return Unflatten{} })
	for _, fn := range []string{"relu", "tanh", "sigmoid", "gelu", "identity"} {
		MustRegister(fn, func() Operator { return Activation{Function: fn} })
	}
}

// Register adds a named operator factory.
func Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("operator name is required")
	}
	if factory == nil {
		return errors.New("operator factory is required")
	}

	operatorRegistry.mu.Lock()
	defer operatorRegistry.mu.Unlock()

	if _, exists := operatorRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrOperatorExists, name)
	}
	operatorRegistry.m[name] = factory
	return nil
}

func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// New resolves name to a fresh operator template.
func New(name string) (Operator, error) {
	operatorRegistry.mu.RLock()
	factory, ok := operatorRegistry.m[name]
	operatorRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperatorNotFound, name)
	}
	return factory(), nil
}

// ForParams returns the template able to materialize params, used when
// rebuilding persisted architectures.
func ForParams(operatorName string, kind string) (Operator, error) {
	op, err := New(operatorName)
	if err == nil {
		return op, nil
	}
	switch kind {
	case model.KindDense:
		return Dense{}, nil
	case model.KindConv2D:
		return Conv2D{}, nil
	case model.KindFlatten:
		return Flatten{}, nil
	case model.KindUnflatten:
		return Unflatten{}, nil
	case model.KindActivation:
		return Activation{}, nil
	}
	return nil, err
}

func Names() []string {
	operatorRegistry.mu.RLock()
	defer operatorRegistry.mu.RUnlock()

	names := make([]string, 0, len(operatorRegistry.m))
	for name := range operatorRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetOperatorRegistryForTests() {
	operatorRegistry.mu.Lock()
	operatorRegistry.m = make(map[string]Factory)
	operatorRegistry.mu.Unlock()
	initializeBuiltInOperators()
}
