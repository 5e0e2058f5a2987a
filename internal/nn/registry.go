package nn

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
)

type ActivationFunc func(x float64) float64

// ActivationSpec describes one elementwise activation. Display is the
// layer name used in Sequential printouts, e.g. "ReLU".
type ActivationSpec struct {
	Name    string
	Display string
	Func    ActivationFunc
}

var activationRegistry = struct {
	mu sync.RWMutex
	m  map[string]ActivationSpec
}{
	m: make(map[string]ActivationSpec),
}

func init() {
	initializeBuiltInActivations()
}

func initializeBuiltInActivations() {
	MustRegisterActivation(ActivationSpec{Name: "identity", Display: "Identity", Func: func(x float64) float64 { return x }})
	MustRegisterActivation(ActivationSpec{Name: "relu", Display: "ReLU", Func: func(x float64) float64 {
		if x < 0 {
			return 0
		}
		return x
	}})
	MustRegisterActivation(ActivationSpec{Name: "tanh", Display: "Tanh", Func: math.Tanh})
	MustRegisterActivation(ActivationSpec{Name: "sigmoid", Display: "Sigmoid", Func: func(x float64) float64 {
		return 1.0 / (1.0 + math.Exp(-x))
	}})
	// tanh approximation, as used by most frameworks' fast path
	MustRegisterActivation(ActivationSpec{Name: "gelu", Display: "GELU", Func: func(x float64) float64 {
		return 0.5 * x * (1 + math.Tanh(math.Sqrt(2/math.Pi)*(x+0.044715*x*x*x)))
	}})
}

func MustRegisterActivation(spec ActivationSpec) {
	if err := RegisterActivation(spec); err != nil {
		panic(err)
	}
}

func RegisterActivation(spec ActivationSpec) error {
	if spec.Name == "" {
		return errors.New("activation name is required")
	}
	if spec.Func == nil {
		return errors.New("activation function is required")
	}
	if spec.Display == "" {
		spec.Display = spec.Name
	}

	activationRegistry.mu.Lock()
	defer activationRegistry.mu.Unlock()

	if _, exists := activationRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrActivationExists, spec.Name)
	}
	activationRegistry.m[spec.Name] = spec
	return nil
}

func GetActivation(name string) (ActivationSpec, error) {
	activationRegistry.mu.RLock()
	spec, ok := activationRegistry.m[name]
	activationRegistry.mu.RUnlock()
	if !ok {
		return ActivationSpec{}, fmt.Errorf("%w: %s", ErrActivationNotFound, name)
	}
	return spec, nil
}

func ListActivations() []string {
	activationRegistry.mu.RLock()
	defer activationRegistry.mu.RUnlock()

	names := make([]string, 0, len(activationRegistry.m))
	for name := range activationRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetActivationRegistryForTests() {
	activationRegistry.mu.Lock()
	activationRegistry.m = make(map[string]ActivationSpec)
	activationRegistry.mu.Unlock()
	initializeBuiltInActivations()
}
