package pool

import (
	"fmt"
	"sort"

	"archgen/internal/operator"
)

const (
	PresetDense         = "dense"
	PresetBidirectional = "bidirectional"
	PresetFlatten       = "flatten"
)

var presets = map[string]func() (*Pool, error){
	// Rank-2 only: fully connected layers with ReLU.
	PresetDense: func() (*Pool, error) {
		p := New(PresetDense)
		return p, p.Add(2, operator.Dense{}, operator.Activation{Function: "relu"})
	},
	// Rank 4 and rank 2 reach each other through Flatten and Unflatten.
	PresetBidirectional: func() (*Pool, error) {
		p := New(PresetBidirectional)
		if err := p.Add(4, operator.Conv2D{}, operator.Activation{Function: "relu"}, operator.Flatten{}); err != nil {
			return nil, err
		}
		return p, p.Add(2, operator.Dense{}, operator.Activation{Function: "relu"}, operator.Unflatten{})
	},
	// Rank 4 can drop to rank 2 but never climbs back.
	PresetFlatten: func() (*Pool, error) {
		p := New(PresetFlatten)
		if err := p.Add(4, operator.Conv2D{}, operator.Activation{Function: "relu"}, operator.Flatten{}); err != nil {
			return nil, err
		}
		return p, p.Add(2, operator.Dense{}, operator.Activation{Function: "relu"})
	},
}

// Build returns a fresh copy of the named preset.
func Build(name string) (*Pool, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return build()
}

func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromSpec builds a pool from operator registry names keyed by rank.
func FromSpec(name string, spec map[int][]string) (*Pool, error) {
	p := New(name)
	ranks := make([]int, 0, len(spec))
	for rank := range spec {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)
	for _, rank := range ranks {
		for _, opName := range spec[rank] {
			op, err := operator.New(opName)
			if err != nil {
				return nil, fmt.Errorf("pool %s rank %d: %w", name, rank, err)
			}
			if err := p.Add(rank, op); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}
