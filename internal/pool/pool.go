package pool

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"archgen/internal/operator"
)

var (
	ErrNoCompatibleOperator = errors.New("no compatible operator")
	ErrRankMismatch         = errors.New("operator rank does not match pool rank")
	ErrUnreachableRank      = errors.New("pool produces a rank it cannot consume")
	ErrUnknownPreset        = errors.New("unknown pool preset")
)

// Pool maps a tensor rank to the ordered operator templates that may
// consume a shape of that rank. It is configuration: built once per run
// and never mutated by generation.
type Pool struct {
	name    string
	entries map[int][]operator.Operator
}

func New(name string) *Pool {
	return &Pool{name: name, entries: make(map[int][]operator.Operator)}
}

func (p *Pool) Name() string {
	return p.name
}

// Add appends ops under rank. Operators that declare a fixed accepted
// rank must be registered under that rank.
func (p *Pool) Add(rank int, ops ...operator.Operator) error {
	if rank < 1 {
		return fmt.Errorf("pool rank must be positive, got %d", rank)
	}
	for _, op := range ops {
		if op == nil {
			return fmt.Errorf("nil operator for rank %d", rank)
		}
		if accepted := op.AcceptedRank(); accepted != operator.AnyRank && accepted != rank {
			return fmt.Errorf("%w: %s accepts rank %d, registered under %d", ErrRankMismatch, op.Name(), accepted, rank)
		}
	}
	p.entries[rank] = append(p.entries[rank], ops...)
	return nil
}

// Candidates returns the operators for rank in registration order.
func (p *Pool) Candidates(rank int) ([]operator.Operator, error) {
	ops := p.entries[rank]
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: rank %d", ErrNoCompatibleOperator, rank)
	}
	return append([]operator.Operator(nil), ops...), nil
}

func (p *Pool) Ranks() []int {
	ranks := make([]int, 0, len(p.entries))
	for rank, ops := range p.entries {
		if len(ops) > 0 {
			ranks = append(ranks, rank)
		}
	}
	sort.Ints(ranks)
	return ranks
}

// Validate checks closure: every fixed rank an operator can produce has
// a non-empty entry.
func (p *Pool) Validate() error {
	ranks := p.Ranks()
	if len(ranks) == 0 {
		return fmt.Errorf("%w: pool %q is empty", ErrNoCompatibleOperator, p.name)
	}
	for _, rank := range ranks {
		for _, op := range p.entries[rank] {
			produced := op.ProducedRank()
			if produced == operator.AnyRank {
				continue
			}
			if len(p.entries[produced]) == 0 {
				return fmt.Errorf("%w: %s at rank %d produces rank %d", ErrUnreachableRank, op.Name(), rank, produced)
			}
		}
	}
	return nil
}

// Describe renders one line per rank, e.g. "rank 2: dense, relu".
func (p *Pool) Describe() string {
	lines := make([]string, 0, len(p.entries))
	for _, rank := range p.Ranks() {
		names := make([]string, 0, len(p.entries[rank]))
		for _, op := range p.entries[rank] {
			names = append(names, op.Name())
		}
		lines = append(lines, fmt.Sprintf("rank %d: %s", rank, strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}
