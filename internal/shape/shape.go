package shape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidShape = errors.New("invalid shape")

// Shape holds tensor extents, batch dimension first.
type Shape []int

func (s Shape) Rank() int {
	return len(s)
}

// Batch returns the leading dimension, or 0 for an empty shape.
func (s Shape) Batch() int {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

// MaxElements bounds the element count of any shape, batch included.
const MaxElements = 1 << 40

// NumElements returns the product of all dimensions, or 0 when a
// dimension is non-positive or the product exceeds MaxElements.
func (s Shape) NumElements() int {
	n, ok := product(s)
	if !ok {
		return 0
	}
	return n
}

func product(dims []int) (int, bool) {
	if len(dims) == 0 {
		return 0, false
	}
	n := 1
	for _, d := range dims {
		if d <= 0 || d > MaxElements/n {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// PerSample returns the product of all non-batch dimensions.
func (s Shape) PerSample() int {
	if len(s) < 2 {
		return 0
	}
	return Shape(s[1:]).NumElements()
}

func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Validate requires at least one dimension, every dimension positive and
// at most MaxElements elements in total.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty shape", ErrInvalidShape)
	}
	for i, d := range s {
		if d <= 0 {
			return fmt.Errorf("%w: dim %d of %s must be positive", ErrInvalidShape, i, s)
		}
	}
	if _, ok := product(s); !ok {
		return fmt.Errorf("%w: %s has more than %d elements", ErrInvalidShape, s, MaxElements)
	}
	return nil
}

// Parse reads dimensions from fields. Each field may itself hold
// comma-separated values, so both "1 3 32 32" and "1,3,32,32" work.
func Parse(fields []string) (Shape, error) {
	var out Shape
	for _, field := range fields {
		for _, token := range strings.Split(field, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			d, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("%w: parse dim %q: %v", ErrInvalidShape, token, err)
			}
			out = append(out, d)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// SmallDivisors returns, ascending, the divisors of n found by trial
// division up to floor(sqrt(n)). It is not an exhaustive factorization:
// the cofactors above sqrt(n) are not included.
func SmallDivisors(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, 8)
	for i := 1; i*i <= n; i++ {
		if n%i == 0 {
			out = append(out, i)
		}
	}
	return out
}
