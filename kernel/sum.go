package kernel

import (
	"fmt"
	"strings"

	"github.com/n0madic/go-sparse-gp/params"
)

var _ Kernel = (*Sum)(nil)

// Sum is the sum of two or more kernels. Each part owns a parameter
// namespace: part i reads its parameters under the "k<i>." prefix, so two
// parts of the same kernel type do not collide.
type Sum struct {
	parts []Kernel
}

// NewSum builds the sum of two kernels. Nested sums are flattened so that
// part indices stay stable under repeated composition.
func NewSum(first, second Kernel) *Sum {
	parts := make([]Kernel, 0, 2)
	switch first := first.(type) {
	case *Sum:
		parts = append(parts, first.parts...)
	default:
		parts = append(parts, first)
	}
	switch second := second.(type) {
	case *Sum:
		parts = append(parts, second.parts...)
	default:
		parts = append(parts, second)
	}
	return &Sum{parts: parts}
}

func (s *Sum) Cov(p params.Group, x1, x2 []float64) float64 {
	total := 0.0
	for i, part := range s.parts {
		total += part.Cov(subgroup(p, i), x1, x2)
	}
	return total
}

func (s *Sum) Defaults() params.Group {
	out := params.Group{}
	for i, part := range s.parts {
		prefix := fmt.Sprintf("k%d.", i)
		for name, arr := range part.Defaults() {
			out[prefix+name] = arr
		}
	}
	return out
}

// subgroup selects part i's parameters by stripping its prefix.
func subgroup(p params.Group, i int) params.Group {
	prefix := fmt.Sprintf("k%d.", i)
	out := make(params.Group)
	for name, arr := range p {
		if strings.HasPrefix(name, prefix) {
			out[strings.TrimPrefix(name, prefix)] = arr
		}
	}
	return out
}
