// Package params implements the nested parameter dictionaries shared by all
// model components, together with the transforms that map each learnable
// array between its constrained and unconstrained representations.
package params

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Group holds the named arrays of a single component. Scalars are stored as
// 1x1 matrices and vectors as n x 1 matrices so that every entry has a
// uniform type.
type Group map[string]*mat.Dense

// Dict is a nested parameter dictionary keyed by component name, e.g.
// "kernel", "mean_function" or "variational_family".
type Dict map[string]Group

// Scalar wraps a float64 as a 1x1 parameter array.
func Scalar(v float64) *mat.Dense {
	return mat.NewDense(1, 1, []float64{v})
}

// Vector wraps a slice as an n x 1 parameter array. The data is copied.
func Vector(v []float64) *mat.Dense {
	data := make([]float64, len(v))
	copy(data, v)
	return mat.NewDense(len(v), 1, data)
}

// Copy returns a deep copy of the group.
func (g Group) Copy() Group {
	out := make(Group, len(g))
	for name, arr := range g {
		c := &mat.Dense{}
		c.CloneFrom(arr)
		out[name] = c
	}
	return out
}

// Copy returns a deep copy of the dictionary.
func (d Dict) Copy() Dict {
	out := make(Dict, len(d))
	for name, group := range d {
		out[name] = group.Copy()
	}
	return out
}

// Merge combines two dictionaries into a new one. The groups themselves are
// shared, not copied. Merge returns an error if the two dictionaries define
// the same component name: overlapping keys are a caller contract violation,
// never resolved by silent overwrite.
func Merge(a, b Dict) (Dict, error) {
	out := make(Dict, len(a)+len(b))
	for name, group := range a {
		out[name] = group
	}
	for name, group := range b {
		if _, exists := out[name]; exists {
			return nil, fmt.Errorf("params: merge collision on component %q", name)
		}
		out[name] = group
	}
	return out, nil
}
