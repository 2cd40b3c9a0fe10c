// Package mean implements prior mean functions.
package mean

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-sparse-gp/params"
)

// Function maps a batch of input points to a column of prior means.
type Function interface {
	// Mean returns the |X| x 1 vector of prior means at the rows of X.
	Mean(p params.Group, X mat.Matrix) (*mat.VecDense, error)

	// Defaults returns the mean function's default parameter group.
	Defaults() params.Group
}

var (
	_ Function = Zero{}
	_ Function = Constant{}
)

// Zero is the zero mean function.
type Zero struct{}

func (Zero) Mean(p params.Group, X mat.Matrix) (*mat.VecDense, error) {
	n, _ := X.Dims()
	if n == 0 {
		return nil, fmt.Errorf("mean: empty input")
	}
	return mat.NewVecDense(n, nil), nil
}

func (Zero) Defaults() params.Group {
	return params.Group{}
}

// Constant is a learnable constant mean function.
type Constant struct{}

func (Constant) Mean(p params.Group, X mat.Matrix) (*mat.VecDense, error) {
	n, _ := X.Dims()
	if n == 0 {
		return nil, fmt.Errorf("mean: empty input")
	}
	c, ok := p["constant"]
	if !ok {
		return nil, fmt.Errorf("mean: missing parameter %q", "constant")
	}
	out := mat.NewVecDense(n, nil)
	v := c.At(0, 0)
	for i := 0; i < n; i++ {
		out.SetVec(i, v)
	}
	return out, nil
}

func (Constant) Defaults() params.Group {
	return params.Group{
		"constant": params.Scalar(0.0),
	}
}
