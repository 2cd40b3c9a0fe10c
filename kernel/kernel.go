// Package kernel implements covariance functions and the Gram machinery on
// top of them.
package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-sparse-gp/params"
)

// Kernel is a positive semi-definite covariance function over input points.
type Kernel interface {
	// Cov evaluates the covariance between two input points of equal
	// dimension, reading its parameters from p.
	Cov(p params.Group, x1, x2 []float64) float64

	// Defaults returns the kernel's default parameter group. Its keys
	// define which parameters Cov expects.
	Defaults() params.Group
}

// validate checks that p carries every parameter the kernel declares.
func validate(k Kernel, p params.Group) error {
	for name := range k.Defaults() {
		if _, ok := p[name]; !ok {
			return fmt.Errorf("kernel: missing parameter %q", name)
		}
	}
	return nil
}

// rowsOf extracts the rows of X as slices.
func rowsOf(X mat.Matrix) [][]float64 {
	n, d := X.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, d)
		for j := 0; j < d; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

// Gram computes the |X| x |X| covariance matrix of X against itself. The
// result is symmetric by construction; positive definiteness up to
// floating-point error is the kernel's contract.
func Gram(k Kernel, X mat.Matrix, p params.Group) (*mat.SymDense, error) {
	n, _ := X.Dims()
	if n == 0 {
		return nil, fmt.Errorf("kernel: gram of empty input")
	}
	if err := validate(k, p); err != nil {
		return nil, err
	}
	rows := rowsOf(X)
	g := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			g.SetSym(i, j, k.Cov(p, rows[i], rows[j]))
		}
	}
	return g, nil
}

// CrossCovariance computes the |X1| x |X2| covariance matrix between two
// input batches.
func CrossCovariance(k Kernel, X1, X2 mat.Matrix, p params.Group) (*mat.Dense, error) {
	n1, d1 := X1.Dims()
	n2, d2 := X2.Dims()
	if d1 != d2 {
		return nil, fmt.Errorf("kernel: input dimension mismatch, %d != %d", d1, d2)
	}
	if n1 == 0 || n2 == 0 {
		return nil, fmt.Errorf("kernel: cross covariance of empty input")
	}
	if err := validate(k, p); err != nil {
		return nil, err
	}
	rows1 := rowsOf(X1)
	rows2 := rowsOf(X2)
	c := mat.NewDense(n1, n2, nil)
	for i := 0; i < n1; i++ {
		for j := 0; j < n2; j++ {
			c.Set(i, j, k.Cov(p, rows1[i], rows2[j]))
		}
	}
	return c, nil
}

// sqDist is the squared Euclidean distance between two points.
func sqDist(x1, x2 []float64) float64 {
	s := 0.0
	for i := range x1 {
		d := x1[i] - x2[i]
		s += d * d
	}
	return s
}

// dist is the Euclidean distance between two points.
func dist(x1, x2 []float64) float64 {
	return math.Sqrt(sqDist(x1, x2))
}
