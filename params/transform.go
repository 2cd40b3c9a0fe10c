package params

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is a bijection between the unconstrained space an optimizer works
// in and the constrained space a parameter array lives in. Forward maps
// unconstrained to constrained, Inverse maps back.
type Transform interface {
	Name() string
	Forward(x *mat.Dense) (*mat.Dense, error)
	Inverse(y *mat.Dense) (*mat.Dense, error)
}

// Entry declares the transform of one learnable array inside a dictionary.
type Entry struct {
	Component string
	Name      string
	Transform Transform
}

// Schema lists the learnable arrays of a model together with their
// transforms. It is returned by constructors as an explicit value for the
// caller's optimization layer; there is no process-wide registry.
type Schema []Entry

var (
	// Identity leaves an array unchanged in both directions.
	Identity Transform = identity{}
	// SoftplusDiag maps an unconstrained m x 1 vector to an m x m diagonal
	// matrix, applying softplus first so the diagonal entries are positive.
	SoftplusDiag Transform = softplusDiag{}
	// FillTriangular maps an unconstrained m(m+1)/2 x 1 vector to a dense
	// lower-triangular m x m matrix, packing the triangle row by row.
	FillTriangular Transform = fillTriangular{}
)

type identity struct{}

func (identity) Name() string { return "identity" }

func (identity) Forward(x *mat.Dense) (*mat.Dense, error) {
	out := &mat.Dense{}
	out.CloneFrom(x)
	return out, nil
}

func (identity) Inverse(y *mat.Dense) (*mat.Dense, error) {
	out := &mat.Dense{}
	out.CloneFrom(y)
	return out, nil
}

// softplus computes log(1+exp(x)) without overflow for large |x|.
func softplus(x float64) float64 {
	return math.Log1p(math.Exp(-math.Abs(x))) + math.Max(x, 0)
}

// softplusInv computes the inverse of softplus, log(exp(y)-1), for y > 0.
func softplusInv(y float64) float64 {
	return y + math.Log1p(-math.Exp(-y))
}

type softplusDiag struct{}

func (softplusDiag) Name() string { return "softplus_diag" }

func (softplusDiag) Forward(x *mat.Dense) (*mat.Dense, error) {
	m, c := x.Dims()
	if c != 1 {
		return nil, fmt.Errorf("params: softplus_diag forward expects a column vector, got %dx%d", m, c)
	}
	out := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		out.Set(i, i, softplus(x.At(i, 0)))
	}
	return out, nil
}

func (softplusDiag) Inverse(y *mat.Dense) (*mat.Dense, error) {
	m, c := y.Dims()
	if m != c {
		return nil, fmt.Errorf("params: softplus_diag inverse expects a square matrix, got %dx%d", m, c)
	}
	out := mat.NewDense(m, 1, nil)
	for i := 0; i < m; i++ {
		d := y.At(i, i)
		if d <= 0 {
			return nil, fmt.Errorf("params: softplus_diag inverse needs positive diagonal, entry %d is %g", i, d)
		}
		out.Set(i, 0, softplusInv(d))
	}
	return out, nil
}

type fillTriangular struct{}

func (fillTriangular) Name() string { return "fill_triangular" }

// triDim returns m such that n = m(m+1)/2, or an error if no such m exists.
func triDim(n int) (int, error) {
	m := int(math.Round((math.Sqrt(8*float64(n)+1) - 1) / 2))
	if m*(m+1)/2 != n {
		return 0, fmt.Errorf("params: fill_triangular length %d is not a triangular number", n)
	}
	return m, nil
}

func (fillTriangular) Forward(x *mat.Dense) (*mat.Dense, error) {
	n, c := x.Dims()
	if c != 1 {
		return nil, fmt.Errorf("params: fill_triangular forward expects a column vector, got %dx%d", n, c)
	}
	m, err := triDim(n)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(m, m, nil)
	k := 0
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			out.Set(i, j, x.At(k, 0))
			k++
		}
	}
	return out, nil
}

func (fillTriangular) Inverse(y *mat.Dense) (*mat.Dense, error) {
	m, c := y.Dims()
	if m != c {
		return nil, fmt.Errorf("params: fill_triangular inverse expects a square matrix, got %dx%d", m, c)
	}
	out := mat.NewDense(m*(m+1)/2, 1, nil)
	k := 0
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			out.Set(k, 0, y.At(i, j))
			k++
		}
	}
	return out, nil
}
