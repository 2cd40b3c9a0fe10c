package kernel

import (
	"math"

	"github.com/n0madic/go-sparse-gp/params"
)

var _ Kernel = Matern52{}

// Matern52 is the Matern kernel with smoothness ν = 5/2,
// k(x, x') = σ² (1 + √5 r/ℓ + 5r²/(3ℓ²)) exp(-√5 r/ℓ) with r = ‖x-x'‖.
type Matern52 struct{}

func (Matern52) Cov(p params.Group, x1, x2 []float64) float64 {
	ell := p["lengthscale"].At(0, 0)
	variance := p["variance"].At(0, 0)
	r := dist(x1, x2)
	a := math.Sqrt(5) * r / ell
	return variance * (1 + a + 5*r*r/(3*ell*ell)) * math.Exp(-a)
}

func (Matern52) Defaults() params.Group {
	return params.Group{
		"lengthscale": params.Scalar(1.0),
		"variance":    params.Scalar(1.0),
	}
}
