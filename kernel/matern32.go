package kernel

import (
	"math"

	"github.com/n0madic/go-sparse-gp/params"
)

var _ Kernel = Matern32{}

// Matern32 is the Matern kernel with smoothness ν = 3/2,
// k(x, x') = σ² (1 + √3 r/ℓ) exp(-√3 r/ℓ) with r = ‖x-x'‖.
type Matern32 struct{}

func (Matern32) Cov(p params.Group, x1, x2 []float64) float64 {
	ell := p["lengthscale"].At(0, 0)
	variance := p["variance"].At(0, 0)
	a := math.Sqrt(3) * dist(x1, x2) / ell
	return variance * (1 + a) * math.Exp(-a)
}

func (Matern32) Defaults() params.Group {
	return params.Group{
		"lengthscale": params.Scalar(1.0),
		"variance":    params.Scalar(1.0),
	}
}
