package kernel

import (
	"math"

	"github.com/n0madic/go-sparse-gp/params"
)

var _ Kernel = Matern12{}

// Matern12 is the Matern kernel with smoothness ν = 1/2 (the exponential
// kernel), k(x, x') = σ² exp(-r/ℓ) with r = ‖x-x'‖.
type Matern12 struct{}

func (Matern12) Cov(p params.Group, x1, x2 []float64) float64 {
	ell := p["lengthscale"].At(0, 0)
	variance := p["variance"].At(0, 0)
	return variance * math.Exp(-dist(x1, x2)/ell)
}

func (Matern12) Defaults() params.Group {
	return params.Group{
		"lengthscale": params.Scalar(1.0),
		"variance":    params.Scalar(1.0),
	}
}
