package kernel

import (
	"math"

	"github.com/n0madic/go-sparse-gp/params"
)

var _ Kernel = RBF{}

// RBF is the radial basis function (squared exponential) kernel,
//
//	k(x, x') = σ² exp(-‖x-x'‖² / (2ℓ²))
//
// with lengthscale ℓ and variance σ².
type RBF struct{}

func (RBF) Cov(p params.Group, x1, x2 []float64) float64 {
	ell := p["lengthscale"].At(0, 0)
	variance := p["variance"].At(0, 0)
	return variance * math.Exp(-sqDist(x1, x2)/(2*ell*ell))
}

func (RBF) Defaults() params.Group {
	return params.Group{
		"lengthscale": params.Scalar(1.0),
		"variance":    params.Scalar(1.0),
	}
}
