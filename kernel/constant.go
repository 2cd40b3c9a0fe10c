package kernel

import (
	"github.com/n0madic/go-sparse-gp/params"
)

var _ Kernel = Constant{}

// Constant is the constant kernel k(x, x') = σ².
type Constant struct{}

func (Constant) Cov(p params.Group, x1, x2 []float64) float64 {
	return p["variance"].At(0, 0)
}

func (Constant) Defaults() params.Group {
	return params.Group{
		"variance": params.Scalar(1.0),
	}
}
