// Package gps defines the Gaussian process prior that variational families
// approximate.
package gps

import (
	"fmt"

	"github.com/n0madic/go-sparse-gp/kernel"
	"github.com/n0madic/go-sparse-gp/mean"
	"github.com/n0madic/go-sparse-gp/params"
)

// Prior pairs a covariance function with a mean function. It is immutable
// for the lifetime of any variational family that references it.
type Prior struct {
	Kernel kernel.Kernel
	Mean   mean.Function
}

// NewPrior builds a prior process from a kernel and a mean function.
func NewPrior(k kernel.Kernel, m mean.Function) (*Prior, error) {
	if k == nil {
		return nil, fmt.Errorf("gps: nil kernel")
	}
	if m == nil {
		return nil, fmt.Errorf("gps: nil mean function")
	}
	return &Prior{Kernel: k, Mean: m}, nil
}

// Params returns the prior's default parameter dictionary with the "kernel"
// and "mean_function" components.
func (p *Prior) Params() params.Dict {
	return params.Dict{
		"kernel":        p.Kernel.Defaults(),
		"mean_function": p.Mean.Defaults(),
	}
}
