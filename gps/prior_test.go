package gps

import (
	"testing"

	"github.com/n0madic/go-sparse-gp/kernel"
	"github.com/n0madic/go-sparse-gp/mean"
)

func TestNewPrior(t *testing.T) {
	if _, err := NewPrior(nil, mean.Zero{}); err == nil {
		t.Error("nil kernel should fail")
	}
	if _, err := NewPrior(kernel.RBF{}, nil); err == nil {
		t.Error("nil mean function should fail")
	}
	if _, err := NewPrior(kernel.RBF{}, mean.Zero{}); err != nil {
		t.Errorf("NewPrior failed: %v", err)
	}
}

func TestPriorParams(t *testing.T) {
	p, err := NewPrior(kernel.RBF{}, mean.Constant{})
	if err != nil {
		t.Fatalf("NewPrior failed: %v", err)
	}
	d := p.Params()
	k, ok := d["kernel"]
	if !ok {
		t.Fatal("Params missing component \"kernel\"")
	}
	if _, ok := k["lengthscale"]; !ok {
		t.Error("kernel group missing \"lengthscale\"")
	}
	m, ok := d["mean_function"]
	if !ok {
		t.Fatal("Params missing component \"mean_function\"")
	}
	if _, ok := m["constant"]; !ok {
		t.Error("mean_function group missing \"constant\"")
	}
}
