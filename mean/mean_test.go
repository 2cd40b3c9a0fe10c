package mean

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-sparse-gp/params"
)

func TestZero(t *testing.T) {
	x := mat.NewDense(4, 2, nil)
	mu, err := Zero{}.Mean(params.Group{}, x)
	if err != nil {
		t.Fatalf("Mean failed: %v", err)
	}
	if mu.Len() != 4 {
		t.Fatalf("Mean length = %d, want 4", mu.Len())
	}
	for i := 0; i < 4; i++ {
		if mu.AtVec(i) != 0 {
			t.Errorf("mean[%d] = %g, want 0", i, mu.AtVec(i))
		}
	}
}

func TestConstant(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{-1, 0, 1})
	p := params.Group{"constant": params.Scalar(2.5)}
	mu, err := Constant{}.Mean(p, x)
	if err != nil {
		t.Fatalf("Mean failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if mu.AtVec(i) != 2.5 {
			t.Errorf("mean[%d] = %g, want 2.5", i, mu.AtVec(i))
		}
	}

	if _, err := (Constant{}).Mean(params.Group{}, x); err == nil {
		t.Error("Mean with missing parameter should fail")
	}
}
