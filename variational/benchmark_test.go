package variational

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-sparse-gp/gps"
	"github.com/n0madic/go-sparse-gp/kernel"
	"github.com/n0madic/go-sparse-gp/mean"
)

func benchInducing(m int) *mat.Dense {
	z := mat.NewDense(m, 1, nil)
	for i := 0; i < m; i++ {
		z.Set(i, 0, -3+6*float64(i)/float64(m-1))
	}
	return z
}

func benchGrid(n int) *mat.Dense {
	t := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		t.Set(i, 0, -4+8*float64(i)/float64(n-1))
	}
	return t
}

func BenchmarkPriorKL(b *testing.B) {
	prior, _ := gps.NewPrior(kernel.RBF{}, mean.Zero{})
	for _, m := range []int{16, 64, 128} {
		b.Run(fmt.Sprintf("M=%d", m), func(b *testing.B) {
			v, err := NewVariationalGaussian(prior, benchInducing(m))
			if err != nil {
				b.Fatal(err)
			}
			p := v.Params()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := v.PriorKL(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkWhitenedPriorKL(b *testing.B) {
	prior, _ := gps.NewPrior(kernel.RBF{}, mean.Zero{})
	for _, m := range []int{16, 64, 128} {
		b.Run(fmt.Sprintf("M=%d", m), func(b *testing.B) {
			w, err := NewWhitenedVariationalGaussian(prior, benchInducing(m))
			if err != nil {
				b.Fatal(err)
			}
			p := w.Params()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := w.PriorKL(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPredict(b *testing.B) {
	prior, _ := gps.NewPrior(kernel.RBF{}, mean.Zero{})
	const n = 100
	for _, m := range []int{16, 64} {
		b.Run(fmt.Sprintf("M=%d", m), func(b *testing.B) {
			v, err := NewVariationalGaussian(prior, benchInducing(m))
			if err != nil {
				b.Fatal(err)
			}
			p := v.Params()
			grid := benchGrid(n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				predict, err := v.Predict(p)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := predict(grid); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPredictAmortized measures repeated test-batch evaluation against
// a single Predict call, the intended usage for plotting grids.
func BenchmarkPredictAmortized(b *testing.B) {
	prior, _ := gps.NewPrior(kernel.RBF{}, mean.Zero{})
	v, err := NewVariationalGaussian(prior, benchInducing(64))
	if err != nil {
		b.Fatal(err)
	}
	predict, err := v.Predict(v.Params())
	if err != nil {
		b.Fatal(err)
	}
	grid := benchGrid(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := predict(grid); err != nil {
			b.Fatal(err)
		}
	}
}
