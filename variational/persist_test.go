package variational

import (
	"bytes"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	prior := makePrior(t)
	mu := mat.NewVecDense(3, []float64{0.5, -0.3, 0.8})
	root := mat.NewDense(3, 3, []float64{
		0.8, 0, 0,
		0.2, 0.6, 0,
		-0.1, 0.3, 0.5,
	})
	v, err := NewVariationalGaussian(prior, inducing(), WithJitter(jitter),
		WithVariationalMean(mu), WithRootCovariance(root))
	if err != nil {
		t.Fatalf("NewVariationalGaussian failed: %v", err)
	}

	var buf bytes.Buffer
	if err := v.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(&buf, prior)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	restored, ok := loaded.(*VariationalGaussian)
	if !ok {
		t.Fatalf("Load returned %T, want *VariationalGaussian", loaded)
	}
	if restored.Jitter() != jitter {
		t.Errorf("restored jitter = %g, want %g", restored.Jitter(), jitter)
	}

	// The restored family must reproduce both the KL and the predictive
	// distribution exactly.
	klWant, err := v.PriorKL(v.Params())
	if err != nil {
		t.Fatalf("PriorKL failed: %v", err)
	}
	klGot, err := restored.PriorKL(restored.Params())
	if err != nil {
		t.Fatalf("PriorKL failed: %v", err)
	}
	if math.Abs(klGot-klWant) > 1e-15 {
		t.Errorf("restored PriorKL = %g, want %g", klGot, klWant)
	}

	test := mat.NewDense(2, 1, []float64{-0.4, 1.2})
	predictA, err := v.Predict(v.Params())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	predictB, err := restored.Predict(restored.Params())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	da, err := predictA(test)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	db, err := predictB(test)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if !mat.EqualApprox(da.Mean(), db.Mean(), 1e-15) {
		t.Error("restored predictive mean differs")
	}
	if !mat.EqualApprox(da.CovarianceMatrix(), db.CovarianceMatrix(), 1e-15) {
		t.Error("restored predictive covariance differs")
	}
}

func TestSaveLoadWhitened(t *testing.T) {
	prior := makePrior(t)
	w, err := NewWhitenedVariationalGaussian(prior, inducing(), WithJitter(jitter),
		WithDiagonal(true))
	if err != nil {
		t.Fatalf("NewWhitenedVariationalGaussian failed: %v", err)
	}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(&buf, prior)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	restored, ok := loaded.(*WhitenedVariationalGaussian)
	if !ok {
		t.Fatalf("Load returned %T, want *WhitenedVariationalGaussian", loaded)
	}
	if !restored.Diagonal() {
		t.Error("restored family lost the diagonal flag")
	}
}

func TestLoadTruncated(t *testing.T) {
	if _, err := Load(bytes.NewReader([]byte{0x01, 0x02}), makePrior(t)); err == nil {
		t.Error("Load of truncated data should fail")
	}
}
