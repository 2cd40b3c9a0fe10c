package dist

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// NormalFull is a multivariate normal parameterised by a full symmetric
// covariance matrix. It is the return type of predictive distributions.
type NormalFull struct {
	mu    *mat.VecDense
	sigma *mat.SymDense
}

// NewNormalFull builds a full-covariance Gaussian. The covariance is not
// factorised up front; LogProb and Rand factorise on demand and report
// ErrNotPositiveDefinite if that fails.
func NewNormalFull(mu *mat.VecDense, sigma *mat.SymDense) (*NormalFull, error) {
	k := mu.Len()
	r, _ := sigma.Dims()
	if r != k {
		return nil, fmt.Errorf("dist: covariance dimension %d does not match mean length %d", r, k)
	}
	return &NormalFull{mu: mu, sigma: sigma}, nil
}

// Dim returns the dimensionality of the distribution.
func (n *NormalFull) Dim() int { return n.mu.Len() }

// Mean returns a copy of the mean vector.
func (n *NormalFull) Mean() *mat.VecDense {
	out := mat.NewVecDense(n.Dim(), nil)
	out.CopyVec(n.mu)
	return out
}

// CovarianceMatrix returns a copy of the covariance matrix.
func (n *NormalFull) CovarianceMatrix() *mat.SymDense {
	out := mat.NewSymDense(n.Dim(), nil)
	out.CopySym(n.sigma)
	return out
}

// Variance returns the marginal variances, the diagonal of the covariance.
func (n *NormalFull) Variance() *mat.VecDense {
	k := n.Dim()
	out := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		out.SetVec(i, n.sigma.At(i, i))
	}
	return out
}

// tri factorises the covariance into its triangular-root form.
func (n *NormalFull) tri() (*NormalTri, error) {
	var chol mat.Cholesky
	if !chol.Factorize(n.sigma) {
		return nil, ErrNotPositiveDefinite
	}
	k := n.Dim()
	lower := mat.NewTriDense(k, mat.Lower, nil)
	chol.LTo(lower)
	return &NormalTri{mu: n.mu, lower: lower}, nil
}

// LogProb evaluates the log-density at x.
func (n *NormalFull) LogProb(x *mat.VecDense) (float64, error) {
	t, err := n.tri()
	if err != nil {
		return 0, err
	}
	return t.LogProb(x)
}

// Rand draws one sample.
func (n *NormalFull) Rand(rng *rand.Rand) (*mat.VecDense, error) {
	t, err := n.tri()
	if err != nil {
		return nil, err
	}
	return t.Rand(rng), nil
}
