// Package dist implements the multivariate normal primitives used for KL
// divergence, log-density evaluation and sampling. Gaussians are
// parameterised either by a lower-triangular root L with Σ = L·Lᵀ, by a
// diagonal scale, or by a full covariance matrix.
package dist

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const log2Pi = 1.8378770664093453

// ErrNotPositiveDefinite reports a covariance matrix whose Cholesky
// factorization failed.
var ErrNotPositiveDefinite = errors.New("dist: covariance matrix is not positive definite")

// NormalTri is a multivariate normal N(μ, L·Lᵀ) parameterised by a
// lower-triangular root L. The diagonal of L may carry negative entries
// (unconstrained roots); only its absolute values enter log-determinants.
type NormalTri struct {
	mu    *mat.VecDense
	lower *mat.TriDense
}

// NewNormalTri builds a triangular-root Gaussian. The mean and root are
// retained, not copied.
func NewNormalTri(mu *mat.VecDense, lower *mat.TriDense) (*NormalTri, error) {
	k := mu.Len()
	r, c := lower.Dims()
	if r != k || c != k {
		return nil, fmt.Errorf("dist: root dimensions %dx%d do not match mean length %d", r, c, k)
	}
	return &NormalTri{mu: mu, lower: lower}, nil
}

// Dim returns the dimensionality of the distribution.
func (n *NormalTri) Dim() int { return n.mu.Len() }

// Mean returns a copy of the mean vector.
func (n *NormalTri) Mean() *mat.VecDense {
	out := mat.NewVecDense(n.Dim(), nil)
	out.CopyVec(n.mu)
	return out
}

// CovarianceMatrix materialises Σ = L·Lᵀ.
func (n *NormalTri) CovarianceMatrix() *mat.SymDense {
	k := n.Dim()
	var full mat.Dense
	full.Mul(n.lower, n.lower.T())
	out := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			out.SetSym(i, j, full.At(i, j))
		}
	}
	return out
}

// Rand draws one sample μ + L·z with z standard normal.
func (n *NormalTri) Rand(rng *rand.Rand) *mat.VecDense {
	k := n.Dim()
	z := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		z.SetVec(i, rng.NormFloat64())
	}
	out := mat.NewVecDense(k, nil)
	out.MulVec(n.lower, z)
	out.AddVec(out, n.mu)
	return out
}

// logDetRoot computes Σ log|L_ii|, the log-determinant of the root up to
// sign. A zero diagonal entry means the covariance is degenerate.
func logDetRoot(lower *mat.TriDense) (float64, error) {
	k, _ := lower.Dims()
	ld := 0.0
	for i := 0; i < k; i++ {
		d := math.Abs(lower.At(i, i))
		if d == 0 {
			return 0, fmt.Errorf("dist: %w: zero root diagonal at %d", ErrNotPositiveDefinite, i)
		}
		ld += math.Log(d)
	}
	return ld, nil
}

// LogProb evaluates the log-density at x using one triangular solve.
func (n *NormalTri) LogProb(x *mat.VecDense) (float64, error) {
	k := n.Dim()
	if x.Len() != k {
		return 0, fmt.Errorf("dist: point length %d does not match dimension %d", x.Len(), k)
	}
	ld, err := logDetRoot(n.lower)
	if err != nil {
		return 0, err
	}
	var diff, y mat.VecDense
	diff.SubVec(x, n.mu)
	if err := y.SolveVec(n.lower, &diff); err != nil {
		return 0, fmt.Errorf("dist: triangular solve failed: %w", err)
	}
	quad := mat.Dot(&y, &y)
	return -0.5*(float64(k)*log2Pi+quad) - ld, nil
}

// KL computes KL[n ‖ p] in closed form,
//
//	0.5 (‖Lp⁻¹Lq‖²_F + ‖Lp⁻¹(μq-μp)‖² - k) + log|det Lp| - log|det Lq|,
//
// using triangular solves only; no covariance inverse is formed.
func (n *NormalTri) KL(p *NormalTri) (float64, error) {
	k := n.Dim()
	if p.Dim() != k {
		return 0, fmt.Errorf("dist: KL dimension mismatch, %d != %d", k, p.Dim())
	}
	ldQ, err := logDetRoot(n.lower)
	if err != nil {
		return 0, err
	}
	ldP, err := logDetRoot(p.lower)
	if err != nil {
		return 0, err
	}

	var m mat.Dense
	if err := m.Solve(p.lower, n.lower); err != nil {
		return 0, fmt.Errorf("dist: triangular solve failed: %w", err)
	}
	trace := 0.0
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			v := m.At(i, j)
			trace += v * v
		}
	}

	var diff, y mat.VecDense
	diff.SubVec(n.mu, p.mu)
	if err := y.SolveVec(p.lower, &diff); err != nil {
		return 0, fmt.Errorf("dist: triangular solve failed: %w", err)
	}
	quad := mat.Dot(&y, &y)

	return 0.5*(trace+quad-float64(k)) + ldP - ldQ, nil
}

// KLToStandard computes KL[n ‖ N(0, I)], the special case where the prior
// side is the standard normal and no solves are needed.
func (n *NormalTri) KLToStandard() (float64, error) {
	k := n.Dim()
	ldQ, err := logDetRoot(n.lower)
	if err != nil {
		return 0, err
	}
	trace := 0.0
	for i := 0; i < k; i++ {
		for j := 0; j <= i; j++ {
			v := n.lower.At(i, j)
			trace += v * v
		}
	}
	quad := mat.Dot(n.mu, n.mu)
	return 0.5*(trace+quad-float64(k)) - ldQ, nil
}

// NormalDiag is a multivariate normal with a diagonal root.
type NormalDiag struct {
	mu    *mat.VecDense
	scale *mat.VecDense
}

// NewNormalDiag builds a diagonal Gaussian from a mean and a vector of
// scales (standard deviations). Scales must be non-zero.
func NewNormalDiag(mu, scale *mat.VecDense) (*NormalDiag, error) {
	if mu.Len() != scale.Len() {
		return nil, fmt.Errorf("dist: scale length %d does not match mean length %d", scale.Len(), mu.Len())
	}
	for i := 0; i < scale.Len(); i++ {
		if scale.AtVec(i) == 0 {
			return nil, fmt.Errorf("dist: %w: zero scale at %d", ErrNotPositiveDefinite, i)
		}
	}
	return &NormalDiag{mu: mu, scale: scale}, nil
}

// StandardNormal returns the k-dimensional standard normal.
func StandardNormal(k int) *NormalDiag {
	scale := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		scale.SetVec(i, 1)
	}
	return &NormalDiag{mu: mat.NewVecDense(k, nil), scale: scale}
}

// Dim returns the dimensionality of the distribution.
func (n *NormalDiag) Dim() int { return n.mu.Len() }

// Tri promotes the diagonal Gaussian to its triangular-root form.
func (n *NormalDiag) Tri() *NormalTri {
	k := n.Dim()
	lower := mat.NewTriDense(k, mat.Lower, nil)
	for i := 0; i < k; i++ {
		lower.SetTri(i, i, n.scale.AtVec(i))
	}
	return &NormalTri{mu: n.mu, lower: lower}
}

// Mean returns a copy of the mean vector.
func (n *NormalDiag) Mean() *mat.VecDense {
	out := mat.NewVecDense(n.Dim(), nil)
	out.CopyVec(n.mu)
	return out
}

// LogProb evaluates the log-density at x.
func (n *NormalDiag) LogProb(x *mat.VecDense) (float64, error) {
	return n.Tri().LogProb(x)
}

// Rand draws one sample.
func (n *NormalDiag) Rand(rng *rand.Rand) *mat.VecDense {
	return n.Tri().Rand(rng)
}
