// Package variational implements sparse variational Gaussian-process
// approximations over inducing points, in both the natural and the whitened
// parameterisation. A family owns the variational parameters (mean, root
// covariance, inducing locations), computes the KL divergence against the GP
// prior for use in an evidence lower bound, and builds closed-form
// predictive distributions at test inputs.
package variational

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-sparse-gp/config"
	"github.com/n0madic/go-sparse-gp/dist"
	"github.com/n0madic/go-sparse-gp/gps"
	"github.com/n0madic/go-sparse-gp/kernel"
	"github.com/n0madic/go-sparse-gp/params"
)

// ErrNotPositiveDefinite reports a Cholesky factorization that failed even
// after jitter was added. It is propagated, never retried with a larger
// jitter; jitter tuning belongs to the caller.
var ErrNotPositiveDefinite = errors.New("variational: covariance matrix is not positive definite")

// PredictFn maps a batch of test inputs (one point per row) to the
// predictive distribution over their latent function values.
type PredictFn func(testInputs *mat.Dense) (*dist.NormalFull, error)

// Family is the capability contract every variational family satisfies:
// a read-only parameter dictionary merging the prior's parameters with the
// family's own, and a predictive-distribution builder. Both are pure reads
// of the supplied parameters, safe for concurrent use.
type Family interface {
	Params() params.Dict
	Predict(p params.Dict) (PredictFn, error)
}

var (
	_ Family = (*VariationalGaussian)(nil)
	_ Family = (*WhitenedVariationalGaussian)(nil)
)

// Option configures a variational family at construction.
type Option func(*settings)

type settings struct {
	mean   *mat.VecDense
	root   *mat.Dense
	diag   bool
	jitter float64
}

// WithVariationalMean sets the initial variational mean. Default is the
// zero vector.
func WithVariationalMean(mu *mat.VecDense) Option {
	return func(s *settings) { s.mean = mu }
}

// WithRootCovariance sets the initial root covariance sqrt, with
// S = sqrt·sqrtᵀ. Default is the identity.
func WithRootCovariance(root *mat.Dense) Option {
	return func(s *settings) { s.root = root }
}

// WithDiagonal selects the mean-field parameterisation: the root covariance
// is constrained to a diagonal matrix. The choice is fixed for the lifetime
// of the family.
func WithDiagonal(diag bool) Option {
	return func(s *settings) { s.diag = diag }
}

// WithJitter overrides the default jitter added to Kzz before
// factorization.
func WithJitter(jitter float64) Option {
	return func(s *settings) { s.jitter = jitter }
}

// VariationalGaussian is the variational family q(u) = N(μ, S) over the
// inducing outputs u = f(z), with S = sqrt·sqrtᵀ. It induces the
// approximate process q(f(·)) = ∫ p(f(·)|u) q(u) du.
type VariationalGaussian struct {
	prior          *gps.Prior
	inducingInputs *mat.Dense
	mean           *mat.VecDense
	root           *mat.Dense
	diag           bool
	jitter         float64
	numInducing    int
	inputDim       int
}

// NewVariationalGaussian builds an unwhitened variational Gaussian family
// over the given inducing inputs (one point per row). The supplied arrays
// are copied; the family never mutates them afterwards.
func NewVariationalGaussian(prior *gps.Prior, inducingInputs *mat.Dense, opts ...Option) (*VariationalGaussian, error) {
	if prior == nil {
		return nil, fmt.Errorf("variational: nil prior")
	}
	if inducingInputs == nil {
		return nil, fmt.Errorf("variational: nil inducing inputs")
	}
	m, d := inducingInputs.Dims()
	if m == 0 {
		return nil, fmt.Errorf("variational: need at least one inducing input")
	}

	s := settings{jitter: config.DefaultJitter}
	for _, opt := range opts {
		opt(&s)
	}
	if s.jitter <= 0 {
		return nil, fmt.Errorf("variational: jitter must be positive, got %g", s.jitter)
	}

	v := &VariationalGaussian{
		prior:       prior,
		diag:        s.diag,
		jitter:      s.jitter,
		numInducing: m,
		inputDim:    d,
	}
	v.inducingInputs = &mat.Dense{}
	v.inducingInputs.CloneFrom(inducingInputs)

	if s.mean == nil {
		v.mean = mat.NewVecDense(m, nil)
	} else {
		if s.mean.Len() != m {
			return nil, fmt.Errorf("variational: mean length %d does not match %d inducing inputs", s.mean.Len(), m)
		}
		v.mean = mat.NewVecDense(m, nil)
		v.mean.CopyVec(s.mean)
	}

	if s.root == nil {
		v.root = identityDense(m)
	} else {
		r, c := s.root.Dims()
		if r != m || c != m {
			return nil, fmt.Errorf("variational: root covariance is %dx%d, want %dx%d", r, c, m, m)
		}
		if err := checkRootStructure(s.root, s.diag); err != nil {
			return nil, err
		}
		v.root = &mat.Dense{}
		v.root.CloneFrom(s.root)
	}

	return v, nil
}

// identityDense returns the m x m identity as a dense matrix.
func identityDense(m int) *mat.Dense {
	out := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// checkRootStructure rejects a dense root handed to a diagonal family.
// Detection is best-effort: any non-zero off-diagonal entry is a caller
// contract violation.
func checkRootStructure(root *mat.Dense, diag bool) error {
	if !diag {
		return nil
	}
	m, _ := root.Dims()
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i != j && root.At(i, j) != 0 {
				return fmt.Errorf("variational: diagonal family given a root with non-zero entry at (%d,%d)", i, j)
			}
		}
	}
	return nil
}

// NumInducing returns the number of inducing points M.
func (v *VariationalGaussian) NumInducing() int { return v.numInducing }

// Jitter returns the jitter added to Kzz before factorization.
func (v *VariationalGaussian) Jitter() float64 { return v.jitter }

// Diagonal reports whether the family uses the mean-field (diagonal root)
// parameterisation.
func (v *VariationalGaussian) Diagonal() bool { return v.diag }

// Params merges the prior's parameter dictionary with the family's own
// "variational_family" component. The arrays are deep copies; mutating the
// returned dictionary does not touch family state.
func (v *VariationalGaussian) Params() params.Dict {
	own := params.Group{
		"inducing_inputs":             cloneDense(v.inducingInputs),
		"variational_mean":            vecToColumn(v.mean),
		"variational_root_covariance": cloneDense(v.root),
	}
	merged, err := params.Merge(v.prior.Params(), params.Dict{"variational_family": own})
	if err != nil {
		// The prior exposes only "kernel" and "mean_function"; a
		// collision with "variational_family" cannot happen.
		panic(err)
	}
	return merged
}

// Schema returns the unconstrained-transform declaration for each learnable
// array, for the caller's optimisation layer. The root covariance uses the
// softplus-diagonal transform in the mean-field case and fill-triangular
// otherwise.
func (v *VariationalGaussian) Schema() params.Schema {
	rootTransform := params.FillTriangular
	if v.diag {
		rootTransform = params.SoftplusDiag
	}
	return params.Schema{
		{Component: "variational_family", Name: "inducing_inputs", Transform: params.Identity},
		{Component: "variational_family", Name: "variational_mean", Transform: params.Identity},
		{Component: "variational_family", Name: "variational_root_covariance", Transform: rootTransform},
	}
}

// familyArrays holds the variational arrays extracted from a parameter
// dictionary, shape-checked against the family's configuration.
type familyArrays struct {
	mu   *mat.VecDense
	sqrt *mat.Dense
	z    *mat.Dense
}

// extract pulls the variational arrays out of p and validates their shapes
// against the number of inducing points fixed at construction.
func (v *VariationalGaussian) extract(p params.Dict) (*familyArrays, error) {
	g, ok := p["variational_family"]
	if !ok {
		return nil, fmt.Errorf("variational: missing %q component", "variational_family")
	}
	m := v.numInducing

	muArr, ok := g["variational_mean"]
	if !ok {
		return nil, fmt.Errorf("variational: missing parameter %q", "variational_mean")
	}
	mr, mc := muArr.Dims()
	if mr != m || mc != 1 {
		return nil, fmt.Errorf("variational: mean is %dx%d, want %dx1", mr, mc, m)
	}
	mu := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		mu.SetVec(i, muArr.At(i, 0))
	}

	sqrt, ok := g["variational_root_covariance"]
	if !ok {
		return nil, fmt.Errorf("variational: missing parameter %q", "variational_root_covariance")
	}
	sr, sc := sqrt.Dims()
	if sr != m || sc != m {
		return nil, fmt.Errorf("variational: root covariance is %dx%d, want %dx%d", sr, sc, m, m)
	}
	if err := checkRootStructure(sqrt, v.diag); err != nil {
		return nil, err
	}

	z, ok := g["inducing_inputs"]
	if !ok {
		return nil, fmt.Errorf("variational: missing parameter %q", "inducing_inputs")
	}
	zr, zc := z.Dims()
	if zr != m {
		return nil, fmt.Errorf("variational: %d inducing inputs supplied, family fixed at %d", zr, m)
	}
	if zc != v.inputDim {
		return nil, fmt.Errorf("variational: inducing inputs have dimension %d, want %d", zc, v.inputDim)
	}

	return &familyArrays{mu: mu, sqrt: sqrt, z: z}, nil
}

// priorAt builds Kzz + jitter·I, its Cholesky factor, and the prior mean at
// the inducing inputs. Factorization failure is reported, not retried.
func (v *VariationalGaussian) priorAt(z *mat.Dense, p params.Dict) (*mat.TriDense, *mat.VecDense, error) {
	kzz, err := kernel.Gram(v.prior.Kernel, z, p["kernel"])
	if err != nil {
		return nil, nil, err
	}
	m := v.numInducing
	for i := 0; i < m; i++ {
		kzz.SetSym(i, i, kzz.At(i, i)+v.jitter)
	}
	var chol mat.Cholesky
	if !chol.Factorize(kzz) {
		return nil, nil, fmt.Errorf("%w with jitter %g", ErrNotPositiveDefinite, v.jitter)
	}
	lz := mat.NewTriDense(m, mat.Lower, nil)
	chol.LTo(lz)

	muZ, err := v.prior.Mean.Mean(p["mean_function"], z)
	if err != nil {
		return nil, nil, err
	}
	return lz, muZ, nil
}

// PriorKL computes KL[ N(μ, S) ‖ N(μz, Kzz) ], the divergence between the
// variational distribution over inducing outputs and the GP prior at the
// inducing inputs.
func (v *VariationalGaussian) PriorKL(p params.Dict) (float64, error) {
	fa, err := v.extract(p)
	if err != nil {
		return 0, err
	}
	lz, muZ, err := v.priorAt(fa.z, p)
	if err != nil {
		return 0, err
	}
	qu, err := dist.NewNormalTri(fa.mu, lowerTri(fa.sqrt))
	if err != nil {
		return 0, err
	}
	pu, err := dist.NewNormalTri(muZ, lz)
	if err != nil {
		return 0, err
	}
	return qu.KL(pu)
}

// Predict precomputes the inducing-block quantities (Kzz, its Cholesky
// factor, μz) once and returns a function evaluating the predictive
// distribution
//
//	N[ μt + Ktz Kzz⁻¹ (μ - μz),  Ktt - Ktz Kzz⁻¹ Kzt + Ktz Kzz⁻¹ S Kzz⁻¹ Kzt ]
//
// at arbitrary test-input batches. The O(M³) factorization cost is paid per
// call to Predict, not per test batch.
func (v *VariationalGaussian) Predict(p params.Dict) (PredictFn, error) {
	fa, err := v.extract(p)
	if err != nil {
		return nil, err
	}
	lz, muZ, err := v.priorAt(fa.z, p)
	if err != nil {
		return nil, err
	}
	kernelParams := p["kernel"]
	meanParams := p["mean_function"]

	// μ - μz is test-input independent.
	var diff mat.VecDense
	diff.SubVec(fa.mu, muZ)

	return func(t *mat.Dense) (*dist.NormalFull, error) {
		ktt, kzt, muT, err := v.testBlocks(fa.z, t, kernelParams, meanParams)
		if err != nil {
			return nil, err
		}

		// Lz⁻¹ Kzt by forward substitution.
		var a mat.Dense
		if err := a.Solve(lz, kzt); err != nil {
			return nil, fmt.Errorf("variational: triangular solve failed: %w", err)
		}
		// Kzz⁻¹ Kzt by backward substitution against Lzᵀ.
		var b mat.Dense
		if err := b.Solve(lz.T(), &a); err != nil {
			return nil, fmt.Errorf("variational: triangular solve failed: %w", err)
		}

		// μt + Ktz Kzz⁻¹ (μ - μz)
		var mean mat.VecDense
		mean.MulVec(b.T(), &diff)
		mean.AddVec(&mean, muT)

		// Ktz Kzz⁻¹ sqrt
		var c mat.Dense
		c.Mul(b.T(), fa.sqrt)

		cov := assembleCovariance(ktt, &a, &c, v.jitter)
		return dist.NewNormalFull(&mean, cov)
	}, nil
}

// testBlocks computes Ktt, Kzt and μt for a test batch.
func (v *VariationalGaussian) testBlocks(z, t *mat.Dense, kernelParams, meanParams params.Group) (*mat.SymDense, *mat.Dense, *mat.VecDense, error) {
	if t == nil {
		return nil, nil, nil, fmt.Errorf("variational: nil test inputs")
	}
	_, tc := t.Dims()
	if tc != v.inputDim {
		return nil, nil, nil, fmt.Errorf("variational: test inputs have dimension %d, want %d", tc, v.inputDim)
	}
	ktt, err := kernel.Gram(v.prior.Kernel, t, kernelParams)
	if err != nil {
		return nil, nil, nil, err
	}
	kzt, err := kernel.CrossCovariance(v.prior.Kernel, z, t, kernelParams)
	if err != nil {
		return nil, nil, nil, err
	}
	muT, err := v.prior.Mean.Mean(meanParams, t)
	if err != nil {
		return nil, nil, nil, err
	}
	return ktt, kzt, muT, nil
}

// assembleCovariance builds Ktt - AᵀA + CCᵀ + jitter·I, symmetrised against
// floating-point drift in the matrix products. The jitter on the test-block
// diagonal guards against loss of positive definiteness from cancellation
// in Ktt - AᵀA.
func assembleCovariance(ktt *mat.SymDense, a, c *mat.Dense, jitter float64) *mat.SymDense {
	n, _ := ktt.Dims()
	var ata, cct mat.Dense
	ata.Mul(a.T(), a)
	cct.Mul(c, c.T())
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			val := ktt.At(i, j) -
				0.5*(ata.At(i, j)+ata.At(j, i)) +
				0.5*(cct.At(i, j)+cct.At(j, i))
			if i == j {
				val += jitter
			}
			cov.SetSym(i, j, val)
		}
	}
	return cov
}

// lowerTri copies the lower triangle of a square matrix into a TriDense,
// ignoring anything above the diagonal.
func lowerTri(root *mat.Dense) *mat.TriDense {
	m, _ := root.Dims()
	out := mat.NewTriDense(m, mat.Lower, nil)
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			out.SetTri(i, j, root.At(i, j))
		}
	}
	return out
}

// cloneDense returns a deep copy of a dense matrix.
func cloneDense(src *mat.Dense) *mat.Dense {
	out := &mat.Dense{}
	out.CloneFrom(src)
	return out
}

// vecToColumn copies a vector into an n x 1 dense matrix.
func vecToColumn(v *mat.VecDense) *mat.Dense {
	n := v.Len()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, v.AtVec(i))
	}
	return out
}
