package variational

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-sparse-gp/dist"
	"github.com/n0madic/go-sparse-gp/gps"
	"github.com/n0madic/go-sparse-gp/params"
)

// WhitenedVariationalGaussian reparameterises the variational Gaussian via
// the prior covariance's Cholesky factor: the whitened variable
// v = Lz⁻¹(u - μz) has q(v) = N(μ, S), so q(u) = N(Lz μ + μz, Lz S Lzᵀ) in
// the original space. The parameter shapes are identical to the unwhitened
// family; only the KL term and the predictive assembly differ.
type WhitenedVariationalGaussian struct {
	VariationalGaussian
}

// NewWhitenedVariationalGaussian builds a whitened variational Gaussian
// family. It accepts the same options as NewVariationalGaussian.
func NewWhitenedVariationalGaussian(prior *gps.Prior, inducingInputs *mat.Dense, opts ...Option) (*WhitenedVariationalGaussian, error) {
	base, err := NewVariationalGaussian(prior, inducingInputs, opts...)
	if err != nil {
		return nil, err
	}
	return &WhitenedVariationalGaussian{VariationalGaussian: *base}, nil
}

// PriorKL computes KL[ N(μ, S) ‖ N(0, I) ]. The whitening has absorbed the
// prior covariance, so no Kzz factorization is needed at all; this is
// strictly cheaper and better conditioned than the unwhitened KL.
func (w *WhitenedVariationalGaussian) PriorKL(p params.Dict) (float64, error) {
	fa, err := w.extract(p)
	if err != nil {
		return 0, err
	}
	qu, err := dist.NewNormalTri(fa.mu, lowerTri(fa.sqrt))
	if err != nil {
		return 0, err
	}
	return qu.KLToStandard()
}

// Predict precomputes Kzz's Cholesky factor (still needed to map whitened
// variables back to the original space) and returns a function evaluating
//
//	N[ μt + Ktz Lz⁻ᵀ μ,  Ktt - Ktz Kzz⁻¹ Kzt + Ktz Lz⁻ᵀ S Lz⁻¹ Kzt ]
//
// at arbitrary test-input batches. The mean needs no μ - μz correction; the
// whitening already centers the prior.
func (w *WhitenedVariationalGaussian) Predict(p params.Dict) (PredictFn, error) {
	fa, err := w.extract(p)
	if err != nil {
		return nil, err
	}
	lz, _, err := w.priorAt(fa.z, p)
	if err != nil {
		return nil, err
	}
	kernelParams := p["kernel"]
	meanParams := p["mean_function"]

	return func(t *mat.Dense) (*dist.NormalFull, error) {
		ktt, kzt, muT, err := w.testBlocks(fa.z, t, kernelParams, meanParams)
		if err != nil {
			return nil, err
		}

		// Lz⁻¹ Kzt by forward substitution.
		var a mat.Dense
		if err := a.Solve(lz, kzt); err != nil {
			return nil, fmt.Errorf("variational: triangular solve failed: %w", err)
		}

		// μt + Ktz Lz⁻ᵀ μ
		var mean mat.VecDense
		mean.MulVec(a.T(), fa.mu)
		mean.AddVec(&mean, muT)

		// Ktz Lz⁻ᵀ sqrt
		var c mat.Dense
		c.Mul(a.T(), fa.sqrt)

		cov := assembleCovariance(ktt, &a, &c, w.jitter)
		return dist.NewNormalFull(&mean, cov)
	}, nil
}
