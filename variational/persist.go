package variational

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-sparse-gp/gps"
)

// familyState is the serializable state of a variational family. The prior
// process is not serialized; Load takes it as an argument, mirroring the
// family constructors.
type familyState struct {
	Version     int
	Whitened    bool
	Diag        bool
	Jitter      float64
	NumInducing int
	InputDim    int
	Inducing    []float64 // row-major M x D
	Mean        []float64 // length M
	Root        []float64 // row-major M x M
}

func (v *VariationalGaussian) state(whitened bool) familyState {
	m, d := v.numInducing, v.inputDim
	st := familyState{
		Version:     1,
		Whitened:    whitened,
		Diag:        v.diag,
		Jitter:      v.jitter,
		NumInducing: m,
		InputDim:    d,
		Inducing:    make([]float64, m*d),
		Mean:        make([]float64, m),
		Root:        make([]float64, m*m),
	}
	copy(st.Inducing, v.inducingInputs.RawMatrix().Data)
	copy(st.Mean, v.mean.RawVector().Data)
	copy(st.Root, v.root.RawMatrix().Data)
	return st
}

// Save serializes the family's defining arrays and configuration to gob
// format. The prior process is not serialized.
func (v *VariationalGaussian) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(v.state(false))
}

// Save serializes the whitened family. See VariationalGaussian.Save.
func (wv *WhitenedVariationalGaussian) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(wv.state(true))
}

// Load deserializes a family saved with Save and rebinds it to the given
// prior process. The concrete type (whitened or not) is restored from the
// stream.
func Load(r io.Reader, prior *gps.Prior) (Family, error) {
	var st familyState
	if err := gob.NewDecoder(r).Decode(&st); err != nil {
		return nil, err
	}
	if st.Version != 1 {
		return nil, errors.New("variational: unsupported state version")
	}
	m, d := st.NumInducing, st.InputDim
	if len(st.Inducing) != m*d {
		return nil, fmt.Errorf("variational: inducing data length %d, want %d", len(st.Inducing), m*d)
	}
	if len(st.Mean) != m {
		return nil, fmt.Errorf("variational: mean data length %d, want %d", len(st.Mean), m)
	}
	if len(st.Root) != m*m {
		return nil, fmt.Errorf("variational: root data length %d, want %d", len(st.Root), m*m)
	}

	opts := []Option{
		WithDiagonal(st.Diag),
		WithJitter(st.Jitter),
		WithVariationalMean(mat.NewVecDense(m, st.Mean)),
		WithRootCovariance(mat.NewDense(m, m, st.Root)),
	}
	z := mat.NewDense(m, d, st.Inducing)
	if st.Whitened {
		return NewWhitenedVariationalGaussian(prior, z, opts...)
	}
	return NewVariationalGaussian(prior, z, opts...)
}
