// Package config holds the library-wide numerical defaults.
package config

// DefaultJitter is the small positive value added to the diagonal of a
// covariance matrix before Cholesky factorization. It is read once at
// construction time by components that are not given an explicit jitter.
const DefaultJitter = 1e-6

// Settings bundles the numerical defaults so that callers can thread an
// explicit configuration value through construction instead of reading
// package state.
type Settings struct {
	Jitter float64
}

// Defaults returns the default settings.
func Defaults() Settings {
	return Settings{Jitter: DefaultJitter}
}
