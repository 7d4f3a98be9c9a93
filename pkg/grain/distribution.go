package grain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// PoissonLambda is the expected photon count of the poisson shot-noise
// model. A poisson layer has standard deviation 1/sqrt(PoissonLambda).
const PoissonLambda = 1024.0

// Distribution is the per-layer noise model. It is a closed set: only
// Gaussian and Poisson implement it.
type Distribution interface {
	fmt.Stringer
	// sampler returns a function producing one zero-mean sample per call.
	sampler(src rand.Source) func() float64
}

// Gaussian draws independent samples from N(0, Sigma^2).
type Gaussian struct {
	Sigma float64
}

func (g Gaussian) String() string { return fmt.Sprintf("gaussian(sigma=%g)", g.Sigma) }

func (g Gaussian) sampler(src rand.Source) func() float64 {
	n := distuv.Normal{Mu: 0, Sigma: g.Sigma, Src: src}
	return n.Rand
}

// Poisson is shot noise around a zero base signal. It carries no parameters:
// the spread is fixed by PoissonLambda.
type Poisson struct{}

func (Poisson) String() string { return "poisson" }

func (Poisson) sampler(src rand.Source) func() float64 {
	p := distuv.Poisson{Lambda: PoissonLambda, Src: src}
	return func() float64 {
		return (p.Rand() - PoissonLambda) / PoissonLambda
	}
}

// Mode selects which Distribution the mask builder uses for every scale.
type Mode int

const (
	modeUnknown Mode = iota
	ModeGaussian
	ModePoisson
)

// Modes lists the supported modes in CLI order.
var Modes = []Mode{ModeGaussian, ModePoisson}

func (m Mode) String() string {
	switch m {
	case ModeGaussian:
		return "gaussian"
	case ModePoisson:
		return "poisson"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a case-insensitive mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gaussian":
		return ModeGaussian, nil
	case "poisson":
		return ModePoisson, nil
	default:
		return modeUnknown, fmt.Errorf("%w: %q (want gaussian or poisson)", ErrUnsupportedDistribution, s)
	}
}

// Intensities holds the gaussian standard deviation for each scale.
type Intensities struct {
	Fine   float64
	Medium float64
	Large  float64
}

// DefaultIntensities matches the command line defaults.
var DefaultIntensities = Intensities{Fine: 0.01, Medium: 0.01, Large: 0.01}

// At returns the intensity for scale s.
func (in Intensities) At(s Scale) float64 {
	switch s {
	case ScaleMedium:
		return in.Medium
	case ScaleLarge:
		return in.Large
	default:
		return in.Fine
	}
}

func (in Intensities) validate() error {
	for _, s := range Scales {
		v := in.At(s)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s intensity %g", ErrInvalidIntensity, s, v)
		}
	}
	return nil
}

// Layers returns the distribution for each of the three scales. Poisson
// mode ignores in entirely.
func (m Mode) Layers(in Intensities) ([3]Distribution, error) {
	var out [3]Distribution
	switch m {
	case ModeGaussian:
		if err := in.validate(); err != nil {
			return out, err
		}
		for i, s := range Scales {
			out[i] = Gaussian{Sigma: in.At(s)}
		}
	case ModePoisson:
		for i := range out {
			out[i] = Poisson{}
		}
	default:
		return out, fmt.Errorf("%w: %s", ErrUnsupportedDistribution, m)
	}
	return out, nil
}

// Scale identifies one of the three noise resolutions.
type Scale int

const (
	ScaleFine Scale = iota
	ScaleMedium
	ScaleLarge
)

// Scales lists the scales from finest to coarsest.
var Scales = [3]Scale{ScaleFine, ScaleMedium, ScaleLarge}

// Divisor is the factor by which the scale's layer is smaller than the image.
func (s Scale) Divisor() int {
	return 1 << uint(s)
}

func (s Scale) String() string {
	switch s {
	case ScaleFine:
		return "fine"
	case ScaleMedium:
		return "medium"
	case ScaleLarge:
		return "large"
	default:
		return fmt.Sprintf("Scale(%d)", int(s))
	}
}
