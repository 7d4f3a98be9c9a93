package grain

import "errors"

var (
	// ErrInvalidDimensions is returned when an image or field is empty, too
	// small to hold the quarter-resolution layer, or when a mask does not
	// match the image it is applied to.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrUnsupportedDistribution is returned for a mode or distribution
	// outside {gaussian, poisson}.
	ErrUnsupportedDistribution = errors.New("unsupported distribution")

	// ErrInvalidIntensity is returned for a negative or non-finite gaussian
	// intensity.
	ErrInvalidIntensity = errors.New("invalid intensity")
)
