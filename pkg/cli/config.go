package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Fepozopo/grainer/pkg/grain"
	"github.com/Fepozopo/grainer/pkg/stdimg"
)

// ErrMissingPath is returned when no input image was given.
var ErrMissingPath = errors.New("--path is required")

// Environment variables that override the built-in flag defaults. They may
// also come from a .env file in the working directory.
const (
	EnvMode            = "GRAINER_MODE"
	EnvIntensityFine   = "GRAINER_INTENSITY_FINE"
	EnvIntensityMedium = "GRAINER_INTENSITY_MEDIUM"
	EnvIntensityLarge  = "GRAINER_INTENSITY_LARGE"
	EnvSeed            = "GRAINER_SEED"
	EnvInterpolation   = "GRAINER_INTERPOLATION"
	EnvQuality         = "GRAINER_QUALITY"
	EnvLogLevel        = "GRAINER_LOG_LEVEL"
)

// Config is the merged result of defaults, environment and flags.
type Config struct {
	Path          string
	Output        string
	Intensities   grain.Intensities
	Mode          grain.Mode
	Interpolation grain.Interpolation
	Seed          uint64
	Quality       int
	Preview       bool
	LogLevel      string
	Update        bool
	ShowVersion   bool
}

// OutputPath returns the explicit output path or the derived
// "<stem>-grained<ext>" sibling of the input.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return stdimg.OutputPath(c.Path)
}

// raw holds flag values before they are parsed into typed fields.
type raw struct {
	mode          string
	interpolation string
	fine          float64
	medium        float64
	large         float64
	seed          uint64
	quality       int
	logLevel      string
}

func defaults(getenv func(string) string) (raw, error) {
	r := raw{
		mode:          grain.ModeGaussian.String(),
		interpolation: grain.Bilinear.String(),
		fine:          grain.DefaultIntensities.Fine,
		medium:        grain.DefaultIntensities.Medium,
		large:         grain.DefaultIntensities.Large,
		quality:       stdimg.DefaultJPEGQuality,
		logLevel:      "INFO",
	}
	if v := getenv(EnvMode); v != "" {
		r.mode = v
	}
	if v := getenv(EnvInterpolation); v != "" {
		r.interpolation = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		r.logLevel = v
	}
	floats := []struct {
		env string
		dst *float64
	}{
		{EnvIntensityFine, &r.fine},
		{EnvIntensityMedium, &r.medium},
		{EnvIntensityLarge, &r.large},
	}
	for _, f := range floats {
		v := getenv(f.env)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return r, fmt.Errorf("invalid %s: %w", f.env, err)
		}
		*f.dst = x
	}
	if v := getenv(EnvSeed); v != "" {
		x, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return r, fmt.Errorf("invalid %s: %w", EnvSeed, err)
		}
		r.seed = x
	}
	if v := getenv(EnvQuality); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil {
			return r, fmt.Errorf("invalid %s: %w", EnvQuality, err)
		}
		r.quality = x
	}
	return r, nil
}

// LoadConfig parses args (without the program name). Flags win over
// environment values, which win over built-in defaults. Usage and parse
// errors are written to output.
func LoadConfig(args []string, getenv func(string) string, output io.Writer) (*Config, error) {
	r, err := defaults(getenv)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}

	fs := flag.NewFlagSet("grainer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Grainer script to add a bit of character to your photos\n\n")
		fmt.Fprintf(output, "Usage: grainer --path <image> [options]\n\n")
		fs.PrintDefaults()
	}

	// long and short names share one destination
	fs.StringVar(&cfg.Path, "path", "", "path to image (.jpeg, .jpg or .png)")
	fs.StringVar(&cfg.Path, "p", "", "shorthand for --path")
	fs.Float64Var(&r.fine, "intensity_fine", r.fine, "intensity of the fine grain, unused by poisson")
	fs.Float64Var(&r.fine, "if", r.fine, "shorthand for --intensity_fine")
	fs.Float64Var(&r.medium, "intensity_medium", r.medium, "intensity of the medium grain, unused by poisson")
	fs.Float64Var(&r.medium, "im", r.medium, "shorthand for --intensity_medium")
	fs.Float64Var(&r.large, "intensity_large", r.large, "intensity of the large grain, unused by poisson")
	fs.Float64Var(&r.large, "il", r.large, "shorthand for --intensity_large")
	fs.StringVar(&r.mode, "mode", r.mode, "how to apply noise to the image: gaussian or poisson")
	fs.StringVar(&r.mode, "m", r.mode, "shorthand for --mode")
	fs.StringVar(&cfg.Output, "output", "", "output path (default <stem>-grained<ext> next to the input)")
	fs.StringVar(&cfg.Output, "o", "", "shorthand for --output")
	fs.Uint64Var(&r.seed, "seed", r.seed, "random seed for reproducible grain (0 picks one)")
	fs.StringVar(&r.interpolation, "interpolation", r.interpolation, "upsampling kernel: bilinear, catmullrom or lanczos")
	fs.IntVar(&r.quality, "quality", r.quality, "JPEG quality 1-100")
	fs.BoolVar(&cfg.Preview, "preview", false, "show the result inline in kitty/iTerm2-compatible terminals")
	fs.StringVar(&r.logLevel, "log-level", r.logLevel, "log level: DEBUG, INFO, WARNING or ERROR")
	fs.BoolVar(&cfg.Update, "update", false, "check GitHub for a newer release and update")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.Intensities = grain.Intensities{Fine: r.fine, Medium: r.medium, Large: r.large}
	cfg.Seed = r.seed
	cfg.Quality = r.quality
	cfg.LogLevel = strings.ToUpper(r.logLevel)
	if cfg.Mode, err = grain.ParseMode(r.mode); err != nil {
		return nil, err
	}
	if cfg.Interpolation, err = grain.ParseInterpolation(r.interpolation); err != nil {
		return nil, err
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, fmt.Errorf("invalid quality %d: must be 1-100", cfg.Quality)
	}
	if cfg.ShowVersion || cfg.Update {
		return cfg, nil
	}
	if cfg.Path == "" {
		return nil, ErrMissingPath
	}
	return cfg, nil
}
