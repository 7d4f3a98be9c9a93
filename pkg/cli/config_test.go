package cli

import (
	"errors"
	"flag"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/grainer/pkg/grain"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]string{"--path", "photo.jpg"}, envMap(nil), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", cfg.Path)
	assert.Equal(t, grain.DefaultIntensities, cfg.Intensities)
	assert.Equal(t, grain.ModeGaussian, cfg.Mode)
	assert.Equal(t, grain.Bilinear, cfg.Interpolation)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, 75, cfg.Quality)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "photo-grained.jpg", cfg.OutputPath())
}

func TestLoadConfigShortFlags(t *testing.T) {
	args := []string{"-p", "a.png", "-if", "0.1", "-im", "0.2", "-il", "0.3", "-m", "poisson", "-o", "b.png"}
	cfg, err := LoadConfig(args, envMap(nil), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "a.png", cfg.Path)
	assert.Equal(t, grain.Intensities{Fine: 0.1, Medium: 0.2, Large: 0.3}, cfg.Intensities)
	assert.Equal(t, grain.ModePoisson, cfg.Mode)
	assert.Equal(t, "b.png", cfg.OutputPath())
}

func TestLoadConfigLongFlags(t *testing.T) {
	args := []string{
		"--path", filepath.Join("in", "x.jpeg"),
		"--intensity_fine", "0.05",
		"--intensity_medium", "0",
		"--intensity_large", "0.02",
		"--mode", "GAUSSIAN",
		"--seed", "99",
		"--interpolation", "lanczos",
		"--quality", "90",
		"--log-level", "debug",
		"--preview",
	}
	cfg, err := LoadConfig(args, envMap(nil), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, grain.Intensities{Fine: 0.05, Large: 0.02}, cfg.Intensities)
	assert.Equal(t, grain.ModeGaussian, cfg.Mode)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, grain.Lanczos, cfg.Interpolation)
	assert.Equal(t, 90, cfg.Quality)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.Preview)
	assert.Equal(t, filepath.Join("in", "x-grained.jpeg"), cfg.OutputPath())
}

func TestLoadConfigEnvironmentThenFlags(t *testing.T) {
	env := envMap(map[string]string{
		EnvMode:            "poisson",
		EnvIntensityFine:   "0.3",
		EnvIntensityMedium: "0.4",
		EnvSeed:            "7",
		EnvInterpolation:   "catmullrom",
		EnvQuality:         "50",
		EnvLogLevel:        "warning",
	})

	cfg, err := LoadConfig([]string{"-p", "a.jpg"}, env, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, grain.ModePoisson, cfg.Mode)
	assert.Equal(t, grain.Intensities{Fine: 0.3, Medium: 0.4, Large: 0.01}, cfg.Intensities)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, grain.CatmullRom, cfg.Interpolation)
	assert.Equal(t, 50, cfg.Quality)
	assert.Equal(t, "WARNING", cfg.LogLevel)

	// explicit flags win
	cfg, err = LoadConfig([]string{"-p", "a.jpg", "-m", "gaussian", "-if", "0.9", "--seed", "8"}, env, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, grain.ModeGaussian, cfg.Mode)
	assert.Equal(t, 0.9, cfg.Intensities.Fine)
	assert.Equal(t, uint64(8), cfg.Seed)
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		env  map[string]string
		is   error
	}{
		{name: "missing path", args: nil, is: ErrMissingPath},
		{name: "bad mode", args: []string{"-p", "a.jpg", "-m", "localvar"}, is: grain.ErrUnsupportedDistribution},
		{name: "bad env mode", args: []string{"-p", "a.jpg"}, env: map[string]string{EnvMode: "speckle"}, is: grain.ErrUnsupportedDistribution},
		{name: "bad env float", args: []string{"-p", "a.jpg"}, env: map[string]string{EnvIntensityLarge: "lots"}},
		{name: "bad interpolation", args: []string{"-p", "a.jpg", "--interpolation", "nearest"}},
		{name: "bad quality", args: []string{"-p", "a.jpg", "--quality", "0"}},
		{name: "bad float flag", args: []string{"-p", "a.jpg", "-if", "x"}},
		{name: "stray argument", args: []string{"-p", "a.jpg", "extra"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(tc.args, envMap(tc.env), io.Discard)
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestLoadConfigVersionWithoutPath(t *testing.T) {
	cfg, err := LoadConfig([]string{"--version"}, envMap(nil), io.Discard)
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)
}

func TestLoadConfigHelp(t *testing.T) {
	_, err := LoadConfig([]string{"-h"}, envMap(nil), io.Discard)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}
