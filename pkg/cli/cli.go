// Package cli implements the grainer command: it loads an image, adds
// multi-scale grain and writes "<stem>-grained<ext>" next to the input.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/grainer/pkg/grain"
	"github.com/Fepozopo/grainer/pkg/stdimg"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/Fepozopo/grainer/pkg/cli.Version=...".
var Version = "0.1.0"

// Run executes the command with args (without the program name) and returns
// the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "failed to read .env: %v\n", err)
		return 1
	}

	cfg, err := LoadConfig(args, os.Getenv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "grainer: %v\n", err)
		return 2
	}

	logger, err := prepareLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "grainer: %v\n", err)
		return 2
	}

	if cfg.ShowVersion {
		fmt.Fprintf(stdout, "grainer %s\n", Version)
		return 0
	}
	if cfg.Update {
		if err := CheckForUpdates(stdout); err != nil {
			logger.Error("Failed to update", slog.String("error", err.Error()))
			return 1
		}
		return 0
	}

	if err := Process(ctx, cfg, logger, stdout); err != nil {
		logger.Error("Failed to add grain", slog.String("path", cfg.Path), slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// Process runs the load, grain and save pipeline for cfg.
func Process(ctx context.Context, cfg *Config, logger *slog.Logger, stdout io.Writer) error {
	img, format, err := stdimg.Load(cfg.Path)
	if err != nil {
		return err
	}
	out := cfg.OutputPath()
	if err := stdimg.ValidateExtension(out); err != nil {
		return err
	}
	logger.Debug("Loaded image",
		slog.String("path", cfg.Path),
		slog.String("format", format),
		slog.Int("rows", img.Rows),
		slog.Int("cols", img.Cols),
		slog.Int("channels", img.Channels))

	opts := []grain.Option{
		grain.WithInterpolation(cfg.Interpolation),
		grain.WithLogger(logger),
	}
	if cfg.Seed != 0 {
		opts = append(opts, grain.WithSeed(cfg.Seed))
	}
	comp := grain.New(opts...)

	grained, err := comp.Grain(ctx, img, cfg.Intensities, cfg.Mode)
	if err != nil {
		return err
	}
	logger.Info("Added grain",
		slog.String("mode", cfg.Mode.String()),
		slog.Float64("fine", cfg.Intensities.Fine),
		slog.Float64("medium", cfg.Intensities.Medium),
		slog.Float64("large", cfg.Intensities.Large),
		slog.Uint64("seed", comp.Seed()))

	fmt.Fprintf(stdout, "Saving new image at %s\n", out)
	if err := stdimg.Save(out, grained, stdimg.Options{JPEGQuality: cfg.Quality}); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}

	if cfg.Preview {
		p := NewPreviewer(stdout, os.Getenv)
		if err := p.Preview(grained); err != nil {
			// preview is best effort
			logger.Warn("Preview unavailable", slog.String("error", err.Error()))
		}
	}
	return nil
}
