package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Config holds the command line options
type Config struct {
	SceneType  string
	Width      int // 0 = scene default
	Samples    int // 0 = scene default
	MaxDepth   int // -1 = scene default
	NumWorkers int
	Seed       uint64
	Format     output.Format
	Compress   bool
	OutPath    string
	Help       bool
}

func newFlagSet(config *Config, format *string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.StringVar(&config.SceneType, "scene", "random", "Scene type: "+strings.Join(scene.Names(), ", "))
	fs.IntVar(&config.Width, "width", 0, "Image width in pixels (0 = scene default; height follows the aspect ratio)")
	fs.IntVar(&config.Samples, "spp", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&config.MaxDepth, "depth", -1, "Maximum ray bounce depth (-1 = scene default)")
	fs.IntVar(&config.NumWorkers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	fs.Uint64Var(&config.Seed, "seed", 0, "Random seed for scene layout and sampling (0 = time based)")
	fs.StringVar(format, "format", "ppm", "Output format: ppm or png")
	fs.BoolVar(&config.Compress, "compress", false, "Compress the output file with zstd")
	fs.StringVar(&config.OutPath, "out", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	fs.BoolVar(&config.Help, "help", false, "Show help information")
	return fs
}

func parseFlags(args []string, stderr io.Writer) (Config, error) {
	var config Config
	var format string

	if err := newFlagSet(&config, &format, stderr).Parse(args); err != nil {
		return config, err
	}
	if config.Help {
		return config, nil
	}

	parsed, err := output.ParseFormat(format)
	if err != nil {
		return config, err
	}
	config.Format = parsed
	return config, nil
}

func showHelp(w io.Writer) {
	fmt.Fprintln(w, "Sphere Path Tracer")
	fmt.Fprintln(w, "Usage: pathtracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	var config Config
	var format string
	newFlagSet(&config, &format, w).PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, group := range scene.ListAllScenes().Groups {
		for _, info := range group.Scenes {
			fmt.Fprintf(w, "  %-14s - %s\n", info.ID, info.Description)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to output/<scene_type>/render_<timestamp>.<format>")
}

// createScene builds the scene and applies command line overrides to its sampling config
func createScene(config Config) (*scene.Scene, error) {
	s, err := scene.Create(config.SceneType, scene.Options{Seed: config.Seed})
	if err != nil {
		return nil, err
	}

	if config.Width > 0 {
		s.SetWidth(config.Width)
	}
	if config.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = config.Samples
	}
	if config.MaxDepth >= 0 {
		s.SamplingConfig.MaxDepth = config.MaxDepth
	}
	s.SamplingConfig.NumWorkers = config.NumWorkers
	s.SamplingConfig.Seed = config.Seed

	if err := s.SamplingConfig.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// outputPath returns the file to write, defaulting to a timestamped file per scene
func outputPath(config Config, now time.Time) string {
	if config.OutPath != "" {
		return config.OutPath
	}
	timestamp := now.Format("20060102_150405")
	filename := "render_" + timestamp + config.Format.Extension(config.Compress)
	return filepath.Join("output", config.SceneType, filename)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	config, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if config.Help {
		showHelp(stdout)
		return nil
	}

	fmt.Fprintln(stdout, "Starting Sphere Path Tracer...")

	s, err := createScene(config)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Using %s scene (%d spheres)...\n", config.SceneType, s.GetPrimitiveCount())

	raytracer, err := renderer.NewRaytracer(s, s.SamplingConfig, renderer.NewDefaultLogger())
	if err != nil {
		return err
	}

	img, stats, err := raytracer.RenderImage(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Render completed in %v\n", stats.Elapsed)
	fmt.Fprintf(stdout, "Samples per pixel: %.1f (range %d - %d), average luminance %.3f\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed, renderer.CalculateAverageLuminance(img))

	filename := outputPath(config, time.Now())
	if err := output.SaveImage(filename, img, config.Format, config.Compress); err != nil {
		return fmt.Errorf("saving render: %w", err)
	}

	fmt.Fprintf(stdout, "Render saved as %s (seed %d)\n", filename, raytracer.Seed())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
