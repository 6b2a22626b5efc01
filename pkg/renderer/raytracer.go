package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
)

// ErrInvalidConfig is returned when a sampling configuration cannot be rendered
var ErrInvalidConfig = errors.New("invalid sampling config")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int    // Image width in pixels
	Height          int    // Image height in pixels
	SamplesPerPixel int    // Number of rays per pixel
	MaxDepth        int    // Maximum ray bounce depth
	NumWorkers      int    // Number of parallel workers (0 = use CPU count)
	Seed            uint64 // Base random seed (0 = derive from the clock)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate reports whether the configuration can be rendered
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfig, c.Width)
	case c.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfig, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: worker count must not be negative, got %d", ErrInvalidConfig, c.NumWorkers)
	}
	return nil
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetBackgroundColors() (topColor, bottomColor core.Color)
}

// PixelResult is one finished pixel, tagged with its row-major index (top-left origin)
type PixelResult struct {
	Index int
	X, Y  int
	Color core.Color // Averaged linear color
	RGBA  color.RGBA // Tone-mapped 8-bit color
	Stats PixelStats
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene      Scene
	config     SamplingConfig
	seed       uint64
	integrator integrator.Integrator
	logger     core.Logger
}

// NewRaytracer creates a new raytracer.
// A zero config.Seed is replaced by a clock-derived seed; NumWorkers 0 means one per CPU.
func NewRaytracer(scene Scene, config SamplingConfig, logger core.Logger) (*Raytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.NumWorkers == 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Raytracer{
		scene:      scene,
		config:     config,
		seed:       seed,
		integrator: integrator.NewPathTracingIntegrator(),
		logger:     logger,
	}, nil
}

// Config returns the effective sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// Seed returns the base seed in use
func (rt *Raytracer) Seed() uint64 {
	return rt.seed
}

// SamplerForPixel returns the private random stream for one pixel.
// Streams depend only on the seed and the pixel index, never on scheduling.
func (rt *Raytracer) SamplerForPixel(index int) core.Sampler {
	return core.NewSeededSampler(rt.seed, uint64(index))
}

// ScreenCoordinates maps a pixel position plus sub-pixel jitter to camera (s, t).
// y counts rows from the top; camera coordinates have their origin at the bottom-left.
func ScreenCoordinates(x, y, width, height int, jitterX, jitterY float64) (s, t float64) {
	i := float64(x)
	j := float64(height - 1 - y)
	uSpan := float64(max(width-1, 1))
	vSpan := float64(max(height-1, 1))
	return (i + jitterX) / uSpan, (j + jitterY) / vSpan
}

// RenderPixel accumulates all samples for the pixel at (x, y), where y counts rows from the top
func (rt *Raytracer) RenderPixel(x, y int, sampler core.Sampler) PixelStats {
	camera := rt.scene.GetCamera()

	var stats PixelStats
	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		// Jitter within the pixel for anti-aliasing
		jitterX := sampler.Get1D()
		jitterY := sampler.Get1D()
		s, t := ScreenCoordinates(x, y, rt.config.Width, rt.config.Height, jitterX, jitterY)

		ray := camera.GetRay(s, t, sampler)
		stats.AddSample(rt.integrator.RayColor(ray, rt.scene, sampler, rt.config.MaxDepth))
	}
	return stats
}

// renderTask renders one pixel task into a result
func (rt *Raytracer) renderTask(task PixelTask) PixelResult {
	stats := rt.RenderPixel(task.X, task.Y, rt.SamplerForPixel(task.Index))
	c := stats.GetColor()
	return PixelResult{
		Index: task.Index,
		X:     task.X,
		Y:     task.Y,
		Color: c,
		RGBA:  ToRGBA(c),
		Stats: stats,
	}
}

// Render streams every pixel exactly once, in completion order.
// Results must be drained until the channel closes. If ctx is cancelled no
// further pixels are scheduled, in-flight pixels drain, and ctx.Err() is sent
// on the error channel.
func (rt *Raytracer) Render(ctx context.Context) (<-chan PixelResult, <-chan error) {
	results := make(chan PixelResult, rt.config.NumWorkers*4)
	errChan := make(chan error, 1)

	width, height := rt.config.Width, rt.config.Height
	total := width * height

	pool := NewWorkerPool(rt, rt.config.NumWorkers)
	pool.Start()

	rt.logger.Printf("Rendering %dx%d at %d samples/pixel, depth %d (using %d workers, seed %d)...\n",
		width, height, rt.config.SamplesPerPixel, rt.config.MaxDepth, pool.GetNumWorkers(), rt.seed)

	// Feed tasks in raster order
	go func() {
		defer pool.Stop()
		for index := 0; index < total; index++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			pool.SubmitTask(PixelTask{Index: index, X: index % width, Y: index / width})
		}
	}()

	go func() {
		defer close(results)
		defer close(errChan)

		startTime := time.Now()
		completed := 0
		for {
			result, ok := pool.GetResult()
			if !ok {
				break
			}
			completed++
			if completed%width == 0 {
				rt.logger.Printf("Scanlines remaining: %d\n", height-completed/width)
			}
			results <- result
		}

		if err := ctx.Err(); err != nil && completed < total {
			rt.logger.Printf("Rendering cancelled after %d of %d pixels\n", completed, total)
			errChan <- err
			return
		}
		rt.logger.Printf("Render completed in %v\n", time.Since(startTime))
	}()

	return results, errChan
}

// RenderImage renders the whole image and assembles it in raster order
func (rt *Raytracer) RenderImage(ctx context.Context) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	sink := output.NewPixelSink(rt.config.Width, rt.config.Height)
	stats := RenderStats{MaxSamples: rt.config.SamplesPerPixel}

	results, errChan := rt.Render(ctx)
	for result := range results {
		sink.Set(result.Index, result.RGBA)
		stats.AddPixel(result.Stats)
	}
	stats.Elapsed = time.Since(startTime)

	if err := <-errChan; err != nil {
		return nil, stats, fmt.Errorf("render interrupted: %w", err)
	}
	if !sink.Complete() {
		return nil, stats, fmt.Errorf("render finished with %d pixels missing", sink.Remaining())
	}
	return sink.Image(), stats, nil
}

// ToRGBA converts an averaged linear color to 8-bit with gamma 2 correction.
// Channels are clamped to [0, 0.999] so 256x never overflows.
func ToRGBA(c core.Color) color.RGBA {
	c = core.NewVec3(gammaChannel(c.X), gammaChannel(c.Y), gammaChannel(c.Z)).Clamp(0.0, 0.999)
	return color.RGBA{
		R: uint8(256 * c.X),
		G: uint8(256 * c.Y),
		B: uint8(256 * c.Z),
		A: 255,
	}
}

// gammaChannel applies gamma 2; negative or NaN input maps to 0
func gammaChannel(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Sqrt(v)
}
