package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Create a 2x2 image
	// Top-left: Red (1, 0, 0) -> Lum = 0.299
	// Top-right: Green (0, 1, 0) -> Lum = 0.587
	// Bottom-left: Blue (0, 0, 1) -> Lum = 0.114
	// Bottom-right: Black (0, 0, 0) -> Lum = 0.0

	// Expected average: (0.299 + 0.587 + 0.114 + 0.0) / 4 = 1.0 / 4 = 0.25

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 0.25
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	// 1x1 White pixel -> Lum = 1.0
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 1.0
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestPixelStats(t *testing.T) {
	var ps PixelStats
	if ps.GetColor() != (core.Vec3{}) {
		t.Errorf("Expected black for empty pixel, got %v", ps.GetColor())
	}

	ps.AddSample(core.NewVec3(1, 1, 1))
	ps.AddSample(core.NewVec3(0, 0, 0))

	if ps.SampleCount != 2 {
		t.Errorf("Expected 2 samples, got %d", ps.SampleCount)
	}
	if got := ps.GetColor(); got != core.NewVec3(0.5, 0.5, 0.5) {
		t.Errorf("Expected average (0.5,0.5,0.5), got %v", got)
	}
	// Luminance samples 1 and 0: variance 0.5
	if v := ps.GetVariance(); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("Expected variance 0.5, got %f", v)
	}
}

func TestRenderStatsAddPixel(t *testing.T) {
	var rs RenderStats
	for _, n := range []int{4, 2, 6} {
		rs.AddPixel(PixelStats{SampleCount: n})
	}

	if rs.TotalPixels != 3 || rs.TotalSamples != 12 {
		t.Errorf("Expected 3 pixels and 12 samples, got %d and %d", rs.TotalPixels, rs.TotalSamples)
	}
	if rs.MinSamples != 2 || rs.MaxSamplesUsed != 6 {
		t.Errorf("Expected min 2 max 6, got %d and %d", rs.MinSamples, rs.MaxSamplesUsed)
	}
	if rs.AverageSamples != 4 {
		t.Errorf("Expected average 4, got %f", rs.AverageSamples)
	}
}

func TestPixelStats_MethodsOnReturnedValue(t *testing.T) {
	accumulate := func(samples ...core.Vec3) PixelStats {
		var ps PixelStats
		for _, sample := range samples {
			ps.AddSample(sample)
		}
		return ps
	}

	// Accessors work directly on a returned value
	if got := accumulate(core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)).GetColor(); got != core.NewVec3(0.5, 0, 0.5) {
		t.Errorf("Expected averaged color (0.5, 0, 0.5), got %v", got)
	}
	if got := accumulate(core.NewVec3(1, 1, 1)).GetVariance(); got != 0 {
		t.Errorf("Expected zero variance for a single sample, got %f", got)
	}
}
