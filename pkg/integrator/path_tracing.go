package integrator

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// MinHitDistance keeps scattered rays from re-hitting their own surface (shadow acne)
const MinHitDistance = 0.001

// PathTracingIntegrator implements unidirectional path tracing with a hard depth cutoff
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor computes the color for a single ray.
// Each scatter event recurses once; emission is not modelled, so all light
// comes from the sky gradient.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene Scene, sampler core.Sampler, depth int) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := scene.GetWorld().Hit(ray, MinHitDistance, math.Inf(1))
	if !isHit {
		return pt.BackgroundGradient(ray, scene)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		// Material absorbed the ray
		return core.Color{}
	}

	return scatter.Attenuation.MultiplyVec(
		pt.RayColor(scatter.Scattered, scene, sampler, depth-1))
}

// BackgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) BackgroundGradient(r core.Ray, scene Scene) core.Color {
	topColor, bottomColor := scene.GetBackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Lerp(topColor, t)
}
