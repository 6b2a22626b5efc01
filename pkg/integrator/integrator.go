package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Scene is the read-only view of a scene needed for light transport.
// Defined here to avoid an import cycle with the scene package.
type Scene interface {
	GetWorld() geometry.Shape
	GetBackgroundColors() (topColor, bottomColor core.Color)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray, following at most depth scatter events
	RayColor(ray core.Ray, scene Scene, sampler core.Sampler, depth int) core.Color
}
