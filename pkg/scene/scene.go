package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering.
// A scene is read-only once built and may be shared between render workers.
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.HittableList // Objects in the scene
	TopColor       core.Color             // Sky color straight up
	BottomColor    core.Color             // Sky color straight down
	SamplingConfig renderer.SamplingConfig
}

// newScene creates an empty scene with the standard blue-to-white sky
func newScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) *Scene {
	return &Scene{
		Camera:         renderer.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          geometry.NewHittableList(),
		TopColor:       core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0), // White horizon
		SamplingConfig: samplingConfig,
	}
}

// applyCameraOverrides merges the first override, if any, into the default camera
func applyCameraOverrides(defaults renderer.CameraConfig, overrides []renderer.CameraOverrides) renderer.CameraConfig {
	if len(overrides) == 0 {
		return defaults
	}
	return renderer.MergeCameraConfig(defaults, overrides[0])
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld returns everything a ray can hit
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetBackgroundColors returns the sky gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Color) {
	return s.TopColor, s.BottomColor
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Point, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// SetWidth changes the image width and derives the height from the camera aspect ratio
func (s *Scene) SetWidth(width int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = HeightForWidth(width, s.CameraConfig.AspectRatio)
}

// HeightForWidth returns the image height matching an aspect ratio, at least 1
func HeightForWidth(width int, aspectRatio float64) int {
	if aspectRatio <= 0 {
		return max(width, 1)
	}
	return max(int(float64(width)/aspectRatio), 1)
}
