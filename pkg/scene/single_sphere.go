package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewSingleSphereScene creates a grey diffuse sphere of unit diameter at (0,0,-1)
// seen by a pinhole camera at the origin with a 90 degree vertical field of view
func NewSingleSphereScene(cameraOverrides ...renderer.CameraOverrides) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   2.0,
		VFov:          90.0,
		Aperture:      0.0,
		FocusDistance: 1.0,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	samplingConfig := renderer.SamplingConfig{
		Width:           400,
		Height:          200,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	s := newScene(cameraConfig, samplingConfig)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	return s
}
