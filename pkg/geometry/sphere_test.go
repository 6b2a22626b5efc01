package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

var testMaterial = material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name:           "unnormalized direction",
			rayOrigin:      core.NewVec3(0, 0, 3),
			rayDirection:   core.NewVec3(0, 0, -4),
			expectedT:      0.5,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}

			if !vecNear(hit.Normal, tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}

			if hit.Material != testMaterial {
				t.Error("Expected hit record to carry the sphere's material")
			}
		})
	}
}

func TestSphere_Hit_PointLiesOnSurface(t *testing.T) {
	center := core.NewVec3(0, 0, 0)
	for _, r := range []float64{0.25, 1, 3.5} {
		sphere := NewSphere(center, r, testMaterial)
		for _, z0 := range []float64{r + 0.5, 2 * r, 10 * r} {
			ray := core.NewRay(core.NewVec3(0, 0, z0), center.Subtract(core.NewVec3(0, 0, z0)))
			hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatalf("r=%f z0=%f: expected hit", r, z0)
			}

			if d := ray.At(hit.T).Subtract(center).Length(); math.Abs(d-r) > 1e-9 {
				t.Errorf("r=%f z0=%f: hit point at distance %f from center", r, z0, d)
			}

			if math.Abs(hit.Normal.Length()-1) > 1e-9 {
				t.Errorf("r=%f z0=%f: normal %v is not unit length", r, z0, hit.Normal)
			}

			// Parallel to (point - center)
			radial := hit.Point.Subtract(center).Normalize()
			if hit.Normal.Cross(radial).Length() > 1e-9 {
				t.Errorf("r=%f z0=%f: normal %v not parallel to %v", r, z0, hit.Normal, radial)
			}
		}
	}
}

func TestSphere_Hit_GlancingHit(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected glancing hit, but got miss")
	}

	if !vecNear(hit.Point, core.NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("Expected hit point (1, 0, 0), got %v", hit.Point)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	tests := []struct {
		name       string
		tMin, tMax float64
		expectHit  bool
		expectedT  float64
	}{
		{"tMax before surface", 0.001, 0.5, false, 0},
		{"tMin past both roots", 3.5, 1000.0, false, 0},
		{"tMin between roots picks far root", 2.0, 1000.0, true, 3.0},
		{"near root on tMax is excluded", 0.001, 1.0, false, 0},
		{"near root on tMin is excluded", 1.0, 1000.0, true, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(ray, tt.tMin, tt.tMax)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, isHit)
			}
			if isHit && math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, hit.T)
			}
		})
	}
}

func TestSphere_NegativeRadius(t *testing.T) {
	center := core.NewVec3(0, 0, -1)
	solid := NewSphere(center, 0.5, testMaterial)
	hollow := NewSphere(center, -0.5, testMaterial)

	// Ray enters through the near surface and passes through the interior
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	solidHit, ok := solid.Hit(ray, 0.001, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit on solid sphere")
	}
	hollowHit, ok := hollow.Hit(ray, 0.001, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit on hollow sphere")
	}

	if math.Abs(solidHit.T-hollowHit.T) > 1e-12 || !vecNear(solidHit.Point, hollowHit.Point, 1e-12) {
		t.Fatalf("Expected identical hit points, got %v and %v", solidHit.Point, hollowHit.Point)
	}

	// Geometric normal points towards the center for the negative radius
	toCenter := center.Subtract(hollowHit.Point).Normalize()
	if !vecNear(hollow.OutwardNormal(hollowHit.Point), toCenter, 1e-12) {
		t.Errorf("Expected inward normal %v, got %v", toCenter, hollow.OutwardNormal(hollowHit.Point))
	}
	if !vecNear(solid.OutwardNormal(solidHit.Point), toCenter.Negate(), 1e-12) {
		t.Errorf("Expected outward normal %v, got %v", toCenter.Negate(), solid.OutwardNormal(solidHit.Point))
	}

	// Face orientation flips, and the resolved normal still opposes the ray
	if !solidHit.FrontFace {
		t.Error("Expected solid sphere to be hit on its front face")
	}
	if hollowHit.FrontFace {
		t.Error("Expected hollow sphere to be hit on its back face")
	}
	if hollowHit.Normal.Dot(ray.Direction) >= 0 || solidHit.Normal.Dot(ray.Direction) >= 0 {
		t.Error("Resolved normals must face against the incoming ray")
	}

	// From inside the hollow sphere the resolved normal points inwards
	inside := core.NewRay(center, core.NewVec3(0, 0, 1))
	insideHit, ok := hollow.Hit(inside, 0.001, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit from inside the hollow sphere")
	}
	if !insideHit.FrontFace {
		t.Error("Expected inside hit on hollow sphere to count as front face")
	}
	if !vecNear(insideHit.Normal, core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Expected normal towards center (0,0,-1), got %v", insideHit.Normal)
	}
}

func TestSphere_Hit_ZeroDirectionMisses(t *testing.T) {
	// A zero-length direction makes both roots NaN; that must read as a miss
	tests := []struct {
		name   string
		origin core.Vec3
	}{
		{"origin at center", core.NewVec3(0, 0, 0)},
		{"origin outside", core.NewVec3(0, 0, 5)},
	}

	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.origin, core.Vec3{})
			if hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
				t.Errorf("Expected miss for a degenerate ray, got hit at t=%f", hit.T)
			}
		})
	}
}
