package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

func TestHittableList_NearestHit(t *testing.T) {
	near := NewSphere(core.NewVec3(0, 0, -2), 1, material.NewLambertian(core.NewVec3(1, 0, 0)))
	far := NewSphere(core.NewVec3(0, 0, -3), 1.5, material.NewLambertian(core.NewVec3(0, 1, 0)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Order must not matter
	for _, list := range []*HittableList{NewHittableList(near, far), NewHittableList(far, near)} {
		hit, ok := list.Hit(ray, 0.001, math.Inf(1))
		if !ok {
			t.Fatal("Expected hit")
		}
		if math.Abs(hit.T-1.0) > 1e-9 {
			t.Errorf("Expected nearest t=1, got %f", hit.T)
		}
		if hit.Material != near.Material {
			t.Error("Expected the nearer sphere's material")
		}
	}
}

func TestHittableList_RespectsWindow(t *testing.T) {
	list := NewHittableList(NewSphere(core.NewVec3(0, 0, -5), 1, testMaterial))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, ok := list.Hit(ray, 0.001, 3.9); ok {
		t.Error("Expected miss when tMax is before the sphere")
	}
	hit, ok := list.Hit(ray, 4.5, math.Inf(1))
	if !ok || math.Abs(hit.T-6) > 1e-9 {
		t.Errorf("Expected far root at t=6, got %v %v", hit, ok)
	}
}

func TestHittableList_Empty(t *testing.T) {
	list := NewHittableList()
	if hit, ok := list.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0.001, math.Inf(1)); ok || hit != nil {
		t.Errorf("Expected empty list to miss, got %v", hit)
	}
}

func TestHittableList_AddClearLen(t *testing.T) {
	list := NewHittableList()
	shared := material.NewDielectric(1.5)
	list.Add(NewSphere(core.NewVec3(0, 0, -1), 0.5, shared))
	list.Add(NewSphere(core.NewVec3(0, 0, -1), -0.4, shared))
	if list.Len() != 2 {
		t.Errorf("Expected 2 shapes, got %d", list.Len())
	}
	list.Clear()
	if list.Len() != 0 {
		t.Errorf("Expected empty list after Clear, got %d", list.Len())
	}
}

func TestHittableList_HitShape(t *testing.T) {
	a := NewSphere(core.NewVec3(-3, 0, -1), 0.5, testMaterial)
	b := NewSphere(core.NewVec3(0, 0, -1), 0.5, testMaterial)
	list := NewHittableList(a, b)

	hit, shape, ok := list.HitShape(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if shape != Shape(b) {
		t.Errorf("Expected sphere b, got %v", shape)
	}
	if math.Abs(hit.T-0.5) > 1e-9 {
		t.Errorf("Expected t=0.5, got %f", hit.T)
	}
}

func TestHittableList_HitMatchesHitShape(t *testing.T) {
	list := NewHittableList(
		NewSphere(core.NewVec3(0, -100.5, -1), 100, testMaterial),
		NewSphere(core.NewVec3(0, 0, -1), 0.5, testMaterial),
		NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		NewSphere(core.NewVec3(-1, 0, -1), -0.45, material.NewDielectric(1.5)),
	)

	directions := []core.Vec3{
		core.NewVec3(0, 0, -1),
		core.NewVec3(-1, 0, -1),
		core.NewVec3(0, -1, -1),
		core.NewVec3(0, 1, 0),
	}
	for _, dir := range directions {
		ray := core.NewRay(core.Vec3{}, dir)
		hit, ok := list.Hit(ray, 0.001, math.Inf(1))
		shapeHit, shape, shapeOk := list.HitShape(ray, 0.001, math.Inf(1))

		if ok != shapeOk {
			t.Fatalf("Direction %v: Hit=%v but HitShape=%v", dir, ok, shapeOk)
		}
		if !ok {
			if shape != nil {
				t.Errorf("Direction %v: expected no shape on a miss, got %v", dir, shape)
			}
			continue
		}
		if hit.T != shapeHit.T || hit.Material != shapeHit.Material {
			t.Errorf("Direction %v: Hit t=%f, HitShape t=%f", dir, hit.T, shapeHit.T)
		}
	}
}
