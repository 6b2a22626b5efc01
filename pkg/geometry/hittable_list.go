package geometry

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// HittableList is an ordered collection of shapes resolved as one surface.
// Shapes and their materials may be shared with other lists.
type HittableList struct {
	shapes []Shape
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	return &HittableList{shapes: append([]Shape(nil), shapes...)}
}

// Add appends a shape to the list
func (l *HittableList) Add(shape Shape) {
	l.shapes = append(l.shapes, shape)
}

// Clear removes every shape
func (l *HittableList) Clear() {
	l.shapes = nil
}

// Len returns the number of shapes in the list
func (l *HittableList) Len() int {
	return len(l.shapes)
}

// Shapes returns the shapes in insertion order
func (l *HittableList) Shapes() []Shape {
	return l.shapes
}

// Hit returns the nearest intersection among all shapes.
// Each shape is tested against (tMin, closest) so the window narrows as closer hits are found.
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	hit, _, isHit := l.HitShape(ray, tMin, tMax)
	return hit, isHit
}

// HitShape is Hit that also reports which shape produced the nearest intersection
func (l *HittableList) HitShape(ray core.Ray, tMin, tMax float64) (*material.HitRecord, Shape, bool) {
	var closestHit *material.HitRecord
	var closestShape Shape
	closestSoFar := tMax

	for _, shape := range l.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
			closestShape = shape
		}
	}

	return closestHit, closestShape, closestHit != nil
}
