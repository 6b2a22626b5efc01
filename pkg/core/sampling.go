package core

import (
	"fmt"
	"math/rand/v2"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own PCG stream.
// Distinct stream values give independent sequences for the same seed.
func NewSeededSampler(seed, stream uint64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewPCG(seed, stream)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// ConstantSampler returns the same value for every draw.
// Used to make renders fully deterministic in tests.
//
// Rejection sampling accepts a constant draw only when it maps inside the target:
// Value must lie in (0.2114, 0.7886) for RandomInUnitSphere and RandomUnitVector
// (Lambertian, Metal) and in (0.1465, 0.8535) for RandomInUnitDisk (camera lens).
// Other values make those functions panic.
type ConstantSampler struct {
	Value float64
}

// Get1D returns the constant value
func (c ConstantSampler) Get1D() float64 {
	return c.Value
}

// Get2D returns the constant value in both components
func (c ConstantSampler) Get2D() Vec2 {
	return NewVec2(c.Value, c.Value)
}

// Get3D returns the constant value in all components
func (c ConstantSampler) Get3D() Vec3 {
	return NewVec3(c.Value, c.Value, c.Value)
}

// SampleRange returns a uniform value in [min, max)
func SampleRange(sampler Sampler, min, max float64) float64 {
	return min + (max-min)*sampler.Get1D()
}

// RandomVec3 returns a vector uniform in [min, max)^3
func RandomVec3(sampler Sampler, min, max float64) Vec3 {
	u := sampler.Get3D()
	return NewVec3(
		min+(max-min)*u.X,
		min+(max-min)*u.Y,
		min+(max-min)*u.Z,
	)
}

// maxRejectionDraws bounds rejection sampling. A uniform sampler exhausts it with
// probability below 1e-300, so running out means the sampler is not uniform.
const maxRejectionDraws = 1000

// RandomInUnitSphere returns a point uniformly distributed inside the unit ball
// by rejection sampling the [-1,1]^3 cube
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for range maxRejectionDraws {
		p := RandomVec3(sampler, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
	panic(fmt.Sprintf("RandomInUnitSphere: no point inside the unit ball after %d draws from %T", maxRejectionDraws, sampler))
}

// RandomUnitVector returns a direction uniformly distributed on the unit sphere
func RandomUnitVector(sampler Sampler) Vec3 {
	return RandomInUnitSphere(sampler).Normalize()
}

// RandomInUnitDisk returns a point uniformly distributed inside the unit disk (z = 0)
// by rejection sampling the [-1,1]^2 square
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for range maxRejectionDraws {
		s := sampler.Get2D()
		p := NewVec3(2*s.X-1, 2*s.Y-1, 0)
		if p.LengthSquared() < 1 {
			return p
		}
	}
	panic(fmt.Sprintf("RandomInUnitDisk: no point inside the unit disk after %d draws from %T", maxRejectionDraws, sampler))
}
